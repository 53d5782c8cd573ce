package report

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/mailer"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

// ScheduleStore is the part of the schedule repository the runner needs.
type ScheduleStore interface {
	Get(id string) (*model.ScheduledReport, error)
	Due(now time.Time) []*model.ScheduledReport
	MarkRun(id string, at time.Time) (*model.ScheduledReport, error)
}

// Result describes one produced report file.
type Result struct {
	Document *Document `json:"-"`
	Data     []byte    `json:"-"`
	Schedule string    `json:"schedule,omitempty"`
	Path     string    `json:"path"`
	Bytes    int       `json:"bytes"`
	Emailed  string    `json:"emailed,omitempty"`
}

// Runner generates reports, writes them to the reports directory and mails
// them.
type Runner struct {
	gen       *Generator
	schedules ScheduleStore
	sender    mailer.Sender
	dir       string
	Now       func() time.Time
}

// NewRunner creates a runner writing into dir. A nil sender disables mail.
func NewRunner(gen *Generator, schedules ScheduleStore, sender mailer.Sender, dir string) *Runner {
	if sender == nil {
		sender = mailer.NopSender{}
	}
	return &Runner{
		gen:       gen,
		schedules: schedules,
		sender:    sender,
		dir:       dir,
		Now:       time.Now,
	}
}

// Dir returns the output directory.
func (r *Runner) Dir() string {
	return r.dir
}

// Quick generates a report and writes it to the output directory.
func (r *Runner) Quick(ctx context.Context, t model.ReportType, period Period, format model.ReportFormat) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := r.gen.Generate(t, period)
	if err != nil {
		return nil, err
	}
	data, err := Encode(doc, format)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", format)
	}

	path := filepath.Join(r.dir, FileName(doc, format))
	if err := storage.SafeWrite(path, data, 0o600); err != nil {
		return nil, errors.Wrap(err, "write report")
	}
	logging.Info("report written", logging.KeyReport, t, logging.KeyFormat, format, logging.KeyPath, path, logging.KeyBytes, len(data))
	return &Result{Document: doc, Data: data, Path: path, Bytes: len(data)}, nil
}

// SchedulePeriod is the period a scheduled report of frequency f covers.
// Daily and weekly reports track the current month; the others cover the
// period that just closed.
func SchedulePeriod(f model.Frequency) PeriodKind {
	switch f {
	case model.FrequencyMonthly:
		return LastMonth
	case model.FrequencyQuarterly:
		return LastQuarter
	case model.FrequencyAnnual:
		return LastYear
	default:
		return CurrentMonth
	}
}

// RunScheduled runs one scheduled report now, whether or not it is due, and
// records the run. The report is mailed when it has a recipient and mail is
// configured; a delivery failure is returned after the run is recorded.
func (r *Runner) RunScheduled(ctx context.Context, id string) (*Result, error) {
	s, err := r.schedules.Get(id)
	if err != nil {
		return nil, err
	}

	now := r.Now()
	period, err := ResolvePeriod(SchedulePeriod(s.Frequency), now, "", "")
	if err != nil {
		return nil, err
	}
	res, err := r.Quick(ctx, s.Type, period, s.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "run %q", s.Name)
	}
	res.Schedule = s.ID

	if _, err := r.schedules.MarkRun(s.ID, now); err != nil {
		return res, err
	}
	logging.Info("scheduled report ran", logging.KeyID, s.ID, logging.KeyReport, s.Type, logging.KeyPath, res.Path)

	if s.Email == "" {
		return res, nil
	}
	if err := r.mail(ctx, s, res); err != nil {
		if stderrors.Is(err, errors.ErrMailDisabled) {
			logging.Warn("report not mailed", logging.KeyID, s.ID, logging.KeyError, err)
			return res, nil
		}
		return res, errors.Wrapf(err, "mail %q", s.Name)
	}
	res.Emailed = s.Email
	return res, nil
}

func (r *Runner) mail(ctx context.Context, s *model.ScheduledReport, res *Result) error {
	doc := res.Document
	msg := mailer.Message{
		To:      s.Email,
		Subject: fmt.Sprintf("%s: %s", s.Name, doc.Period.Label),
		Text:    fmt.Sprintf("%s for %s (%s to %s) is attached.", doc.Title, doc.Period.Label, doc.Period.From, doc.Period.To),
		Attachments: []mailer.Attachment{{
			Filename:    filepath.Base(res.Path),
			ContentType: ContentType(s.Format),
			Content:     res.Data,
		}},
	}
	return r.sender.Send(ctx, msg)
}

// RunDue runs every due scheduled report, earliest first. It keeps going
// after a failure and returns the failures joined.
func (r *Runner) RunDue(ctx context.Context) ([]*Result, error) {
	var results []*Result
	var errs []error
	for _, s := range r.schedules.Due(r.Now()) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := r.RunScheduled(ctx, s.ID)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			logging.Error("scheduled report failed", logging.KeyID, s.ID, logging.KeyError, err)
			errs = append(errs, err)
		}
	}
	return results, stderrors.Join(errs...)
}
