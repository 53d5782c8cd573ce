// Package runtime wires the creatorbook services together for one command
// invocation.
package runtime

import (
	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/config"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/mailer"
	"github.com/manav03panchal/creatorbook/internal/output"
	"github.com/manav03panchal/creatorbook/internal/report"
	"github.com/manav03panchal/creatorbook/internal/storage"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.Config
	DB        *storage.DB
	Formatter *output.Formatter
	Validator *validate.Validator

	// Repositories
	Settings  *storage.SettingsRepo
	Metadata  *storage.MetadataRepo
	Revenue   *storage.RevenueRepo
	Videos    *storage.VideoRepo
	Schedules *storage.ScheduleRepo
	Calendar  *storage.CalendarRepo
	Backups   *storage.BackupService

	// Services
	Analytics *analytics.Engine
	Reports   *report.Generator
	Runner    *report.Runner
	Mailer    mailer.Sender

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	Config    *config.Config
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Config:    config.Default(),
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Debug:     false,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	db, err := storage.OpenWithIntegrityCheck(storage.Options{
		Path:         cfg.Database,
		InMemory:     cfg.InMemory(),
		MaxValueSize: cfg.Storage.MaxValueSize,
	})
	if err != nil {
		return nil, err
	}

	v, err := validate.New(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Create repositories
	settings := storage.NewSettingsRepo(db, v, cfg.Settings())
	v.SetCategoryFunc(settings.HasCategory)
	metadata := storage.NewMetadataRepo(db)
	revenue := storage.NewRevenueRepo(db, settings, v)
	videos := storage.NewVideoRepo(db, revenue, v)
	videos.SetMatcher(cfg.LinkMatcher())
	schedules := storage.NewScheduleRepo(db, v)
	calendar := storage.NewCalendarRepo(db, v)
	backups := storage.NewBackupService(db, metadata, settings)

	// Create services
	engine := analytics.NewEngine(revenue, videos, settings, db)
	gen := report.NewGenerator(revenue, videos, settings)
	sender := mailer.New(mailer.Config{
		APIKey:    cfg.Mail.SendGridAPIKey,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
	})
	runner := report.NewRunner(gen, schedules, sender, cfg.ReportsDir)

	// Create formatter
	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	logging.DebugLog("runtime ready", logging.KeyPath, db.Path())

	return &Context{
		Config:    cfg,
		DB:        db,
		Formatter: formatter,
		Validator: v,
		Settings:  settings,
		Metadata:  metadata,
		Revenue:   revenue,
		Videos:    videos,
		Schedules: schedules,
		Calendar:  calendar,
		Backups:   backups,
		Analytics: engine,
		Reports:   gen,
		Runner:    runner,
		Mailer:    sender,
		Debug:     opts.Debug,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// CLIFormatter returns a CLI formatter using the configured currency.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	cli := output.NewCLIFormatter(c.Formatter)
	cli.Currency = c.Settings.Get().CurrencyCode()
	return cli
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
