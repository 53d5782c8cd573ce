package storage

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/linking"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// RevenueSource supplies the revenue snapshot videos are linked against.
type RevenueSource interface {
	List() []*model.RevenueEntry
}

// VideoRepo provides operations for VideoEntry records. Derived metrics are
// never trusted from storage: every read relinks against the current revenue.
type VideoRepo struct {
	store     Provider
	revenue   RevenueSource
	matcher   linking.Matcher
	validator *validate.Validator
	Now       Clock
	mu        sync.Mutex
}

// NewVideoRepo creates a new video repository using the default matcher.
func NewVideoRepo(store Provider, revenue RevenueSource, v *validate.Validator) *VideoRepo {
	return &VideoRepo{
		store:     store,
		revenue:   revenue,
		matcher:   linking.Default,
		validator: v,
		Now:       time.Now,
	}
}

// SetMatcher replaces the title matching strategy.
func (r *VideoRepo) SetMatcher(m linking.Matcher) {
	if m != nil {
		r.matcher = m
	}
}

// Matcher returns the title matching strategy in use.
func (r *VideoRepo) Matcher() linking.Matcher {
	return r.matcher
}

func videoID(v *model.VideoEntry) string { return v.ID }

func (r *VideoRepo) load() []*model.VideoEntry {
	return loadList[model.VideoEntry](r.store, model.KeyVideos)
}

func (r *VideoRepo) check(v *model.VideoEntry) error {
	if err := validate.Date("publishDate", v.PublishDate); err != nil {
		return err
	}
	return r.validator.Struct(v)
}

func sanitizeVideo(v *model.VideoEntry) {
	v.Title = validate.SanitizeText(v.Title)
	v.Category = validate.SanitizeText(v.Category)
	v.Platforms = validate.SanitizeList(v.Platforms)
	v.Keywords = validate.SanitizeList(v.Keywords)
}

// Add validates and stores a new video.
func (r *VideoRepo) Add(video *model.VideoEntry) (*model.VideoEntry, error) {
	v := video.Clone()
	sanitizeVideo(v)
	if err := r.check(v); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewSystemError("failed to generate id", err)
	}
	now := r.Now()
	v.ID = id
	v.CreatedAt = now
	v.UpdatedAt = now

	revenue := r.revenue.List()

	r.mu.Lock()
	defer r.mu.Unlock()
	videos := append(r.load(), v)
	LinkRevenue(videos, revenue, r.matcher)
	if err := r.store.Save(model.KeyVideos, videos); err != nil {
		return nil, err
	}
	logging.DebugLog("video added", logging.KeyID, v.ID)
	return v.Clone(), nil
}

// Update applies patch to the video with id.
func (r *VideoRepo) Update(id string, patch model.VideoPatch) (*model.VideoEntry, error) {
	revenue := r.revenue.List()

	r.mu.Lock()
	defer r.mu.Unlock()

	videos := r.load()
	i := indexOf(videos, id, videoID)
	if i < 0 {
		return nil, errors.NewNotFoundError(errors.ErrVideoNotFound.Kind, id)
	}

	updated := videos[i].Clone()
	patch.Apply(updated)
	sanitizeVideo(updated)
	updated.ID = videos[i].ID
	updated.CreatedAt = videos[i].CreatedAt
	if err := r.check(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.Now()

	videos[i] = updated
	LinkRevenue(videos, revenue, r.matcher)
	if err := r.store.Save(model.KeyVideos, videos); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete removes the video with id. It returns false when no video matched.
func (r *VideoRepo) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	videos := r.load()
	i := indexOf(videos, id, videoID)
	if i < 0 {
		return false, nil
	}
	if err := r.store.Save(model.KeyVideos, removeAt(videos, i)); err != nil {
		return false, err
	}
	return true, nil
}

// Get retrieves a video by id with fresh metrics.
func (r *VideoRepo) Get(id string) (*model.VideoEntry, error) {
	videos := r.List()
	if i := indexOf(videos, id, videoID); i >= 0 {
		return videos[i], nil
	}
	return nil, errors.NewNotFoundError(errors.ErrVideoNotFound.Kind, id)
}

// List returns every video with metrics linked against the current revenue.
func (r *VideoRepo) List() []*model.VideoEntry {
	revenue := r.revenue.List()

	r.mu.Lock()
	defer r.mu.Unlock()
	videos := r.load()
	LinkRevenue(videos, revenue, r.matcher)
	return videos
}

// RecomputeMetrics relinks every video against revenue and persists the
// refreshed list.
func (r *VideoRepo) RecomputeMetrics(revenue []*model.RevenueEntry) ([]*model.VideoEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	videos := r.load()
	LinkRevenue(videos, revenue, r.matcher)
	if err := r.store.Save(model.KeyVideos, videos); err != nil {
		return nil, err
	}
	logging.DebugLog("video metrics recomputed", logging.KeyCount, len(videos))
	return videos, nil
}

// LinkRevenue sets the derived metrics of every video from the entries the
// matcher links to it. An entry whose title matches several videos counts
// toward each of them.
func LinkRevenue(videos []*model.VideoEntry, revenue []*model.RevenueEntry, m linking.Matcher) {
	for _, v := range videos {
		total := decimal.Zero
		count := 0
		for _, e := range revenue {
			if m.Match(v.Title, e.VideoTitle) {
				total = total.Add(e.Amount)
				count++
			}
		}
		v.ApplyRevenue(total, count)
	}
}
