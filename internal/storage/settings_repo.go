package storage

import (
	"sync"
	"time"

	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// SettingsRepo provides operations for the Settings singleton.
type SettingsRepo struct {
	store     Provider
	validator *validate.Validator
	defaults  model.Settings
	mu        sync.Mutex
}

// NewSettingsRepo creates a new settings repository. A nil defaults uses the
// factory settings.
func NewSettingsRepo(store Provider, v *validate.Validator, defaults *model.Settings) *SettingsRepo {
	if defaults == nil {
		defaults = model.DefaultSettings()
	}
	return &SettingsRepo{store: store, validator: v, defaults: *defaults}
}

// Get returns the stored settings laid over the defaults, so fields missing
// from the stored document keep their default value.
func (r *SettingsRepo) Get() *model.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get()
}

func (r *SettingsRepo) get() *model.Settings {
	s := r.Defaults()
	r.store.Load(model.KeySettings, s)
	return s
}

// Defaults returns a copy of the settings Reset restores.
func (r *SettingsRepo) Defaults() *model.Settings {
	d := r.defaults
	d.ExtraCategories = append([]string(nil), r.defaults.ExtraCategories...)
	return &d
}

// Update validates and stores s.
func (r *SettingsRepo) Update(s *model.Settings) error {
	if err := r.validator.Struct(s); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Save(model.KeySettings, s)
}

// Reset restores the defaults.
func (r *SettingsRepo) Reset() (*model.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.Defaults()
	if err := r.store.Save(model.KeySettings, d); err != nil {
		return nil, err
	}
	return d, nil
}

// HasCategory reports whether name is a built-in or configured category.
func (r *SettingsRepo) HasCategory(name string) bool {
	return r.Get().HasCategory(name)
}

// MetadataRepo provides operations for the Metadata singleton.
type MetadataRepo struct {
	store Provider
	Now   Clock
	mu    sync.Mutex
}

// NewMetadataRepo creates a new metadata repository.
func NewMetadataRepo(store Provider) *MetadataRepo {
	return &MetadataRepo{store: store, Now: time.Now}
}

// Get retrieves the metadata, creating it if it doesn't exist.
func (r *MetadataRepo) Get() (*model.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get()
}

func (r *MetadataRepo) get() (*model.Metadata, error) {
	meta := &model.Metadata{}
	if r.store.Load(model.KeyMetadata, meta) {
		return meta, nil
	}
	meta = model.NewMetadata(r.Now())
	if err := r.store.Save(model.KeyMetadata, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// MarkBackup stamps the last backup time.
func (r *MetadataRepo) MarkBackup() (*model.Metadata, error) {
	return r.stamp(func(m *model.Metadata, now time.Time) { m.LastBackup = &now })
}

// MarkRestore stamps the last restore time.
func (r *MetadataRepo) MarkRestore() (*model.Metadata, error) {
	return r.stamp(func(m *model.Metadata, now time.Time) { m.LastRestore = &now })
}

func (r *MetadataRepo) stamp(fn func(*model.Metadata, time.Time)) (*model.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta, err := r.get()
	if err != nil {
		return nil, err
	}
	fn(meta, r.Now())
	if err := r.store.Save(model.KeyMetadata, meta); err != nil {
		return nil, err
	}
	return meta, nil
}
