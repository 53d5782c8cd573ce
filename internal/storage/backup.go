package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// Backup is a full-state export: every known key's raw JSON document.
type Backup struct {
	Version    string                     `json:"version"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

// BackupService creates and restores full-state backups.
type BackupService struct {
	db       *DB
	metadata *MetadataRepo
	settings *SettingsRepo
	Now      Clock
}

// NewBackupService creates a new backup service. Restored records are
// validated against settings' defaults unless the backup carries its own
// settings.
func NewBackupService(db *DB, metadata *MetadataRepo, settings *SettingsRepo) *BackupService {
	return &BackupService{db: db, metadata: metadata, settings: settings, Now: time.Now}
}

// Create stamps the backup time and exports every stored key.
func (s *BackupService) Create() (*Backup, error) {
	if _, err := s.metadata.MarkBackup(); err != nil {
		return nil, err
	}

	b := &Backup{
		Version:    model.SchemaVersion,
		ExportedAt: s.Now().UTC(),
		Data:       map[string]json.RawMessage{},
	}
	for _, key := range s.db.Keys() {
		data, err := s.db.GetBytes(key)
		if err != nil {
			if IsErrKeyNotFound(err) {
				continue
			}
			return nil, errors.NewStorageError("backup", key, err)
		}
		b.Data[key] = json.RawMessage(data)
	}
	logging.Info("backup created", logging.KeyCount, len(b.Data))
	return b, nil
}

// WriteFile creates a backup and writes it to path.
func (s *BackupService) WriteFile(path string) (*Backup, error) {
	b, err := s.Create()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, errors.NewSystemError("failed to encode backup", err)
	}
	if err := SafeWrite(path, data, 0o600); err != nil {
		return nil, err
	}
	return b, nil
}

// FileName returns the default backup file name for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("creatorbook-backup-%s.json", t.Format("2006-01-02-150405"))
}

// ParseBackup decodes a backup document.
func ParseBackup(data []byte) (*Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidBackup, err.Error())
	}
	if b.Version == "" || b.Data == nil {
		return nil, errors.Wrap(errors.ErrInvalidBackup, "missing version or data")
	}
	return &b, nil
}

// ReadFile reads and decodes a backup document from path.
func ReadFile(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBackup(data)
}

// Restore replaces every known key with the backup's documents in a single
// transaction. Keys absent from the backup are cleared. Nothing is written
// unless every payload decodes and every record passes the same validation
// as Add and Update.
func (s *BackupService) Restore(b *Backup) error {
	if b == nil || b.Data == nil {
		return errors.Wrap(errors.ErrInvalidBackup, "missing data")
	}

	docs := make(map[string]json.RawMessage, len(b.Data))
	decoded := make(map[string]any, len(b.Data))
	for key, raw := range b.Data {
		target, ok := documentType(key)
		if !ok {
			return errors.Wrapf(errors.ErrInvalidBackup, "unknown key %q", key)
		}
		if key == model.KeySettings {
			// Stored settings overlay the defaults, as SettingsRepo.Get does.
			target = s.settingsBase()
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return errors.Wrapf(errors.ErrInvalidBackup, "key %q", key)
		}
		docs[key] = raw
		decoded[key] = target
	}
	if err := s.validate(decoded); err != nil {
		return err
	}

	meta := model.NewMetadata(s.Now())
	if raw, ok := docs[model.KeyMetadata]; ok {
		_ = json.Unmarshal(raw, meta)
	}
	now := s.Now()
	meta.LastRestore = &now
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return errors.NewSystemError("failed to encode metadata", err)
	}
	docs[model.KeyMetadata] = metaRaw

	var clear []string
	for _, key := range s.db.Keys() {
		if _, ok := docs[key]; !ok {
			clear = append(clear, key)
		}
	}

	if err := s.db.ReplaceAll(docs, clear); err != nil {
		return err
	}
	logging.Info("backup restored", logging.KeyCount, len(docs))
	return nil
}

// validate checks every decoded record. Video categories are checked
// against the backup's own settings when it has them.
func (s *BackupService) validate(decoded map[string]any) error {
	settings, ok := decoded[model.KeySettings].(*model.Settings)
	if !ok {
		settings = s.settingsBase()
	}
	v, err := validate.New(settings.HasCategory)
	if err != nil {
		return errors.NewSystemError("failed to create validator", err)
	}

	check := func(key string, i int, record any) error {
		if err := v.Struct(record); err != nil {
			return fmt.Errorf("%w: %s record %d: %w", errors.ErrInvalidBackup, key, i, err)
		}
		return nil
	}
	for _, key := range model.AllKeys {
		switch doc := decoded[key].(type) {
		case *[]*model.RevenueEntry:
			for i, e := range *doc {
				if err := check(key, i, e); err != nil {
					return err
				}
			}
		case *[]*model.VideoEntry:
			for i, e := range *doc {
				if err := check(key, i, e); err != nil {
					return err
				}
			}
		case *[]*model.ScheduledReport:
			for i, e := range *doc {
				if err := check(key, i, e); err != nil {
					return err
				}
			}
		case *[]*model.CalendarEvent:
			for i, e := range *doc {
				if err := check(key, i, e); err != nil {
					return err
				}
			}
		case *model.Settings:
			if err := check(key, 0, settings); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BackupService) settingsBase() *model.Settings {
	if s.settings != nil {
		return s.settings.Defaults()
	}
	return model.DefaultSettings()
}

// documentType returns a decode target for key.
func documentType(key string) (any, bool) {
	switch key {
	case model.KeyRevenue:
		return &[]*model.RevenueEntry{}, true
	case model.KeyVideos:
		return &[]*model.VideoEntry{}, true
	case model.KeySettings:
		return &model.Settings{}, true
	case model.KeyMetadata:
		return &model.Metadata{}, true
	case model.KeyScheduledReports:
		return &[]*model.ScheduledReport{}, true
	case model.KeyCalendarEvents:
		return &[]*model.CalendarEvent{}, true
	default:
		return nil, false
	}
}
