package model

import "time"

// SchemaVersion is the version written to metadata and backups.
const SchemaVersion = "1"

// Metadata records store-level timestamps (singleton).
type Metadata struct {
	Version     string     `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastBackup  *time.Time `json:"lastBackup,omitempty"`
	LastRestore *time.Time `json:"lastRestore,omitempty"`
}

// NewMetadata creates metadata stamped with now.
func NewMetadata(now time.Time) *Metadata {
	return &Metadata{
		Version:   SchemaVersion,
		CreatedAt: now,
	}
}
