package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
)

// RecoveryStatus represents the result of a database health check.
type RecoveryStatus struct {
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"lastCheck"`
	Keys      int       `json:"keys"`
	Bytes     int64     `json:"bytes"`
	Corrupted []string  `json:"corrupted,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

// CheckIntegrity verifies that every stored document decodes into its type.
// Corrupt keys are reported, not repaired: reads already fall back to the
// default for them.
func CheckIntegrity(db *DB) *RecoveryStatus {
	status := &RecoveryStatus{LastCheck: time.Now(), Healthy: true}

	if db == nil || db.db == nil {
		status.Healthy = false
		status.Errors = append(status.Errors, "database not initialized")
		return status
	}

	for _, key := range db.Keys() {
		data, err := db.GetBytes(key)
		if err != nil {
			if IsErrKeyNotFound(err) {
				continue
			}
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		status.Keys++
		status.Bytes += int64(len(data))

		target, _ := documentType(key)
		if err := json.Unmarshal(data, target); err != nil {
			status.Healthy = false
			status.Corrupted = append(status.Corrupted, key)
			logging.Warn("corrupt document", logging.KeyKey, key, logging.KeyError, err)
		}
	}
	return status
}

// OpenWithIntegrityCheck opens the database and fails when it cannot be
// read at all.
func OpenWithIntegrityCheck(opts Options) (*DB, error) {
	db, err := Open(opts)
	if err != nil {
		if IsDatabaseCorrupted(err) {
			return nil, errors.Wrap(errors.ErrDatabaseCorrupted, err.Error())
		}
		return nil, err
	}
	if status := CheckIntegrity(db); !status.Healthy {
		logging.Warn("database integrity check failed",
			"corrupted", strings.Join(status.Corrupted, ","),
			logging.KeyError, strings.Join(status.Errors, "; "))
	}
	return db, nil
}

// IsDatabaseCorrupted reports whether an open error looks like on-disk
// corruption.
func IsDatabaseCorrupted(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"corrupt", "checksum", "invalid manifest", "unexpected eof", "truncated"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
