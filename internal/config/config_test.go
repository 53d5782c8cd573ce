package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/creatorbook/internal/linking"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, storage.DefaultPath(), cfg.Database)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "substring", cfg.Matcher)
	assert.Equal(t, 5000.0, cfg.Defaults.PivaThreshold)
	assert.Equal(t, 165.0, cfg.Defaults.MonthlyTarget)
	assert.Equal(t, "EUR", cfg.Defaults.Currency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database: ":memory:"
reports_dir: /tmp/reports
refresh_interval: 10s
matcher: exact
mail:
  sendgrid_api_key: SG.secret-key
  from_email: me@example.com
defaults:
  piva_threshold: 8000
  currency: usd
`)

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, path, loader.FileUsed())

	assert.True(t, cfg.InMemory())
	assert.Equal(t, "/tmp/reports", cfg.ReportsDir)
	assert.Equal(t, Default().BackupsDir, cfg.BackupsDir)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "me@example.com", cfg.Mail.FromEmail)

	m := cfg.LinkMatcher()
	assert.True(t, m.Match("Deep Sleep", "deep sleep"))
	assert.False(t, m.Match("Deep Sleep", "Deep Sleep Vol 2"))

	s := cfg.Settings()
	assert.Equal(t, "8000", s.PivaThreshold.String())
	assert.Equal(t, "165", s.MonthlyTarget.String())
	assert.Equal(t, "USD", s.Currency)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "reports_dir: /tmp/reports\n")
	t.Setenv("CREATORBOOK_REPORTS_DIR", "/srv/reports")
	t.Setenv("CREATORBOOK_MAIL_SENDGRID_API_KEY", "SG.from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/reports", cfg.ReportsDir)
	assert.Equal(t, "SG.from-env", cfg.Mail.SendGridAPIKey)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad_email", "mail:\n  from_email: not-an-email\n"},
		{"bad_matcher", "matcher: fuzzy\n"},
		{"zero_threshold", "defaults:\n  piva_threshold: 0\n"},
		{"short_refresh", "refresh_interval: 10ms\n"},
		{"bad_currency", "defaults:\n  currency: euro\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	t.Run("malformed_yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "database: [unclosed\n"))
		assert.Error(t, err)
	})
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Mail.SendGridAPIKey = "SG.very-secret"

	r := cfg.Redacted()
	assert.Equal(t, "SG.v********", r.Mail.SendGridAPIKey)
	assert.Equal(t, "SG.very-secret", cfg.Mail.SendGridAPIKey)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creatorbook", "config.yaml")
	cfg := Default()
	cfg.Database = MemoryDatabase

	require.NoError(t, cfg.WriteFile(path, false))
	assert.Error(t, cfg.WriteFile(path, false))
	require.NoError(t, cfg.WriteFile(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh_interval: 30s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ReportsDir, loaded.ReportsDir)
	assert.Equal(t, cfg.RefreshInterval, loaded.RefreshInterval)
	assert.Equal(t, linking.Substring.Match("a", "a"), loaded.LinkMatcher().Match("a", "a"))
}
