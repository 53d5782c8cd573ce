// Package config loads creatorbook's configuration from a YAML file and
// CREATORBOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/creatorbook/internal/linking"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/storage"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// EnvPrefix prefixes every environment override, e.g.
// CREATORBOOK_MAIL_SENDGRID_API_KEY.
const EnvPrefix = "CREATORBOOK"

// MemoryDatabase selects an in-memory database.
const MemoryDatabase = ":memory:"

// Config is the full application configuration.
type Config struct {
	Database        string         `mapstructure:"database" yaml:"database" validate:"required"`
	ReportsDir      string         `mapstructure:"reports_dir" yaml:"reports_dir" validate:"required"`
	BackupsDir      string         `mapstructure:"backups_dir" yaml:"backups_dir" validate:"required"`
	RefreshInterval time.Duration  `mapstructure:"refresh_interval" yaml:"refresh_interval" validate:"gte=1s"`
	Matcher         string         `mapstructure:"matcher" yaml:"matcher" validate:"omitempty,oneof=substring exact"`
	Storage         StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Mail            MailConfig     `mapstructure:"mail" yaml:"mail"`
	Defaults        DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
}

// StorageConfig tunes the persistence layer.
type StorageConfig struct {
	// MaxValueSize caps the serialized size of one key in bytes.
	MaxValueSize int `mapstructure:"max_value_size" yaml:"max_value_size" validate:"gte=0"`
}

// MailConfig holds SendGrid delivery settings. Mail is disabled while the
// API key is empty.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key" yaml:"sendgrid_api_key"`
	FromEmail      string `mapstructure:"from_email" yaml:"from_email" validate:"omitempty,email"`
	FromName       string `mapstructure:"from_name" yaml:"from_name" validate:"max=128"`
}

// DefaultsConfig seeds the settings used until the user saves their own.
type DefaultsConfig struct {
	PivaThreshold float64 `mapstructure:"piva_threshold" yaml:"piva_threshold" validate:"gt=0"`
	MonthlyTarget float64 `mapstructure:"monthly_target" yaml:"monthly_target" validate:"gte=0"`
	Currency      string  `mapstructure:"currency" yaml:"currency" validate:"len=3"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := filepath.Join(xdg.DataHome, storage.AppName)
	return &Config{
		Database:        storage.DefaultPath(),
		ReportsDir:      filepath.Join(dataDir, "reports"),
		BackupsDir:      filepath.Join(dataDir, "backups"),
		RefreshInterval: 30 * time.Second,
		Matcher:         "substring",
		Storage: StorageConfig{
			MaxValueSize: storage.DefaultMaxValueSize,
		},
		Mail: MailConfig{
			FromName: "creatorbook",
		},
		Defaults: DefaultsConfig{
			PivaThreshold: model.DefaultPivaThreshold.InexactFloat64(),
			MonthlyTarget: model.DefaultMonthlyTarget.InexactFloat64(),
			Currency:      model.DefaultCurrency,
		},
	}
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, storage.AppName, "config.yaml")
}

// Loader reads configuration with viper.
type Loader struct {
	viper *viper.Viper
}

// NewLoader creates a loader. An empty configFile searches ./config.yaml
// and the XDG config directory.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, storage.AppName))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{viper: v}
}

// Load reads the file (if any), applies environment overrides and
// validates the result. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	v := l.viper
	d := Default()

	// Every key needs a default so AutomaticEnv can override it.
	v.SetDefault("database", d.Database)
	v.SetDefault("reports_dir", d.ReportsDir)
	v.SetDefault("backups_dir", d.BackupsDir)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("matcher", d.Matcher)
	v.SetDefault("storage.max_value_size", d.Storage.MaxValueSize)
	v.SetDefault("mail.sendgrid_api_key", d.Mail.SendGridAPIKey)
	v.SetDefault("mail.from_email", d.Mail.FromEmail)
	v.SetDefault("mail.from_name", d.Mail.FromName)
	v.SetDefault("defaults.piva_threshold", d.Defaults.PivaThreshold)
	v.SetDefault("defaults.monthly_target", d.Defaults.MonthlyTarget)
	v.SetDefault("defaults.currency", d.Defaults.Currency)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.Database = expandHome(cfg.Database)
	cfg.ReportsDir = expandHome(cfg.ReportsDir)
	cfg.BackupsDir = expandHome(cfg.BackupsDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.DebugLog("config loaded", logging.KeyPath, v.ConfigFileUsed())
	return &cfg, nil
}

// FileUsed returns the config file that was read, empty when none was.
func (l *Loader) FileUsed() string {
	return l.viper.ConfigFileUsed()
}

// Load is NewLoader(configFile).Load().
func Load(configFile string) (*Config, error) {
	return NewLoader(configFile).Load()
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	v, err := validate.New(nil)
	if err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LinkMatcher returns the configured title matcher.
func (c *Config) LinkMatcher() linking.Matcher {
	if m, ok := linking.ByName(c.Matcher); ok {
		return m
	}
	return linking.Default
}

// InMemory reports whether the database is in-memory.
func (c *Config) InMemory() bool {
	return c.Database == MemoryDatabase
}

// Settings returns the configured default settings.
func (c *Config) Settings() *model.Settings {
	return &model.Settings{
		PivaThreshold: decimal.NewFromFloat(c.Defaults.PivaThreshold),
		MonthlyTarget: decimal.NewFromFloat(c.Defaults.MonthlyTarget),
		Currency:      strings.ToUpper(c.Defaults.Currency),
	}
}

// Redacted returns a copy safe to print: the API key is masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Mail.SendGridAPIKey = logging.MaskSecret(c.Mail.SendGridAPIKey)
	return &out
}

// YAML encodes the configuration as a config file.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes c to path as YAML. An existing file is only replaced
// when force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := c.YAML()
	if err != nil {
		return err
	}
	return storage.SafeWrite(path, data, 0o600)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
