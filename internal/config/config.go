package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds settings for the SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `mapstructure:"path" yaml:"path"`
}

// PushConfig holds settings for the Firebase push gateway.
type PushConfig struct {
	// CredentialsFile is the path to the Firebase service-account JSON.
	// When empty, push delivery is disabled and every send reports a
	// not-configured result.
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`

	// BatchSize is the maximum tokens per provider multicast call.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// RateLimit is the maximum provider calls per second.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// JobsConfig holds the cadences and tunables of the scheduled jobs.
type JobsConfig struct {
	ReminderIntervalSec int `mapstructure:"reminder_interval_sec" yaml:"reminder_interval_sec"`
	StatusIntervalSec   int `mapstructure:"status_interval_sec" yaml:"status_interval_sec"`
	ReviewIntervalSec   int `mapstructure:"review_interval_sec" yaml:"review_interval_sec"`
	NoShowIntervalSec   int `mapstructure:"noshow_interval_sec" yaml:"noshow_interval_sec"`

	// ReminderLeadMin is how far before the start time the reminder
	// window opens.
	ReminderLeadMin int `mapstructure:"reminder_lead_min" yaml:"reminder_lead_min"`

	// ReviewLookbackHours bounds how far back the review-request job
	// looks; older meetups are never retroactively notified.
	ReviewLookbackHours int `mapstructure:"review_lookback_hours" yaml:"review_lookback_hours"`

	// NoShowSettleHours is how long after a meetup's end attendance is
	// considered final.
	NoShowSettleHours int `mapstructure:"noshow_settle_hours" yaml:"noshow_settle_hours"`

	// NoShowPenalty is the trust-score deduction per confirmed no-show.
	NoShowPenalty int `mapstructure:"noshow_penalty" yaml:"noshow_penalty"`
}

// Config is the top-level service configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Push     PushConfig     `mapstructure:"push" yaml:"push"`
	Jobs     JobsConfig     `mapstructure:"jobs" yaml:"jobs"`
}

// ReminderInterval returns the reminder job cadence as a duration.
func (j JobsConfig) ReminderInterval() time.Duration {
	return time.Duration(j.ReminderIntervalSec) * time.Second
}

// StatusInterval returns the status-transition job cadence.
func (j JobsConfig) StatusInterval() time.Duration {
	return time.Duration(j.StatusIntervalSec) * time.Second
}

// ReviewInterval returns the review-request job cadence.
func (j JobsConfig) ReviewInterval() time.Duration {
	return time.Duration(j.ReviewIntervalSec) * time.Second
}

// NoShowInterval returns the no-show job cadence.
func (j JobsConfig) NoShowInterval() time.Duration {
	return time.Duration(j.NoShowIntervalSec) * time.Second
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "meetup-scheduler.db",
		},
		Push: PushConfig{
			BatchSize: 500,
			RateLimit: 10,
		},
		Jobs: JobsConfig{
			ReminderIntervalSec: 60,
			StatusIntervalSec:   300,
			ReviewIntervalSec:   600,
			NoShowIntervalSec:   3600,
			ReminderLeadMin:     30,
			ReviewLookbackHours: 24,
			NoShowSettleHours:   24,
			NoShowPenalty:       10,
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", "meetup-scheduler.db")
	v.SetDefault("push.batch_size", 500)
	v.SetDefault("push.rate_limit", 10)
	v.SetDefault("jobs.reminder_interval_sec", 60)
	v.SetDefault("jobs.status_interval_sec", 300)
	v.SetDefault("jobs.review_interval_sec", 600)
	v.SetDefault("jobs.noshow_interval_sec", 3600)
	v.SetDefault("jobs.reminder_lead_min", 30)
	v.SetDefault("jobs.review_lookback_hours", 24)
	v.SetDefault("jobs.noshow_settle_hours", 24)
	v.SetDefault("jobs.noshow_penalty", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
