package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Geofence  GeofenceConfig  `yaml:"geofence"`
	Session   SessionConfig   `yaml:"session"`
	Reminders RemindersConfig `yaml:"reminders"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Log       LogConfig       `yaml:"log"`
}

// TelegramConfig contains Bot API settings
type TelegramConfig struct {
	Token         string `yaml:"token"`
	AdminChatID   int64  `yaml:"admin_chat_id"`
	PollTimeoutS  int    `yaml:"poll_timeout_seconds"`
	WebhookURL    string `yaml:"webhook_url"`    // empty = long polling
	WebhookSecret string `yaml:"webhook_secret"` // required when webhook_url is set
	ListenAddr    string `yaml:"listen_addr"`    // webhook listen address
}

// SheetsConfig contains record store settings
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file"`
	CandidatesSheet string `yaml:"candidates_sheet"`
	AttendanceSheet string `yaml:"attendance_sheet"`
}

// GeofenceConfig contains the check-in reference point and radius
type GeofenceConfig struct {
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

// SessionConfig contains conversation session store settings
type SessionConfig struct {
	TTLMinutes        int `yaml:"ttl_minutes"`
	SweepEveryMinutes int `yaml:"sweep_every_minutes"`
	MaxEntries        int `yaml:"max_entries"`
}

// RemindersConfig contains reminder sweep settings
type RemindersConfig struct {
	PreCourseSweep string `yaml:"pre_course_sweep"` // cron spec
	CourseDaySweep string `yaml:"course_day_sweep"` // cron spec
	SendHour       int    `yaml:"send_hour"`        // local hour a reminder becomes due
}

// NotifierConfig contains admin escalation email settings
type NotifierConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	AdminEmail     string `yaml:"admin_email"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format     string `yaml:"format"` // "json" or "text"
	File       string `yaml:"file"`   // empty = stdout only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Telegram
	if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
		c.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); val != "" {
		fmt.Sscanf(val, "%d", &c.Telegram.AdminChatID)
	}
	if val := os.Getenv("TELEGRAM_WEBHOOK_URL"); val != "" {
		c.Telegram.WebhookURL = val
	}
	if val := os.Getenv("TELEGRAM_WEBHOOK_SECRET"); val != "" {
		c.Telegram.WebhookSecret = val
	}
	if val := os.Getenv("TELEGRAM_LISTEN_ADDR"); val != "" {
		c.Telegram.ListenAddr = val
	}

	// Sheets
	if val := os.Getenv("SHEETS_SPREADSHEET_ID"); val != "" {
		c.Sheets.SpreadsheetID = val
	}
	if val := os.Getenv("SHEETS_CREDENTIALS_FILE"); val != "" {
		c.Sheets.CredentialsFile = val
	}

	// Notifier
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Notifier.SendGridAPIKey = val
	}
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Notifier.AdminEmail = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Telegram validation
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if c.Telegram.AdminChatID == 0 {
		return fmt.Errorf("telegram admin chat id is required")
	}
	if c.Telegram.WebhookURL != "" && c.Telegram.WebhookSecret == "" {
		return fmt.Errorf("webhook secret is required when webhook url is set")
	}
	if c.Telegram.PollTimeoutS <= 0 {
		c.Telegram.PollTimeoutS = 30
	}
	if c.Telegram.ListenAddr == "" {
		c.Telegram.ListenAddr = ":8080"
	}

	// Sheets validation
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is required")
	}
	if c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets credentials file is required")
	}
	if c.Sheets.CandidatesSheet == "" {
		c.Sheets.CandidatesSheet = "Candidates"
	}
	if c.Sheets.AttendanceSheet == "" {
		c.Sheets.AttendanceSheet = "Attendance"
	}

	// Geofence validation
	if c.Geofence.Latitude == 0 && c.Geofence.Longitude == 0 {
		return fmt.Errorf("geofence reference point is required")
	}
	if c.Geofence.RadiusMeters <= 0 {
		c.Geofence.RadiusMeters = 500
	}

	// Session defaults
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 30
	}
	if c.Session.SweepEveryMinutes <= 0 {
		c.Session.SweepEveryMinutes = 10
	}
	if c.Session.MaxEntries <= 0 {
		c.Session.MaxEntries = 10000
	}

	// Reminder defaults: sweep every ten minutes; due predicates are >= so a
	// missed tick is caught by the next one.
	if c.Reminders.PreCourseSweep == "" {
		c.Reminders.PreCourseSweep = "0 */10 * * * *"
	}
	if c.Reminders.CourseDaySweep == "" {
		c.Reminders.CourseDaySweep = "0 */10 * * * *"
	}
	if c.Reminders.SendHour <= 0 {
		c.Reminders.SendHour = 9
	}
	if c.Reminders.SendHour > 23 {
		return fmt.Errorf("invalid reminder send hour: %d", c.Reminders.SendHour)
	}

	return nil
}
