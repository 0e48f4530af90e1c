package docstore

import (
	"fmt"
	"os"
	"time"

	"github.com/mwantia/docstore/driver"
	"github.com/mwantia/docstore/log"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type StoreOptions struct {
	Name string
	Path string

	BackupEnabled  bool
	BackupInterval time.Duration
	BackupSchedule string // optional cron expression, takes precedence over the interval

	StrictMatch bool

	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool

	Driver driver.Driver
}

type StoreOption func(*StoreOptions) error

func newDefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		Name:           "data",
		Path:           "data",
		BackupEnabled:  true,
		BackupInterval: time.Hour,
		LogLevel:       log.Info,
	}
}

// WithName sets the collection name, used for the document file names.
func WithName(name string) StoreOption {
	return func(opts *StoreOptions) error {
		if name == "" {
			return fmt.Errorf("collection name must not be empty")
		}
		opts.Name = name
		return nil
	}
}

// WithPath sets the storage directory for the primary and backup documents.
func WithPath(path string) StoreOption {
	return func(opts *StoreOptions) error {
		if path == "" {
			return fmt.Errorf("storage path must not be empty")
		}
		opts.Path = path
		return nil
	}
}

// WithBackupInterval sets the delay between scheduled backups.
func WithBackupInterval(interval time.Duration) StoreOption {
	return func(opts *StoreOptions) error {
		if interval <= 0 {
			return fmt.Errorf("backup interval must be positive")
		}
		opts.BackupInterval = interval
		return nil
	}
}

// WithBackupSchedule sets a cron expression for scheduled backups,
// overriding the fixed interval.
func WithBackupSchedule(expr string) StoreOption {
	return func(opts *StoreOptions) error {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid backup schedule: %w", err)
		}
		opts.BackupSchedule = expr
		return nil
	}
}

// WithoutBackups disables scheduled backups. Manual Backup and Restore
// remain available.
func WithoutBackups() StoreOption {
	return func(opts *StoreOptions) error {
		opts.BackupEnabled = false
		return nil
	}
}

// WithStrictMatch makes exact string comparison the store-wide default for
// attribute matching.
func WithStrictMatch() StoreOption {
	return func(opts *StoreOptions) error {
		opts.StrictMatch = true
		return nil
	}
}

// WithDriver replaces the default jsonfile driver.
func WithDriver(d driver.Driver) StoreOption {
	return func(opts *StoreOptions) error {
		if d == nil {
			return fmt.Errorf("driver must not be nil")
		}
		opts.Driver = d
		return nil
	}
}

func WithLogLevel(logLevel log.LogLevel) StoreOption {
	return func(opts *StoreOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithLogFile(logFile string) StoreOption {
	return func(opts *StoreOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithoutTerminalLog() StoreOption {
	return func(opts *StoreOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

type optionsFile struct {
	Name           string `yaml:"name"`
	Path           string `yaml:"path"`
	BackupEnabled  *bool  `yaml:"backup_enabled"`
	BackupInterval string `yaml:"backup_interval"`
	BackupSchedule string `yaml:"backup_schedule"`
	StrictMatch    bool   `yaml:"strict_match"`
	LogLevel       string `yaml:"log_level"`
	LogFile        string `yaml:"log_file"`
	NoTerminalLog  bool   `yaml:"no_terminal_log"`
}

// OptionsFromFile loads store options from a YAML document.
// The result can be combined with further options passed to New.
func OptionsFromFile(path string) ([]StoreOption, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	var file optionsFile
	if err := yaml.Unmarshal(buffer, &file); err != nil {
		return nil, fmt.Errorf("failed to parse options file: %w", err)
	}

	var opts []StoreOption
	if file.Name != "" {
		opts = append(opts, WithName(file.Name))
	}
	if file.Path != "" {
		opts = append(opts, WithPath(file.Path))
	}
	if file.BackupEnabled != nil && !*file.BackupEnabled {
		opts = append(opts, WithoutBackups())
	}
	if file.BackupInterval != "" {
		interval, err := time.ParseDuration(file.BackupInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid backup_interval: %w", err)
		}
		opts = append(opts, WithBackupInterval(interval))
	}
	if file.BackupSchedule != "" {
		opts = append(opts, WithBackupSchedule(file.BackupSchedule))
	}
	if file.StrictMatch {
		opts = append(opts, WithStrictMatch())
	}
	if file.LogLevel != "" {
		opts = append(opts, WithLogLevel(log.Parse(file.LogLevel)))
	}
	if file.LogFile != "" {
		opts = append(opts, WithLogFile(file.LogFile))
	}
	if file.NoTerminalLog {
		opts = append(opts, WithoutTerminalLog())
	}

	return opts, nil
}
