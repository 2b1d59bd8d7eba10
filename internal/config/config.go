// Package config loads and validates the analyser configuration from
// config.yaml, ANALYSER_* environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every tunable of an analysis session.
type Config struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json"`

	Session  Session  `mapstructure:"session"`
	Telegram Telegram `mapstructure:"telegram"`
	Analysis Analysis `mapstructure:"analysis"`
	Storage  Storage  `mapstructure:"storage"`
}

// Session identifies the two people and the sources of one analysis.
type Session struct {
	// YourName and TargetName are the two canonical author names every
	// record is attributed to.
	YourName   string `mapstructure:"your_name"   validate:"required"`
	TargetName string `mapstructure:"target_name" validate:"required,nefield=YourName"`

	// DialogID is the counterpart's dialogue id on the messaging service.
	// Zero disables the service source.
	DialogID int64 `mapstructure:"dialog_id"`

	// ExportFile is the path to an exported dialogue dump. Empty disables
	// the export source.
	ExportFile string `mapstructure:"export_file"`

	// WordsFile optionally restricts the word report to listed words.
	WordsFile string `mapstructure:"words_file"`
}

// Telegram configures the service source.
type Telegram struct {
	Token string `mapstructure:"token"`

	// Limit caps how many newest messages are retrieved.
	Limit int `mapstructure:"limit" validate:"gt=0"`

	// VoiceMimeTypes lists audio codecs classified as voice notes rather
	// than songs. Provider-specific, hence configurable.
	VoiceMimeTypes []string `mapstructure:"voice_mime_types" validate:"min=1"`
}

// Analysis holds the bucketing and reporting knobs.
type Analysis struct {
	// MinutesPerBucket is the width of time-of-day bins.
	MinutesPerBucket int `mapstructure:"minutes_per_bucket" validate:"gt=0,lte=1440"`

	// MonthsThreshold switches chart axes from week to month ticks when a
	// corpus spans more than this many calendar months.
	MonthsThreshold int `mapstructure:"months_threshold" validate:"gte=0"`

	// MaxMessageLength bounds text length in the content filters.
	MaxMessageLength int `mapstructure:"max_message_length" validate:"gt=0"`

	// TopChart is the row count of frequency charts, TopWords the size of
	// the exported word ranking.
	TopChart int `mapstructure:"top_chart" validate:"gt=0"`
	TopWords int `mapstructure:"top_words" validate:"gt=0"`
}

// Storage locates the on-disk stores.
type Storage struct {
	ResultsDir string `mapstructure:"results_dir" validate:"required"`
	DBPath     string `mapstructure:"db_path"     validate:"required"`
}

// Load reads the configuration file at path (optional), applies ANALYSER_*
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ANALYSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; defaults and environment cover it.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	// Keys without a meaningful default are still registered so environment
	// overrides reach Unmarshal.
	v.SetDefault("session.your_name", "")
	v.SetDefault("session.target_name", "")
	v.SetDefault("session.dialog_id", 0)
	v.SetDefault("session.export_file", "")
	v.SetDefault("session.words_file", "")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.limit", 1_000_000)
	v.SetDefault("telegram.voice_mime_types", []string{"audio/ogg"})

	v.SetDefault("analysis.minutes_per_bucket", 2)
	v.SetDefault("analysis.months_threshold", 2)
	v.SetDefault("analysis.max_message_length", 4096)
	v.SetDefault("analysis.top_chart", 10)
	v.SetDefault("analysis.top_words", 1000)

	v.SetDefault("storage.results_dir", "results")
	v.SetDefault("storage.db_path", "messages.db")
}
