package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ClassifyConfig tunes the classification engine. Defaults match the
// derivation constants the archive has always used; override with care.
type ClassifyConfig struct {
	Workers            int     `yaml:"workers" mapstructure:"workers"`
	EvidenceWindow     int     `yaml:"evidence_window" mapstructure:"evidence_window"`
	ExcerptLength      int     `yaml:"excerpt_length" mapstructure:"excerpt_length"`
	DocConfidenceCap   float64 `yaml:"doc_confidence_cap" mapstructure:"doc_confidence_cap"`
	CorroborationBoost float64 `yaml:"corroboration_boost" mapstructure:"corroboration_boost"`
	BoostedCap         float64 `yaml:"boosted_cap" mapstructure:"boosted_cap"`
	FallbackLabel      string  `yaml:"fallback_label" mapstructure:"fallback_label"`
	FallbackConfidence float64 `yaml:"fallback_confidence" mapstructure:"fallback_confidence"`
}

// AnthropicConfig holds settings for the optional LLM supplement phase.
// An empty key disables the phase entirely.
type AnthropicConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	Model          string  `yaml:"model" mapstructure:"model"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENTITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "entity-cli.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("classify.workers", 4)
	v.SetDefault("classify.evidence_window", 150)
	v.SetDefault("classify.excerpt_length", 100)
	v.SetDefault("classify.doc_confidence_cap", 0.8)
	v.SetDefault("classify.corroboration_boost", 0.1)
	v.SetDefault("classify.boosted_cap", 0.9)
	v.SetDefault("classify.fallback_label", "peripheral_figure")
	v.SetDefault("classify.fallback_confidence", 0.3)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("anthropic.requests_per_sec", 2)
	v.SetDefault("anthropic.max_retries", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks settings needed before a batch run can start.
func (c *Config) Validate() error {
	var errs []string
	if c.Classify.Workers < 1 {
		errs = append(errs, "classify.workers must be >= 1")
	}
	if c.Classify.EvidenceWindow < 10 {
		errs = append(errs, "classify.evidence_window must be >= 10")
	}
	if c.Classify.DocConfidenceCap <= 0 || c.Classify.DocConfidenceCap > 1 {
		errs = append(errs, "classify.doc_confidence_cap must be in (0,1]")
	}
	if c.Classify.BoostedCap < c.Classify.DocConfidenceCap || c.Classify.BoostedCap > 1 {
		errs = append(errs, "classify.boosted_cap must be in [classify.doc_confidence_cap,1]")
	}
	if c.Classify.CorroborationBoost < 0 || c.Classify.CorroborationBoost > 1 {
		errs = append(errs, "classify.corroboration_boost must be in [0,1]")
	}
	if c.Classify.FallbackConfidence <= 0 || c.Classify.FallbackConfidence > 1 {
		errs = append(errs, "classify.fallback_confidence must be in (0,1]")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres", "none":
	default:
		errs = append(errs, "store.driver must be sqlite, postgres, or none")
	}
	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger. When LogConfig.File is
// set, output goes to a rotated file instead of stderr.
func InitLogger(cfg LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}

	if cfg.File != "" {
		var encoder zapcore.Encoder
		if cfg.Format == "console" {
			encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		} else {
			encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		}
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
		core := zapcore.NewCore(encoder, sink, level)
		zap.ReplaceGlobals(zap.New(core))
		return nil
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
