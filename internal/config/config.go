package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds the fixed clinical constants the threshold engine
// derives from. Defaults follow the guideline; they are configurable so a
// site protocol can tighten them.
type EngineConfig struct {
	// EscalationOffsetMgDL is subtracted from the exchange threshold to
	// produce the escalation-of-care threshold.
	EscalationOffsetMgDL float64 `yaml:"escalation_offset_mg_dl" mapstructure:"escalation_offset_mg_dl"`
	// TcBOffsetMgDL is subtracted from the phototherapy threshold to
	// produce the transcutaneous-confirmation threshold, and bounds the
	// near-threshold discharge caveat.
	TcBOffsetMgDL float64 `yaml:"tcb_offset_mg_dl" mapstructure:"tcb_offset_mg_dl"`
	// DischargeWarningHours is the age below which near-threshold infants
	// get a delayed-discharge caveat; guidance rules windowed on the
	// discharge age split at the same hour.
	DischargeWarningHours int `yaml:"discharge_warning_hours" mapstructure:"discharge_warning_hours"`
	// FollowUpAgeHours is the hour the follow-up age windows in the
	// guidance catalog split on.
	FollowUpAgeHours int `yaml:"follow_up_age_hours" mapstructure:"follow_up_age_hours"`
}

// BatchConfig configures the batch assessment command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultEngineConfig returns the guideline-default engine constants.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		EscalationOffsetMgDL:  2.0,
		TcBOffsetMgDL:         2.0,
		DischargeWarningHours: 24,
		FollowUpAgeHours:      72,
	}
}

// ValidateEngine checks that an EngineConfig is internally consistent.
func ValidateEngine(c EngineConfig) error {
	var errs []string

	if c.EscalationOffsetMgDL < 0 {
		errs = append(errs, fmt.Sprintf("escalation_offset_mg_dl must be >= 0, got %g", c.EscalationOffsetMgDL))
	}
	if c.TcBOffsetMgDL < 0 {
		errs = append(errs, fmt.Sprintf("tcb_offset_mg_dl must be >= 0, got %g", c.TcBOffsetMgDL))
	}
	if c.DischargeWarningHours <= 0 {
		errs = append(errs, fmt.Sprintf("discharge_warning_hours must be > 0, got %d", c.DischargeWarningHours))
	}
	if c.FollowUpAgeHours <= 0 {
		errs = append(errs, fmt.Sprintf("follow_up_age_hours must be > 0, got %d", c.FollowUpAgeHours))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: engine validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BILI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("engine.escalation_offset_mg_dl", 2.0)
	v.SetDefault("engine.tcb_offset_mg_dl", 2.0)
	v.SetDefault("engine.discharge_warning_hours", 24)
	v.SetDefault("engine.follow_up_age_hours", 72)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if err := ValidateEngine(cfg.Engine); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
