package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Saptiva  SaptivaConfig  `yaml:"saptiva" mapstructure:"saptiva"`
	Tavily   TavilyConfig   `yaml:"tavily" mapstructure:"tavily"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// SaptivaConfig holds Saptiva completion API settings. The three model names
// map to the tiers the pipeline uses: fast for identification, reasoning for
// per-competitor analysis, advanced for report synthesis.
type SaptivaConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	FastModel      string `yaml:"fast_model" mapstructure:"fast_model"`
	ReasoningModel string `yaml:"reasoning_model" mapstructure:"reasoning_model"`
	AdvancedModel  string `yaml:"advanced_model" mapstructure:"advanced_model"`
}

// TavilyConfig holds Tavily search API settings.
type TavilyConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// PipelineConfig configures report generation behavior.
type PipelineConfig struct {
	Days                int     `yaml:"days" mapstructure:"days"`
	MaxResults          int     `yaml:"max_results" mapstructure:"max_results"`
	MinScore            float64 `yaml:"min_score" mapstructure:"min_score"`
	ResearchConcurrency int     `yaml:"research_concurrency" mapstructure:"research_concurrency"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so their env bindings register.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("saptiva.key", "")
	v.SetDefault("tavily.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("saptiva.base_url", "https://api.saptiva.com/v1")
	v.SetDefault("saptiva.fast_model", "Saptiva Turbo")
	v.SetDefault("saptiva.reasoning_model", "Saptiva Cortex")
	v.SetDefault("saptiva.advanced_model", "Saptiva Legacy")
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.rate_per_sec", 5.0)
	v.SetDefault("pipeline.days", 30)
	v.SetDefault("pipeline.max_results", 10)
	v.SetDefault("pipeline.min_score", 0.4)
	v.SetDefault("pipeline.research_concurrency", 5)

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
