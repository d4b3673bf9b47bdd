package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Reports  ReportsConfig  `yaml:"reports" mapstructure:"reports"`
	Pdf      PdfConfig      `yaml:"pdf" mapstructure:"pdf"`
	Chunking ChunkingConfig `yaml:"chunking" mapstructure:"chunking"`
	Summary  SummaryConfig  `yaml:"summary" mapstructure:"summary"`
	Factors  FactorsConfig  `yaml:"factors" mapstructure:"factors"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ReportsConfig configures where uploaded reports live.
type ReportsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PdfConfig configures the poppler text extraction tools.
type PdfConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	PdfInfoPath   string `yaml:"pdfinfo_path" mapstructure:"pdfinfo_path"`
}

// ChunkingConfig configures section chunking for NLP stages.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"`
	Overlap   int `yaml:"overlap" mapstructure:"overlap"`
}

// SummaryConfig configures the summarisation backend. Provider is one of
// "extractive", "http" or "anthropic".
type SummaryConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
}

// Timeout returns the configured request timeout as a duration.
func (c SummaryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// FactorsConfig configures the emission factor catalog. An empty DataDir
// uses the embedded DEFRA tables.
type FactorsConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// BatchConfig configures batch report processing.
type BatchConfig struct {
	MaxConcurrentReports int `yaml:"max_concurrent_reports" mapstructure:"max_concurrent_reports"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
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
	v.SetEnvPrefix("COMPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "compass.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("reports.dir", "uploads")
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("pdf.pdfinfo_path", "pdfinfo")
	v.SetDefault("chunking.chunk_size", 1000)
	v.SetDefault("chunking.overlap", 200)
	v.SetDefault("summary.provider", "extractive")
	v.SetDefault("summary.timeout_secs", 60)
	v.SetDefault("summary.rps", 2.0)
	v.SetDefault("batch.max_concurrent_reports", 3)

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

// Validate checks the configuration for a given run mode. Mode is one
// of "cli" or "serve"; serve additionally requires a usable port.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch c.Summary.Provider {
	case "extractive":
	case "http":
		if c.Summary.Endpoint == "" {
			problems = append(problems, "summary.endpoint is required for the http provider")
		}
	case "anthropic":
		if c.Summary.Key == "" {
			problems = append(problems, "summary.key is required for the anthropic provider")
		}
	default:
		problems = append(problems, "summary.provider must be extractive, http or anthropic")
	}

	if c.Chunking.ChunkSize <= 0 {
		problems = append(problems, "chunking.chunk_size must be > 0")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.ChunkSize {
		problems = append(problems, "chunking.overlap must be >= 0 and below chunk_size")
	}
	if c.Batch.MaxConcurrentReports < 1 || c.Batch.MaxConcurrentReports > 20 {
		problems = append(problems, "batch.max_concurrent_reports must be between 1 and 20")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
