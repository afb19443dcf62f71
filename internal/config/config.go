package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Scratch ScratchConfig `yaml:"scratch" mapstructure:"scratch"`
	Text    TextConfig    `yaml:"text" mapstructure:"text"`
	Photos  PhotoConfig   `yaml:"photos" mapstructure:"photos"`
	Scoring ScoringTable  `yaml:"scoring" mapstructure:"scoring"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// BatchConfig configures the document worker pool.
type BatchConfig struct {
	Workers         int `yaml:"workers" mapstructure:"workers"`
	TaskTimeoutSecs int `yaml:"task_timeout_secs" mapstructure:"task_timeout_secs"`
}

// TaskTimeout returns the per-document time budget.
func (b BatchConfig) TaskTimeout() time.Duration {
	return time.Duration(b.TaskTimeoutSecs) * time.Second
}

// ScratchConfig configures the scratch area shared by the workers.
type ScratchConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	Keep bool   `yaml:"keep" mapstructure:"keep"`
}

// TextConfig configures PDF text extraction.
type TextConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	Layout        bool   `yaml:"layout" mapstructure:"layout"`
}

// PhotoConfig configures photo detection in the "08 - Fotos" section.
type PhotoConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	PdfImagesPath string `yaml:"pdfimages_path" mapstructure:"pdfimages_path"`
	MinWidth      int    `yaml:"min_width" mapstructure:"min_width"`
	MinHeight     int    `yaml:"min_height" mapstructure:"min_height"`
	MinBytes      int64  `yaml:"min_bytes" mapstructure:"min_bytes"`
}

// ScoringTable is the two-tier coefficient table, keyed by photo status.
type ScoringTable struct {
	WithPhotos    ScoringTier `yaml:"with_photos" mapstructure:"with_photos"`
	WithoutPhotos ScoringTier `yaml:"without_photos" mapstructure:"without_photos"`
}

// ScoringTier holds the seven coefficients of one tier.
type ScoringTier struct {
	RFBase         float64 `yaml:"rf_base" mapstructure:"rf_base"`
	Regularization float64 `yaml:"regularization" mapstructure:"regularization"`
	Action         float64 `yaml:"action" mapstructure:"action"`
	OfficialNotice float64 `yaml:"official_notice" mapstructure:"official_notice"`
	NoticeReply    float64 `yaml:"notice_reply" mapstructure:"notice_reply"`
	Protocol       float64 `yaml:"protocol" mapstructure:"protocol"`
	PhotoBonus     float64 `yaml:"photo_bonus" mapstructure:"photo_bonus"`
}

// ReportConfig configures the rendered PDF report.
type ReportConfig struct {
	Title       string `yaml:"title" mapstructure:"title"`
	Supervision string `yaml:"supervision" mapstructure:"supervision"`
	LogoPath    string `yaml:"logo_path" mapstructure:"logo_path"`
}

// OutputConfig configures where batch artifacts are written.
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// A .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RFSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.task_timeout_secs", 30)
	v.SetDefault("scratch.dir", filepath.Join(os.TempDir(), "rfscore"))
	v.SetDefault("scratch.keep", false)
	v.SetDefault("text.pdftotext_path", "pdftotext")
	v.SetDefault("text.layout", false)
	v.SetDefault("photos.enabled", true)
	v.SetDefault("photos.pdfimages_path", "pdfimages")
	v.SetDefault("photos.min_width", 100)
	v.SetDefault("photos.min_height", 100)
	v.SetDefault("photos.min_bytes", 1000)
	v.SetDefault("scoring.with_photos.rf_base", 1.0)
	v.SetDefault("scoring.with_photos.regularization", 5.0)
	v.SetDefault("scoring.with_photos.action", 1.0)
	v.SetDefault("scoring.with_photos.official_notice", 1.0)
	v.SetDefault("scoring.with_photos.notice_reply", 2.0)
	v.SetDefault("scoring.with_photos.protocol", 1.0)
	v.SetDefault("scoring.with_photos.photo_bonus", 1.0)
	v.SetDefault("scoring.without_photos.rf_base", 0.5)
	v.SetDefault("scoring.without_photos.regularization", 2.5)
	v.SetDefault("scoring.without_photos.action", 0.5)
	v.SetDefault("scoring.without_photos.official_notice", 0.5)
	v.SetDefault("scoring.without_photos.notice_reply", 1.0)
	v.SetDefault("scoring.without_photos.protocol", 0.5)
	v.SetDefault("scoring.without_photos.photo_bonus", 0.0)
	v.SetDefault("report.title", "RELATÓRIO CREA-RJ - PONTUAÇÃO")
	v.SetDefault("report.supervision", "SBXD")
	v.SetDefault("report.logo_path", "")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.metrics_file", "")
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

	return &cfg, nil
}

// Validate checks the settings every command depends on.
// The scoring table is validated by the scorer package.
func (c *Config) Validate() error {
	var errs []string

	if c.Batch.Workers <= 0 {
		errs = append(errs, "batch.workers must be > 0")
	}
	if c.Batch.TaskTimeoutSecs <= 0 {
		errs = append(errs, "batch.task_timeout_secs must be > 0")
	}
	if c.Text.PdfToTextPath == "" {
		errs = append(errs, "text.pdftotext_path is required")
	}
	if c.Scratch.Dir == "" {
		errs = append(errs, "scratch.dir is required")
	}
	if c.Photos.Enabled {
		if c.Photos.PdfImagesPath == "" {
			errs = append(errs, "photos.pdfimages_path is required when photos are enabled")
		}
		if c.Photos.MinWidth < 0 || c.Photos.MinHeight < 0 || c.Photos.MinBytes < 0 {
			errs = append(errs, "photos thresholds must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
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
