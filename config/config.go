// Package config loads run settings from config.yaml and MDV_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration
type Config struct {
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Validate   ValidateConfig   `yaml:"validate" mapstructure:"validate"`
	POI        POIConfig        `yaml:"poi" mapstructure:"poi"`
	Imagery    ImageryConfig    `yaml:"imagery" mapstructure:"imagery"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the sector datasets
type DataConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"` // geojson or shapefile
}

// ValidateConfig tunes the multidigit validation run
type ValidateConfig struct {
	Workers          int     `yaml:"workers" mapstructure:"workers"`
	SampleCap        int     `yaml:"sample_cap" mapstructure:"sample_cap"`
	SiblingThreshold float64 `yaml:"sibling_threshold_m" mapstructure:"sibling_threshold_m"`
	LaneWidth        float64 `yaml:"lane_width_m" mapstructure:"lane_width_m"`
}

// POIConfig tunes misplaced POI detection
type POIConfig struct {
	Recheck bool `yaml:"recheck" mapstructure:"recheck"`
	Limit   int  `yaml:"limit" mapstructure:"limit"`
}

// ImageryConfig configures satellite tile access and patch sampling
type ImageryConfig struct {
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	URLTemplate    string  `yaml:"url_template" mapstructure:"url_template"`
	Format         string  `yaml:"format" mapstructure:"format"`
	Zoom           int     `yaml:"zoom" mapstructure:"zoom"`
	PatchSize      int     `yaml:"patch_size" mapstructure:"patch_size"`
	SidewalkOffset int     `yaml:"sidewalk_offset_px" mapstructure:"sidewalk_offset_px"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Retries        int     `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout is the per-request tile timeout
func (c ImageryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ClassifierConfig configures the zero-shot patch classifier
type ClassifierConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CategoriesFile string `yaml:"categories_file" mapstructure:"categories_file"`
}

// Timeout is the per-request classification timeout
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ReportConfig controls report output
type ReportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MDV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.dir", ".")
	v.SetDefault("data.format", "geojson")
	v.SetDefault("validate.workers", 0)
	v.SetDefault("validate.sample_cap", 10)
	v.SetDefault("validate.sibling_threshold_m", 80.0)
	v.SetDefault("validate.lane_width_m", 3.25)
	v.SetDefault("poi.recheck", false)
	v.SetDefault("poi.limit", 0)
	v.SetDefault("imagery.api_key", "")
	v.SetDefault("imagery.url_template", "https://maps.hereapi.com/v3/base/mc/{z}/{x}/{y}/{format}?apiKey={key}&style=satellite.day&tileSize={size}")
	v.SetDefault("imagery.format", "png")
	v.SetDefault("imagery.zoom", 17)
	v.SetDefault("imagery.patch_size", 160)
	v.SetDefault("imagery.sidewalk_offset_px", 10)
	v.SetDefault("imagery.rate_per_second", 5.0)
	v.SetDefault("imagery.retries", 3)
	v.SetDefault("imagery.timeout_secs", 30)
	v.SetDefault("classifier.base_url", "http://localhost:8000")
	v.SetDefault("classifier.timeout_secs", 60)
	v.SetDefault("classifier.categories_file", "POI_Facility_Types.csv")
	v.SetDefault("report.dir", "reports")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Check verifies the settings a run cannot start without
func (c *Config) Check() error {
	switch c.Data.Format {
	case "geojson", "shapefile":
	default:
		return eris.Errorf("config: data.format must be geojson or shapefile, got %q", c.Data.Format)
	}
	if c.Validate.SiblingThreshold <= 0 {
		return eris.New("config: validate.sibling_threshold_m must be positive")
	}
	if c.Validate.LaneWidth <= 0 {
		return eris.New("config: validate.lane_width_m must be positive")
	}
	if c.Validate.SampleCap < 0 || c.POI.Limit < 0 || c.Validate.Workers < 0 {
		return eris.New("config: counts must not be negative")
	}
	return nil
}

// InitLogger initializes the global zap logger
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
