package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// EngineConfig exposes the training-load model constants. The literature
// leaves the exact ACWR windows and readiness weights open, so they are
// configuration rather than hardcoded assumptions.
type EngineConfig struct {
	CTLDays            float64 `mapstructure:"ctl_days"`
	ATLDays            float64 `mapstructure:"atl_days"`
	ACWRAcuteDays      int     `mapstructure:"acwr_acute_days"`
	ACWRChronicDays    int     `mapstructure:"acwr_chronic_days"`
	ACWRMinHistoryDays int     `mapstructure:"acwr_min_history_days"`

	ReadinessTSBWeight   float64 `mapstructure:"readiness_tsb_weight"`
	ReadinessTrendWeight float64 `mapstructure:"readiness_trend_weight"`

	ReadinessLowThreshold     float64 `mapstructure:"readiness_low_threshold"`
	ReadinessVeryLowThreshold float64 `mapstructure:"readiness_very_low_threshold"`
	LowerBodyDailyLimitAU     float64 `mapstructure:"lower_body_daily_limit_au"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: server.address -> SERVER_ADDRESS etc.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "resilio")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "24h")

	viper.SetDefault("engine.ctl_days", 42)
	viper.SetDefault("engine.atl_days", 7)
	viper.SetDefault("engine.acwr_acute_days", 7)
	viper.SetDefault("engine.acwr_chronic_days", 28)
	viper.SetDefault("engine.acwr_min_history_days", 28)
	viper.SetDefault("engine.readiness_tsb_weight", 60)
	viper.SetDefault("engine.readiness_trend_weight", 40)
	viper.SetDefault("engine.readiness_low_threshold", 50)
	viper.SetDefault("engine.readiness_very_low_threshold", 35)
	viper.SetDefault("engine.lower_body_daily_limit_au", 300)

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
