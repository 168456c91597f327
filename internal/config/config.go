package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	S3          S3Config          `mapstructure:"s3"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Health      HealthConfig      `mapstructure:"health"`
	Rollup      RollupConfig      `mapstructure:"rollup"`
	Timer       TimerConfig       `mapstructure:"timer"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	GinMode string `mapstructure:"gin_mode"`
}

// DatabaseConfig selects the document/sample backend. Driver is "mongo" or
// "memory".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// JWTConfig holds the key used to verify tokens issued by the auth provider.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	File     string `mapstructure:"file"`
	ToStdout bool   `mapstructure:"to_stdout"`
	JSON     bool   `mapstructure:"json"`
}

type HealthConfig struct {
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	RecentWorkouts int           `mapstructure:"recent_workouts"`
}

type RollupConfig struct {
	Periods   int    `mapstructure:"periods"`
	WeekStart string `mapstructure:"week_start"`
	Timezone  string `mapstructure:"timezone"`
}

type TimerConfig struct {
	CountdownSeconds int           `mapstructure:"countdown_seconds"`
	HangTick         time.Duration `mapstructure:"hang_tick"`
	RestTick         time.Duration `mapstructure:"rest_tick"`
	RestSeconds      int           `mapstructure:"rest_seconds"`
}

type LeaderboardConfig struct {
	CacheSizeMB int           `mapstructure:"cache_size_mb"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "climb_tracker")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.to_stdout", true)
	v.SetDefault("health.query_timeout", "10s")
	v.SetDefault("health.recent_workouts", 5)
	v.SetDefault("rollup.periods", 5)
	v.SetDefault("rollup.week_start", "monday")
	v.SetDefault("rollup.timezone", "UTC")
	v.SetDefault("timer.countdown_seconds", 3)
	v.SetDefault("timer.hang_tick", "10ms")
	v.SetDefault("timer.rest_tick", "1s")
	v.SetDefault("timer.rest_seconds", 180)
	v.SetDefault("leaderboard.cache_size_mb", 8)
	v.SetDefault("leaderboard.cache_ttl", "30s")
	v.SetDefault("metrics.namespace", "climb_tracker")
}

// LoadConfig reads config.yaml from path, overlaid with environment
// variables (server.address -> SERVER_ADDRESS). A missing file is fine.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	return config, nil
}
