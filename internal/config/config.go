package config

import (
	"github.com/maxviazov/fusion-resource-service/internal/logger"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	HTTP     HTTPConfig          `mapstructure:"http"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// HTTPConfig holds server timeouts (seconds) and CORS settings.
type HTTPConfig struct {
	ReadTimeout     int      `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    int      `mapstructure:"write_timeout" validate:"min=0"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout" validate:"min=0"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects the repository backend. "memory" skips Postgres entirely.
type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=postgres memory"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}
