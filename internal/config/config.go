package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "PHOTOSHARE"

	defaultPort            = "8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultDSN             = "file:photoshare.db"
	defaultUploadsDir      = "./uploads"
	defaultMaxUploadSize   = 50 * 1024 * 1024
	defaultSweepInterval   = time.Hour
	defaultLogLevel        = "info"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppEnv   string         `mapstructure:"app_env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
	Admin    AdminConfig    `mapstructure:"admin"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the store. postgres:// DSNs use postgres, anything else is sqlite.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type StorageConfig struct {
	UploadsDir string `mapstructure:"uploads_dir"`
}

type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
}

type SweeperConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// AdminConfig carries the operator override code. Empty disables the override.
type AdminConfig struct {
	OverrideCode string `mapstructure:"override_code"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	OutputPaths []string `mapstructure:"output_paths"`
	ErrorPaths  []string `mapstructure:"error_paths"`
}

// Load reads .env, an optional YAML file and PHOTOSHARE_* environment variables.
// An explicit path must exist; without one a missing config.yaml is fine.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.Admin.OverrideCode = strings.TrimSpace(cfg.Admin.OverrideCode)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("storage.uploads_dir", defaultUploadsDir)
	v.SetDefault("upload.max_size", defaultMaxUploadSize)
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval", defaultSweepInterval)
	v.SetDefault("admin.override_code", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("log.error_paths", []string{"stderr"})
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if strings.TrimSpace(c.Storage.UploadsDir) == "" {
		return fmt.Errorf("storage.uploads_dir must not be empty")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be > 0")
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be > 0")
	}
	if isProdLike(c.AppEnv) && c.Admin.OverrideCode != "" && len(c.Admin.OverrideCode) < 12 {
		return fmt.Errorf("in prod/release admin.override_code must be at least 12 characters")
	}
	return nil
}

// IsProdLike reports whether AppEnv names a production deployment.
func (c *Config) IsProdLike() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
