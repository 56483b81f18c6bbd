package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	current atomic.Pointer[Config]
	loaded  *viper.Viper

	hooksMu sync.Mutex
	hooks   []func(*Config)
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DashboardConfig controls where metrics come from and how views refresh.
type DashboardConfig struct {
	// CSVSource is a file path or an http(s) URL.
	CSVSource       string        `mapstructure:"csv_source"`
	AutoloadProject string        `mapstructure:"autoload_project"`
	ProjectsFile    string        `mapstructure:"projects_file"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	ClockInterval   time.Duration `mapstructure:"clock_interval"`
}

// RateLimitConfig limits manual uploads per client IP.
type RateLimitConfig struct {
	UploadPerMinute uint `mapstructure:"upload_per_minute"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.secure_cookies", false)

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Dashboard defaults
	v.SetDefault("dashboard.csv_source", "public/dashboard.csv")
	v.SetDefault("dashboard.autoload_project", "model-i")
	v.SetDefault("dashboard.projects_file", "config/projects.yaml")
	v.SetDefault("dashboard.max_upload_bytes", 1<<20)
	v.SetDefault("dashboard.fetch_timeout", 5*time.Second)
	v.SetDefault("dashboard.clock_interval", 5*time.Second)

	v.SetDefault("ratelimit.upload_per_minute", 10)
}

// Init initializes the configuration with Viper.
func Init(projectRoot string) error {
	// Values from .env become ordinary environment variables.
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("QADASH") // e.g., QADASH_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	conf, err := decode(v)
	if err != nil {
		return err
	}
	current.Store(conf)
	loaded = v
	return nil
}

// Watch hot-reloads the configuration file when it changes.
func Watch(log *zap.Logger) {
	if loaded == nil || loaded.ConfigFileUsed() == "" {
		return
	}
	v := loaded
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		conf, err := decode(v)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		apply(conf)
	})
	v.WatchConfig()
}

// OnChange registers fn to run after every successful reload. Server, logging
// and rate-limit settings are only read at startup; components that hold
// other settings use this to pick up changes.
func OnChange(fn func(*Config)) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = append(hooks, fn)
}

func apply(conf *Config) {
	current.Store(conf)

	hooksMu.Lock()
	fns := append(([]func(*Config))(nil), hooks...)
	hooksMu.Unlock()

	for _, fn := range fns {
		fn(conf)
	}
}

// Current returns the active configuration, or the defaults before Init.
func Current() *Config {
	if conf := current.Load(); conf != nil {
		return conf
	}
	v := viper.New()
	setDefaults(v)
	conf, err := decode(v)
	if err != nil {
		panic("config defaults do not decode: " + err.Error())
	}
	return conf
}

func decode(v *viper.Viper) (*Config, error) {
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &conf, nil
}
