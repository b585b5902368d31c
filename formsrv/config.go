package formsrv

import (
	"fmt"
	"os"
	"time"

	"github.com/G-Node/formsrv/formsrv/builder"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DBConfig holds the settings of the store.
type DBConfig struct {
	// Driver is the database/sql driver: "sqlite3" (cgo) or "sqlite" (pure
	// Go).
	Driver string `yaml:"driver"`
	// Path of the sqlite database file.
	Path string `yaml:"path"`
	// ShowSQL logs every statement.
	ShowSQL bool `yaml:"show_sql"`
}

// AuthConfig holds the settings of the identity provider.
type AuthConfig struct {
	// Provider is "local" (accounts with email confirmation) or "gogs"
	// (sign in with a Gogs account).
	Provider string `yaml:"provider"`
	// Secret signs confirmation tokens.
	Secret string `yaml:"secret"`
	// GogsServer is the base URL of the Gogs server for the gogs provider.
	GogsServer string `yaml:"gogs_server"`
}

// Config containing all the configuration values for a service.
type Config struct {
	Port       uint16        `yaml:"port"`
	CookieName string        `yaml:"cookie_name"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	// BaseURL is the external address of the service, used in confirmation
	// links.
	BaseURL string `yaml:"base_url"`
	// Timezone for timestamps in the submissions view and exports.
	Timezone string `yaml:"timezone"`
	// FieldPolicy is "replace" or "diff" (see builder.Policy).
	FieldPolicy string `yaml:"field_policy"`
	// Assets is the directory served under /assets/.
	Assets string     `yaml:"assets"`
	DB     DBConfig   `yaml:"db"`
	Auth   AuthConfig `yaml:"auth"`
}

// ReadConfig reads the YAML configuration file at path.  If path is empty,
// only the defaults are used.  Every value that is not set is replaced by
// its default and logged.
func ReadConfig(path string, logger *zap.Logger) (*Config, error) {
	cfg := new(Config)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.SetDefaults(logger)
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills in the default for every value that is not set.
func (cfg *Config) SetDefaults(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	setDefault := func(name string, value interface{}) {
		logger.Info("[config] Setting default", zap.String("key", name), zap.Any("value", value))
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
		setDefault("port", cfg.Port)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "formsrv-session"
		setDefault("cookie_name", cfg.CookieName)
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
		setDefault("session_ttl", cfg.SessionTTL.String())
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
		setDefault("base_url", cfg.BaseURL)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
		setDefault("timezone", cfg.Timezone)
	}
	if cfg.FieldPolicy == "" {
		cfg.FieldPolicy = "replace"
		setDefault("field_policy", cfg.FieldPolicy)
	}
	if cfg.Assets == "" {
		cfg.Assets = "./assets"
		setDefault("assets", cfg.Assets)
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite3"
		setDefault("db.driver", cfg.DB.Driver)
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = "./formsrv.db"
		setDefault("db.path", cfg.DB.Path)
	}
	if cfg.Auth.Provider == "" {
		cfg.Auth.Provider = "local"
		setDefault("auth.provider", cfg.Auth.Provider)
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = uuid.New().String()
		logger.Warn("[config] No token secret configured; confirmation links will not survive a restart")
	}
}

// Check returns an error for values that can't be used.
func (cfg *Config) Check() error {
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if _, err := builder.ParsePolicy(cfg.FieldPolicy); err != nil {
		return err
	}
	switch cfg.DB.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}
	switch cfg.Auth.Provider {
	case "local":
	case "gogs":
		if cfg.Auth.GogsServer == "" {
			return fmt.Errorf("auth provider gogs requires auth.gogs_server")
		}
	default:
		return fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
	if cfg.SessionTTL < 0 {
		return fmt.Errorf("negative session_ttl %s", cfg.SessionTTL)
	}
	return nil
}
