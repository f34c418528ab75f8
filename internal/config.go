package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys, shared by config files, TARGUS_* environment variables
// and command flags
const (
	KeyAPIURL             = "api_url"
	KeyTimeout            = "timeout"
	KeyLogLevel           = "log_level"
	KeyStorageBackend     = "storage.backend"
	KeyStoragePath        = "storage.path"
	KeyHistoryMaxMessages = "history.max_messages"
	KeyHealthInterval     = "health.interval"
	KeyRefreshInterval    = "collections.refresh_interval"
	KeyUploadFields       = "upload.field_names"
)

// DefaultAPIURL is used when nothing else configures the backend
const DefaultAPIURL = "http://localhost:8000"

// DefaultUploadFieldNames is the ordered list of multipart field names tried
// on upload
var DefaultUploadFieldNames = []string{"files", "file", "upload_file"}

// Config is the resolved configuration
type Config struct {
	APIURL      string            `mapstructure:"api_url"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	LogLevel    string            `mapstructure:"log_level"`
	Storage     StorageConfig     `mapstructure:"storage"`
	History     HistoryConfig     `mapstructure:"history"`
	Health      HealthConfig      `mapstructure:"health"`
	Collections CollectionsConfig `mapstructure:"collections"`
	Upload      UploadConfig      `mapstructure:"upload"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type HistoryConfig struct {
	MaxMessages int `mapstructure:"max_messages"`
}

type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type CollectionsConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type UploadConfig struct {
	FieldNames []string `mapstructure:"field_names"`
}

// NewViper returns a viper instance with defaults and TARGUS_* environment
// binding. storage.path defaults to "" and is resolved by LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyTimeout, 60*time.Second)
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyStorageBackend, BackendSQLite)
	v.SetDefault(KeyStoragePath, "")
	v.SetDefault(KeyHistoryMaxMessages, DefaultMaxMessages)
	v.SetDefault(KeyHealthInterval, DefaultHealthInterval)
	v.SetDefault(KeyRefreshInterval, DefaultRefreshInterval)
	v.SetDefault(KeyUploadFields, DefaultUploadFieldNames)

	v.SetEnvPrefix("targus")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads .env from the working directory without overriding the
// real environment. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// LoadConfig reads configFile (or config.yaml in paths.ConfigDir when empty)
// into v and resolves the result. Only an explicitly named file must exist.
func LoadConfig(v *viper.Viper, configFile string, paths AppPaths) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(paths.ConfigDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		LogDebug("Using config file %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendSQLite
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = paths.DefaultStoragePath(cfg.Storage.Backend)
	}
	cfg.Upload.FieldNames = cleanList(cfg.Upload.FieldNames)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an http(s) URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Storage.Backend != BackendSQLite && c.Storage.Backend != BackendFile {
		return fmt.Errorf("unsupported storage backend: %s (supported: sqlite, file)", c.Storage.Backend)
	}
	if c.History.MaxMessages < 0 {
		return fmt.Errorf("invalid history.max_messages %d: must be zero or positive", c.History.MaxMessages)
	}
	if c.Health.Interval <= 0 {
		return fmt.Errorf("invalid health.interval %s: must be positive", c.Health.Interval)
	}
	if c.Collections.RefreshInterval <= 0 {
		return fmt.Errorf("invalid collections.refresh_interval %s: must be positive", c.Collections.RefreshInterval)
	}
	if len(c.Upload.FieldNames) == 0 {
		return errors.New("upload.field_names must name at least one field")
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
