package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sink kinds.
const (
	SinkSQLite = "sqlite"
	SinkMySQL  = "mysql"
	SinkJSONL  = "jsonl"
	SinkS3     = "s3"
	SinkMemory = "memory"
)

// Config holds application configuration
type Config struct {
	// Project identifier (URL slug). Takes precedence over ProjectName.
	Project string

	// Human readable project name, slugged when Project is empty
	ProjectName string

	API         APIConfig
	Sink        SinkConfig
	Database    DatabaseConfig
	ObjectStore ObjectStoreConfig
	Log         LogConfig

	// Run record file; empty uses state.json in the data directory
	StateFile string
}

// APIConfig holds settings for the albums API
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SinkConfig selects where the tables are written
type SinkConfig struct {
	Kind       string // sqlite, mysql, jsonl, s3, memory
	Dir        string // jsonl output directory
	SQLitePath string
}

// DatabaseConfig holds connection parameters for the mysql sink
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// ObjectStoreConfig holds connection parameters for the s3 sink
type ObjectStoreConfig struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// LogConfig controls the run log
type LogConfig struct {
	Level      string
	File       string // empty logs to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads configuration from .env, the config file and environment
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(getConfigDir())
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// ALBUMLOG_DATABASE_PASSWORD -> database.password
	v.SetEnvPrefix("ALBUMLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Project:     v.GetString("project"),
		ProjectName: v.GetString("project_name"),
		API: APIConfig{
			BaseURL:        v.GetString("api.base_url"),
			TimeoutSeconds: v.GetInt("api.timeout_seconds"),
		},
		Sink: SinkConfig{
			Kind:       strings.ToLower(v.GetString("sink.kind")),
			Dir:        v.GetString("sink.dir"),
			SQLitePath: v.GetString("sink.sqlite_path"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			Name:     v.GetString("database.name"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  v.GetString("object_store.endpoint"),
			Bucket:    v.GetString("object_store.bucket"),
			Prefix:    v.GetString("object_store.prefix"),
			AccessKey: v.GetString("object_store.access_key"),
			SecretKey: v.GetString("object_store.secret_key"),
			Region:    v.GetString("object_store.region"),
			UseSSL:    v.GetBool("object_store.use_ssl"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		StateFile: v.GetString("state_file"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project", "")
	v.SetDefault("project_name", "")
	v.SetDefault("api.base_url", "https://1001albumsgenerator.com/api/v1/")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("sink.kind", SinkJSONL)
	v.SetDefault("sink.dir", ".")
	v.SetDefault("sink.sqlite_path", "albums.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "music-app")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("object_store.endpoint", "")
	v.SetDefault("object_store.bucket", "albumlog")
	v.SetDefault("object_store.prefix", "")
	v.SetDefault("object_store.access_key", "")
	v.SetDefault("object_store.secret_key", "")
	v.SetDefault("object_store.region", "")
	v.SetDefault("object_store.use_ssl", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("state_file", "")
}

// ProjectID returns the project slug, deriving it from ProjectName when
// Project is not set.
func (c *Config) ProjectID() string {
	if c.Project != "" {
		return c.Project
	}
	return album.Slug(c.ProjectName)
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var problems []string

	if c.ProjectID() == "" {
		problems = append(problems, "project (or project_name) must be set")
	}

	if c.API.BaseURL == "" {
		problems = append(problems, "api.base_url cannot be empty")
	}
	if c.API.TimeoutSeconds < 0 {
		problems = append(problems, fmt.Sprintf("api.timeout_seconds must not be negative, got %d", c.API.TimeoutSeconds))
	}

	switch c.Sink.Kind {
	case SinkJSONL:
		if c.Sink.Dir == "" {
			problems = append(problems, "sink.dir cannot be empty for the jsonl sink")
		}
	case SinkSQLite:
		if c.Sink.SQLitePath == "" {
			problems = append(problems, "sink.sqlite_path cannot be empty for the sqlite sink")
		}
	case SinkMySQL:
		if c.Database.Host == "" {
			problems = append(problems, "database.host cannot be empty for the mysql sink")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.name cannot be empty for the mysql sink")
		}
		if c.Database.User == "" {
			problems = append(problems, "database.user cannot be empty for the mysql sink")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			problems = append(problems, fmt.Sprintf("database.port must be between 1 and 65535, got %d", c.Database.Port))
		}
	case SinkS3:
		if c.ObjectStore.Endpoint == "" {
			problems = append(problems, "object_store.endpoint cannot be empty for the s3 sink")
		}
		if c.ObjectStore.Bucket == "" {
			problems = append(problems, "object_store.bucket cannot be empty for the s3 sink")
		}
	case SinkMemory:
	default:
		problems = append(problems, fmt.Sprintf("sink.kind must be one of: sqlite, mysql, jsonl, s3, memory, got: %q", c.Sink.Kind))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		problems = append(problems, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got: %s", c.Log.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "albumlog")
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the directory for files albumlog keeps between runs
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".local", "share", "albumlog")
}

// StatePath returns the run record file
func (c *Config) StatePath() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	return filepath.Join(GetDataDir(), "state.json")
}

// GetConfigFile returns the path Save writes to
func GetConfigFile() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// Save writes configuration to file. Secrets are left out; keep them in
// .env or the environment.
func (c *Config) Save() error {
	v := viper.New()

	configDir := getConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v.Set("project", c.Project)
	v.Set("project_name", c.ProjectName)
	v.Set("api.base_url", c.API.BaseURL)
	v.Set("api.timeout_seconds", c.API.TimeoutSeconds)
	v.Set("sink.kind", c.Sink.Kind)
	v.Set("sink.dir", c.Sink.Dir)
	v.Set("sink.sqlite_path", c.Sink.SQLitePath)
	v.Set("database.host", c.Database.Host)
	v.Set("database.port", c.Database.Port)
	v.Set("database.name", c.Database.Name)
	v.Set("database.user", c.Database.User)
	v.Set("object_store.endpoint", c.ObjectStore.Endpoint)
	v.Set("object_store.bucket", c.ObjectStore.Bucket)
	v.Set("object_store.prefix", c.ObjectStore.Prefix)
	v.Set("object_store.region", c.ObjectStore.Region)
	v.Set("object_store.use_ssl", c.ObjectStore.UseSSL)
	v.Set("log.level", c.Log.Level)
	v.Set("log.file", c.Log.File)
	v.Set("state_file", c.StateFile)

	return v.WriteConfigAs(GetConfigFile())
}
