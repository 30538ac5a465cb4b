package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Uploads    UploadsConfig    `yaml:"uploads"`
	Auth       AuthConfig       `yaml:"auth"`
	Views      ViewsConfig      `yaml:"views"`
	Publishing PublishingConfig `yaml:"publishing"`
	Theme      ThemeConfig      `yaml:"theme"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"The Press"`
	Description string `yaml:"description" default:"Articles, notes and long reads"`
	BaseURL     string `yaml:"base_url" default:"http://localhost:12600"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver" default:"sqlite"`
	DSN         string `yaml:"dsn" default:"./database.db"`
	Compression string `yaml:"compression" default:"zstd"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver" default:"fs"`
	Bucket        string `yaml:"bucket" default:"blog-images"`
	Endpoint      string `yaml:"endpoint" default:""`
	Region        string `yaml:"region" default:"auto"`
	UseSSL        bool   `yaml:"use_ssl" default:"true"`
	PublicBaseURL string `yaml:"public_base_url" default:"/uploads"`
	LocalDir      string `yaml:"local_dir" default:"./uploads"`

	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

type UploadsConfig struct {
	MaxBytes     int64  `yaml:"max_bytes" default:"5242880"`
	Prefix       string `yaml:"prefix" default:"uploads"`
	AllowedMIME  string `yaml:"allowed_mime_prefix" default:"image/"`
	CacheControl string `yaml:"cache_control" default:"max-age=3600"`
}

type AuthConfig struct {
	Type        string `yaml:"type" default:"ed25519"`
	HeaderName  string `yaml:"header_name" default:"Authorization"`
	AdminUserID string `yaml:"admin_user_id" default:"admin"`

	Ed25519PublicKey string `yaml:"-"`
	ClerkKey         string `yaml:"-"`
}

type ViewsConfig struct {
	Driver        string `yaml:"driver" default:"sql"`
	RedisAddr     string `yaml:"redis_addr" default:"localhost:6379"`
	RedisDB       int    `yaml:"redis_db" default:"0"`
	RedisPassword string `yaml:"-"`
	PopularLimit  int    `yaml:"popular_limit" default:"5"`
	PopularMax    int    `yaml:"popular_max" default:"50"`
}

type PublishingConfig struct {
	RefreshPublishedAt bool `yaml:"refresh_published_at" default:"false"`
}

type ThemeConfig struct {
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	Default string `yaml:"default" default:"gruvbox"`
}

var AppConfig *Config

// Default returns a Config with all default values applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func LoadConfig(path string) error {
	config := Default()

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyEnv(os.Getenv)

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	AppConfig = config
	return nil
}

// ApplyEnv overlays secrets and deployment specific values from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Database.Driver, "DATABASE_DRIVER")
	set(&c.Database.DSN, "DATABASE_DSN")
	set(&c.Storage.Driver, "STORAGE_DRIVER")
	set(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	set(&c.Storage.Bucket, "STORAGE_BUCKET")
	set(&c.Storage.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL")
	set(&c.Storage.AccessKey, "STORAGE_ACCESS_KEY_ID")
	set(&c.Storage.SecretKey, "STORAGE_ACCESS_KEY_SECRET")
	set(&c.Auth.Ed25519PublicKey, "ED25519_PUBKEY")
	set(&c.Auth.ClerkKey, "CLERK_API")
	set(&c.Views.RedisAddr, "REDIS_ADDR")
	set(&c.Views.RedisPassword, "REDIS_PASSWORD")
	set(&c.Logging.Level, "LOG_LEVEL")
	set(&c.Server.Port, "PORT")
}

func (c *Config) Validate() error {
	return validation.Errors{
		"database.driver":      validation.Validate(c.Database.Driver, validation.Required, validation.In("sqlite", "postgres")),
		"database.dsn":         validation.Validate(c.Database.DSN, validation.Required),
		"database.compression": validation.Validate(c.Database.Compression, validation.In("zstd", "gzip", "none")),
		"storage.driver":       validation.Validate(c.Storage.Driver, validation.Required, validation.In("s3", "minio", "fs")),
		"storage.bucket":       validation.Validate(c.Storage.Bucket, validation.Required),
		"uploads.max_bytes":    validation.Validate(c.Uploads.MaxBytes, validation.Min(int64(1))),
		"auth.type":            validation.Validate(c.Auth.Type, validation.Required, validation.In("ed25519", "clerk")),
		"views.driver":         validation.Validate(c.Views.Driver, validation.Required, validation.In("sql", "redis")),
		"views.popular_limit":  validation.Validate(c.Views.PopularLimit, validation.Min(1), validation.Max(c.Views.PopularMax)),
		"views.popular_max":    validation.Validate(c.Views.PopularMax, validation.Min(1)),
	}.Filter()
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
