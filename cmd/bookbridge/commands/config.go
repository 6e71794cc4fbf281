package commands

import (
	"bookbridge/internal/users"
	"bookbridge/pkg/configutil"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

type CatalogConfig struct {
	BaseUrl          string `json:"base_url"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	MaxPages         int    `json:"max_pages"`
}

type CacheConfig struct {
	TtlMinutes int `json:"ttl_minutes"`
	Capacity   int `json:"capacity"`
}

type SessionsConfig struct {
	TimeoutMinutes int    `json:"timeout_minutes"`
	Capacity       int    `json:"capacity"`
	SweepCron      string `json:"sweep_cron"`
}

type EmailConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	StartTLS     bool   `json:"starttls"`
	TLS          bool   `json:"tls"`
}

type Config struct {
	Catalog     CatalogConfig        `json:"catalog"`
	Cache       CacheConfig          `json:"cache"`
	Sessions    SessionsConfig       `json:"sessions"`
	PageSize    int                  `json:"page_size"`
	DownloadDir string               `json:"download_dir"`
	Email       EmailConfig          `json:"email"`
	KindleEmail string               `json:"kindle_email"`
	Database    users.DatabaseConfig `json:"database"`
}

func (c Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

func (c Config) CacheTtl() time.Duration {
	return time.Duration(c.Cache.TtlMinutes) * time.Minute
}

func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.Sessions.TimeoutMinutes) * time.Minute
}

func defaultConfig() Config {
	return Config{
		Email: EmailConfig{
			Port: 587,
		},
		Database: users.DatabaseConfig{
			File: "bookbridge.db",
		},
	}
}

type lookupEnvFunc func(key string) (string, bool)

// applyEnv overrides config values with the environment, SMTP_HOST may carry
// a port in the form host:port.
func applyEnv(config *Config, lookup lookupEnvFunc) error {
	if v, ok := lookup("CATALOG_URL"); ok && v != "" {
		config.Catalog.BaseUrl = v
	}
	if v, ok := lookup("SMTP_HOST"); ok && v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			config.Email.Server = v
		} else {
			parsed, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port in SMTP_HOST %q: %w", v, err)
			}
			config.Email.Server = host
			config.Email.Port = parsed
		}
	}
	if v, ok := lookup("SENDER_EMAIL"); ok && v != "" {
		config.Email.EmailAddress = v
	}
	if v, ok := lookup("SENDER_PASSWORD"); ok && v != "" {
		config.Email.Password = v
	}
	if v, ok := lookup("KINDLE_EMAIL"); ok && v != "" {
		config.KindleEmail = v
	}
	return nil
}

// LoadConfig merges, in increasing priority, built in defaults, the config
// file (and its local override) and the environment. A missing config file
// is not an error, a .env file in the working directory is loaded into the
// environment first if present.
func LoadConfig(name string) (Config, error) {
	config := defaultConfig()

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	fromFile, err := configutil.ReadRecursively[Config](name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", name, err)
	}
	if err == nil {
		err = mergo.Merge(&config, fromFile, mergo.WithOverride)
		if err != nil {
			return Config{}, err
		}
	}

	err = applyEnv(&config, os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
