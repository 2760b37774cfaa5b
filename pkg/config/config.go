package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/user/announcement-crawler/internal/entity"
)

// Config holds the application configuration.
type Config struct {
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	DataFolder        string `mapstructure:"DATA_FOLDER"`
	URLListPath       string `mapstructure:"URL_LIST_PATH"`
	DirectoryPath     string `mapstructure:"DIRECTORY_PATH"`
	AnnouncementsPath string `mapstructure:"ANNOUNCEMENTS_PATH"`

	Languages         []string `mapstructure:"-"`
	RawLanguages      string   `mapstructure:"LANGUAGES"`
	RpageDomainSuffix string   `mapstructure:"RPAGE_DOMAIN_SUFFIX"`

	CrawlWorkers int    `mapstructure:"CRAWL_WORKERS"`
	CrawlTimeout int    `mapstructure:"CRAWL_TIMEOUT"` // in seconds
	CleanupDays  int    `mapstructure:"CLEANUP_DAYS"`
	UseBrowser   bool   `mapstructure:"USE_BROWSER"`
	HTTPProxies  string `mapstructure:"HTTP_PROXIES"`

	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	LockTTL       int    `mapstructure:"LOCK_TTL"` // in minutes

	PushgatewayURL string `mapstructure:"PUSHGATEWAY_URL"`
}

var keys = []string{
	"LOG_LEVEL", "SERVER_PORT",
	"DATA_FOLDER", "URL_LIST_PATH", "DIRECTORY_PATH", "ANNOUNCEMENTS_PATH",
	"LANGUAGES", "RPAGE_DOMAIN_SUFFIX",
	"CRAWL_WORKERS", "CRAWL_TIMEOUT", "CLEANUP_DAYS", "USE_BROWSER", "HTTP_PROXIES",
	"POSTGRES_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOCK_TTL",
	"PUSHGATEWAY_URL",
}

// Load reads configuration from file or environment variables.
// configFile may be empty, in which case ".env" is tried.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	explicit := configFile != ""
	if !explicit {
		configFile = ".env"
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The implicit .env is optional so that production can configure purely
	// through environment variables. A file named by the caller must exist.
	if err := v.ReadInConfig(); err != nil && explicit {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	// Unmarshal only sees keys viper knows about, so register every key.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATA_FOLDER", "data")
	v.SetDefault("LANGUAGES", "zh-tw,en")
	v.SetDefault("RPAGE_DOMAIN_SUFFIX", "site.nthu.edu.tw")
	v.SetDefault("CRAWL_WORKERS", 8)
	v.SetDefault("CRAWL_TIMEOUT", 15)
	v.SetDefault("CLEANUP_DAYS", 90)
	v.SetDefault("USE_BROWSER", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", 30)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDerived()
	return &cfg, nil
}

func (c *Config) applyDerived() {
	if c.URLListPath == "" {
		c.URLListPath = filepath.Join(c.DataFolder, "announcement_urls.json")
	}
	if c.DirectoryPath == "" {
		c.DirectoryPath = filepath.Join(c.DataFolder, "directory.json")
	}
	if c.AnnouncementsPath == "" {
		c.AnnouncementsPath = filepath.Join(c.DataFolder, "announcements.json")
	}
	c.Languages = splitList(c.RawLanguages)
	if c.CrawlWorkers <= 0 {
		c.CrawlWorkers = 1
	}
	if c.CleanupDays <= 0 {
		c.CleanupDays = entity.DefaultCleanupDays
	}
}

// Proxies returns the configured proxy URLs.
func (c *Config) Proxies() []string {
	return splitList(c.HTTPProxies)
}

// PageTimeout is the per-page fetch timeout.
func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.CrawlTimeout) * time.Second
}

// LockTimeout is how long the store lock may be held.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTTL) * time.Minute
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
