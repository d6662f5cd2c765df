package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "SHORTS_NEWS_CONFIG"
	databaseURLEnv   = "DATABASE_URL"
	redisURLEnv      = "REDIS_URL"
	discordTokenEnv  = "DISCORD_TOKEN"
	searchAPIKeyEnv  = "CONTENT_SEARCH_API_KEY"
	searchAPIURLEnv  = "CONTENT_SEARCH_API_URL"
	logLevelEnv      = "LOG_LEVEL"
	portEnv          = "PORT"
	mediaDirEnv      = "MEDIA_DIR"
)

// Config holds the static configuration consumed by all services.
// It is loaded once at startup and never re-read mid-run.
type Config struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"logLevel"`
	DatabaseURL string `yaml:"databaseUrl"`
	RedisURL    string `yaml:"redisUrl"`

	Monitor       MonitorConfig       `yaml:"monitor"`
	ContentSearch ContentSearchConfig `yaml:"contentSearch"`
	Fetch         FetchConfig         `yaml:"fetch"`
	Media         MediaConfig         `yaml:"media"`
	Resolver      ResolverConfig      `yaml:"resolver"`

	// ExtraDomains extends an engine's claimed domain list from config,
	// keyed by engine name. Overlapping claims remain a fatal error at
	// registry startup.
	ExtraDomains map[string][]string `yaml:"extraDomains"`
}

// MonitorConfig wires the messaging-channel listener.
type MonitorConfig struct {
	DiscordToken  string `yaml:"discordToken"`
	CommandPrefix string `yaml:"commandPrefix"`
}

// ContentSearchConfig describes the third-party content-search fallback API.
type ContentSearchConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	MaxResults int    `yaml:"maxResults"`
}

// FetchConfig bounds direct page fetches.
type FetchConfig struct {
	TimeoutSec  int      `yaml:"timeoutSec"`
	RenderHosts []string `yaml:"renderHosts"`
}

// Timeout returns the per-attempt fetch deadline.
func (f FetchConfig) Timeout() time.Duration {
	if f.TimeoutSec <= 0 {
		return 8 * time.Second
	}
	return time.Duration(f.TimeoutSec) * time.Second
}

// MediaConfig bounds media acquisition.
type MediaConfig struct {
	Dir                 string `yaml:"dir"`
	LogoDir             string `yaml:"logoDir"`
	MaxImageSizeMB      int    `yaml:"maxImageSizeMb"`
	MaxVideoSizeMB      int    `yaml:"maxVideoSizeMb"`
	MaxVideoDurationSec int    `yaml:"maxVideoDurationSec"`
	YtdlpPath           string `yaml:"ytdlpPath"`
	FFmpegPath          string `yaml:"ffmpegPath"`
	FFprobePath         string `yaml:"ffprobePath"`
	DownloadTimeoutSec  int    `yaml:"downloadTimeoutSec"`
}

// MaxImageBytes returns the image size cap in bytes.
func (m MediaConfig) MaxImageBytes() int64 {
	return int64(m.MaxImageSizeMB) * 1024 * 1024
}

// MaxVideoBytes returns the video size cap in bytes.
func (m MediaConfig) MaxVideoBytes() int64 {
	return int64(m.MaxVideoSizeMB) * 1024 * 1024
}

// DownloadTimeout returns the per-download deadline.
func (m MediaConfig) DownloadTimeout() time.Duration {
	if m.DownloadTimeoutSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(m.DownloadTimeoutSec) * time.Second
}

// ResolverConfig tunes the orchestrator drain loop.
type ResolverConfig struct {
	PollIntervalSec int `yaml:"pollIntervalSec"`
	BatchLimit      int `yaml:"batchLimit"`
}

// PollInterval returns how long the resolver waits between drain passes
// when no wake signal arrives.
func (r ResolverConfig) PollInterval() time.Duration {
	if r.PollIntervalSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(r.PollIntervalSec) * time.Second
}

// Load reads the YAML config file named by SHORTS_NEWS_CONFIG (if set),
// applies environment overrides, then command line flags.
func Load() *Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("config: cannot read %s: %v", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			log.Fatalf("config: cannot parse %s: %v", path, err)
		}
	}

	cfg.applyEnvOverrides()

	flag.StringVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	return cfg
}

// LoadFile reads configuration from an explicit path, for tools that
// manage their own flags.
func LoadFile(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv(redisURLEnv); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv(discordTokenEnv); v != "" {
		c.Monitor.DiscordToken = v
	}
	if v := os.Getenv(searchAPIKeyEnv); v != "" {
		c.ContentSearch.APIKey = v
	}
	if v := os.Getenv(searchAPIURLEnv); v != "" {
		c.ContentSearch.Endpoint = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Port = v
	}
	if v := os.Getenv(mediaDirEnv); v != "" {
		c.Media.Dir = v
	}
}

func defaultConfig() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Monitor: MonitorConfig{
			CommandPrefix: "!",
		},
		ContentSearch: ContentSearchConfig{
			Endpoint:   "https://api.tavily.com/search",
			MaxResults: 3,
		},
		Fetch: FetchConfig{
			TimeoutSec:  8,
			RenderHosts: []string{"twitter.com", "x.com"},
		},
		Media: MediaConfig{
			Dir:                 "resources/media/news",
			LogoDir:             "resources/logos",
			MaxImageSizeMB:      10,
			MaxVideoSizeMB:      100,
			MaxVideoDurationSec: 300,
			YtdlpPath:           "yt-dlp",
			FFmpegPath:          "ffmpeg",
			FFprobePath:         "ffprobe",
		},
		Resolver: ResolverConfig{
			PollIntervalSec: 15,
			BatchLimit:      10,
		},
	}
}

// ValidateForMonitor ensures all required fields for the monitor service
// are present. Missing credentials are a fatal configuration error.
func (c *Config) ValidateForMonitor() error {
	if c.Monitor.DiscordToken == "" {
		return fmt.Errorf("environment variable %s is required for monitor service", discordTokenEnv)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("environment variable %s is required", databaseURLEnv)
	}
	if c.RedisURL == "" {
		return fmt.Errorf("environment variable %s is required", redisURLEnv)
	}
	return nil
}

// ValidateForResolver ensures all required fields for the resolver worker
// are present before any item is touched.
func (c *Config) ValidateForResolver() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("environment variable %s is required", databaseURLEnv)
	}
	if c.ContentSearch.APIKey == "" {
		return fmt.Errorf("environment variable %s is required for the content-search fallback", searchAPIKeyEnv)
	}
	if c.Media.Dir == "" {
		return fmt.Errorf("media directory must be configured")
	}
	return nil
}

// ValidateForAPI ensures all required fields for the read API are present.
func (c *Config) ValidateForAPI() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("environment variable %s is required", databaseURLEnv)
	}
	return nil
}
