package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/elonfeng/tasteprice/pkg/fuzzy"
	"github.com/elonfeng/tasteprice/pkg/recommend"
	"github.com/elonfeng/tasteprice/pkg/source"
)

// Config is the root configuration.
type Config struct {
	Table     TableConfig     `yaml:"table"`
	Recommend RecommendConfig `yaml:"recommend"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Sources   SourcesConfig   `yaml:"sources"`
	Filter    FilterConfig    `yaml:"filter"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// TableConfig locates the dish table. A .csv path is a CSV file; anything
// else is a SQLite database.
type TableConfig struct {
	Path string `yaml:"path"`
}

// RecommendConfig holds recommendation defaults.
type RecommendConfig struct {
	TopK      int     `yaml:"top_k"`
	Cutoff    int     `yaml:"cutoff"`
	Limit     int     `yaml:"limit"`
	CheapBias float64 `yaml:"cheap_bias"`
}

// Options returns the engine options. Out of range values fall back to the
// defaults.
func (r RecommendConfig) Options() recommend.Options {
	def := recommend.DefaultOptions()
	opts := recommend.Options{TopK: r.TopK, Cutoff: r.Cutoff, Limit: r.Limit, CheapBias: r.CheapBias}
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.Cutoff < 0 || opts.Cutoff > 100 {
		opts.Cutoff = def.Cutoff
	}
	if opts.Limit <= 0 {
		opts.Limit = def.Limit
	}
	if opts.CheapBias < 0 || opts.CheapBias > 1 {
		opts.CheapBias = def.CheapBias
	}
	return opts
}

// ScheduleConfig configures collection and cache refresh intervals.
type ScheduleConfig struct {
	CollectInterval string `yaml:"collect_interval"`
	RefreshInterval string `yaml:"refresh_interval"`
}

// ParseCollectInterval returns the collect interval as time.Duration.
func (s ScheduleConfig) ParseCollectInterval() time.Duration {
	return parseInterval(s.CollectInterval, 6*time.Hour)
}

// ParseRefreshInterval returns the cache refresh interval as time.Duration.
func (s ScheduleConfig) ParseRefreshInterval() time.Duration {
	return parseInterval(s.RefreshInterval, 5*time.Minute)
}

func parseInterval(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// SourcesConfig holds configuration for all collectors.
type SourcesConfig struct {
	Chowdeck          ChowdeckConfig `yaml:"chowdeck"`
	Menus             MenusConfig    `yaml:"menus"`
	Feeds             FeedsConfig    `yaml:"feeds"`
	RequestsPerSecond float64        `yaml:"requests_per_second"`
}

// Endpoint is a named URL.
type Endpoint struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ChowdeckConfig for the vendor menu API collector.
type ChowdeckConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Location string     `yaml:"location"`
	Vendors  []Endpoint `yaml:"vendors"`
}

// MenusConfig for the menu page scraper.
type MenusConfig struct {
	Enabled  bool         `yaml:"enabled"`
	Location string       `yaml:"location"`
	Pages    []PageConfig `yaml:"pages"`
}

// PageConfig is a single menu page and the layout used to parse it.
type PageConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Parser string `yaml:"parser"`
}

// FeedsConfig for the RSS/Atom menu feed collector.
type FeedsConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Location string     `yaml:"location"`
	Feeds    []Endpoint `yaml:"feeds"`
}

// FilterConfig configures collected row filtering.
type FilterConfig struct {
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig configures the global logger. Format is "json" or "console".
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Table: TableConfig{Path: "./data/dishes.csv"},
		Recommend: RecommendConfig{
			TopK:      recommend.DefaultTopK,
			Cutoff:    fuzzy.DefaultCutoff,
			Limit:     fuzzy.DefaultLimit,
			CheapBias: recommend.DefaultCheapBias,
		},
		Schedule: ScheduleConfig{
			CollectInterval: "6h",
			RefreshInterval: "5m",
		},
		Sources: SourcesConfig{
			Chowdeck: ChowdeckConfig{
				Enabled:  false,
				Location: source.DefaultLocation,
				Vendors: []Endpoint{
					{Name: "KFC", URL: "https://api.chowdeck.com/customer/vendor/117067/menu"},
					{Name: "Burkina Waakye", URL: "https://api.chowdeck.com/customer/vendor/119384/menu"},
					{Name: "Asanka Restaurant", URL: "https://api.chowdeck.com/customer/vendor/117094/menu"},
					{Name: "PS Banku and Tilapia", URL: "https://api.chowdeck.com/customer/vendor/119269/menu"},
				},
			},
			Menus: MenusConfig{
				Enabled:  false,
				Location: source.DefaultLocation,
				Pages: []PageConfig{
					{Name: "Bistro 22", URL: "https://www.ghanamenu.com/business.php?term=&id=137", Parser: source.ParserGhanaMenu},
					{Name: "Green Pepper", URL: "https://qrmenu.com/menus/green-pepper-restaurant/soups/", Parser: source.ParserQRMenu},
				},
			},
			Feeds: FeedsConfig{
				Enabled:  false,
				Location: source.DefaultLocation,
			},
			RequestsPerSecond: 2,
		},
		Alerts: AlertsConfig{},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrapf(err, "parse config %s", path)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASTEPRICE_TABLE_PATH"); v != "" {
		cfg.Table.Path = v
	}
	if v := os.Getenv("TASTEPRICE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TASTEPRICE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("TASTEPRICE_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Webhook.URL = v
		cfg.Alerts.Webhook.Enabled = true
	}
	if v := os.Getenv("TASTEPRICE_WEBHOOK_SECRET"); v != "" {
		cfg.Alerts.Webhook.Secret = v
	}
}

// InitLogger builds a logger from cfg and installs it as the zap global.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, eris.Wrap(err, "config: parse log level")
		}
		level = l
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
