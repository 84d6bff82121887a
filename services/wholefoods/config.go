package wholefoods

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
	"wholefoods-scraper/lib/configutil"
	configlibsql "wholefoods-scraper/lib/configutil/libsql"
)

const DefaultBaseURL = "https://www.wholefoodsmarket.com"

var DefaultCategories = []string{
	"produce",
	"dairy-eggs",
	"meat",
	"pantry-essentials",
	"breads-rolls-bakery",
	"desserts",
	"supplements",
	"frozen-foods",
	"snacks-chips-salsas-dips",
	"seafood",
	"beverages",
}

type HTTPConfig struct {
	MaxConcurrent int `json:"max_concurrent"`
	MaxPerHost    int `json:"max_per_host"`
	// seconds between two requests to the same host
	DownloadDelay  float64 `json:"download_delay"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	Retries        int     `json:"retries"`
	Cloudflare     bool    `json:"cloudflare"`
}

func (c HTTPConfig) Delay() time.Duration {
	return time.Duration(c.DownloadDelay * float64(time.Second))
}

func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ScrapeOpsConfig struct {
	APIKey          string `json:"api_key"`
	ProxyEnabled    bool   `json:"proxy_enabled"`
	ProxyEndpoint   string `json:"proxy_endpoint"`
	HeadersEnabled  bool   `json:"headers_enabled"`
	HeadersEndpoint string `json:"headers_endpoint"`
	NumHeaders      int    `json:"num_headers"`
}

type Config struct {
	BaseURL    string   `json:"base_url"`
	StoreIDs   []string `json:"store_ids"`
	Categories []string `json:"categories"`
	Limit      int      `json:"limit"`
	Country    string   `json:"country"`

	// directory the feeds and the stats artifact are written to
	OutputDir string `json:"output_dir"`
	// directory debug artifacts (bodies that failed to parse, http dumps) are written to
	DebugDir string `json:"debug_dir"`

	HTTP      HTTPConfig          `json:"http"`
	ScrapeOps ScrapeOpsConfig     `json:"scrapeops"`
	Database  configlibsql.Struct `json:"database"`
}

// ReadConfig reads `path` and its .local override without applying defaults,
// a missing config file is not an error.
func ReadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.StoreIDs = uniqueIDs(c.StoreIDs)
	if len(c.StoreIDs) == 0 {
		c.StoreIDs = []string{"10509"}
	}
	if len(c.Categories) == 0 {
		c.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.Limit <= 0 {
		c.Limit = 60
	}
	if c.Country == "" {
		c.Country = "us"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.DebugDir == "" {
		c.DebugDir = filepath.Join(c.OutputDir, "debug")
	}

	if c.HTTP.MaxConcurrent <= 0 {
		c.HTTP.MaxConcurrent = 25
	}
	if c.HTTP.MaxPerHost <= 0 {
		c.HTTP.MaxPerHost = 25
	}
	if c.HTTP.DownloadDelay < 0 {
		c.HTTP.DownloadDelay = 0
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = 30
	}

	if c.ScrapeOps.APIKey == "" {
		c.ScrapeOps.APIKey = os.Getenv("SCRAPEOPS_API_KEY")
	}
	if c.ScrapeOps.APIKey == "" {
		c.ScrapeOps.APIKey = os.Getenv("SCRAPEOPS_API_KEY_PREMIUM_TIER")
	}
	if c.ScrapeOps.NumHeaders <= 0 {
		c.ScrapeOps.NumHeaders = 30
	}
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
