package wholefoods

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SCRAPEOPS_API_KEY", "")
	t.Setenv("SCRAPEOPS_API_KEY_PREMIUM_TIER", "premium")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "foodscraper.json5"))
	require.NoError(t, err)

	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, []string{"10509"}, cfg.StoreIDs)
	require.Equal(t, DefaultCategories, cfg.Categories)
	require.Equal(t, 60, cfg.Limit)
	require.Equal(t, "us", cfg.Country)
	require.Equal(t, 25, cfg.HTTP.MaxConcurrent)
	require.Equal(t, 25, cfg.HTTP.MaxPerHost)
	require.Equal(t, 30*time.Second, cfg.HTTP.Timeout())
	require.Equal(t, "premium", cfg.ScrapeOps.APIKey)
	require.Equal(t, 30, cfg.ScrapeOps.NumHeaders)
	require.Equal(t, filepath.Join(".", "debug"), cfg.DebugDir)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("TEST_SCRAPEOPS_KEY", "from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "foodscraper.json5")

	err := os.WriteFile(path, []byte(`{
		// trailing slashes are trimmed
		base_url: "https://example.com/",
		store_ids: ["1", "2"],
		categories: ["produce"],
		limit: 30,
		http: { download_delay: 1.1 },
		scrapeops: { api_key: "$TEST_SCRAPEOPS_KEY", proxy_enabled: true },
	}`), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "foodscraper.local.json5"), []byte(`{ limit: 10 }`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.BaseURL)
	require.Equal(t, []string{"1", "2"}, cfg.StoreIDs)
	require.Equal(t, []string{"produce"}, cfg.Categories)
	require.Equal(t, 10, cfg.Limit)
	require.Equal(t, 1100*time.Millisecond, cfg.HTTP.Delay())
	require.Equal(t, "from-env", cfg.ScrapeOps.APIKey)
	require.True(t, cfg.ScrapeOps.ProxyEnabled)
}

func TestApplyDefaultsDedupesStoreIDs(t *testing.T) {
	cfg := Config{StoreIDs: []string{"10509", " 10002", "10509", "", "10002", "10003"}}
	cfg.ApplyDefaults()
	require.Equal(t, []string{"10509", "10002", "10003"}, cfg.StoreIDs)

	cfg = Config{StoreIDs: []string{"", " "}}
	cfg.ApplyDefaults()
	require.Equal(t, []string{"10509"}, cfg.StoreIDs)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodscraper.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{ limit: `), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
