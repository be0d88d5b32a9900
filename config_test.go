package tutorials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "Tutorials", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data/tutorials.db", cfg.DatabasePath)
	assert.Equal(t, "content/tutorials", cfg.ContentDir)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.ListingLimit)
	assert.Equal(t, "joined", cfg.SearchTagMode)
	assert.Equal(t, 120, cfg.SearchRateLimit)
	assert.False(t, cfg.DarkMode)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
name = "Widget School"
url = "https://example.com/"
author = "Ada"
database = "/var/lib/tutorials.db"
cache_ttl = "30s"

[search]
limit = 10
tag_mode = "each"

[theme]
dark = true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Widget School", cfg.Name)
	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, "Ada", cfg.Author)
	assert.Equal(t, "/var/lib/tutorials.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.ListingLimit)
	assert.Equal(t, "each", cfg.SearchTagMode)
	assert.True(t, cfg.DarkMode)
	assert.Equal(t, ":3000", cfg.Addr)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("name = "), 0o644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	ttl := filepath.Join(dir, "ttl.toml")
	require.NoError(t, os.WriteFile(ttl, []byte(`cache_ttl = "soon"`), 0o644))
	_, err = LoadConfig(ttl)
	assert.ErrorContains(t, err, "cache_ttl")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("SITE_URL", "https://env.example.com/")
	t.Setenv("DARK_MODE", "TRUE")
	t.Setenv("LISTING_LIMIT", "5")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.ApplyEnv()

	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, "https://env.example.com", cfg.URL)
	assert.True(t, cfg.DarkMode)
	assert.Equal(t, 5, cfg.ListingLimit)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL, "invalid durations are ignored")
}
