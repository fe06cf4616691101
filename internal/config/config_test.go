package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "2026-01", c.APIVersion)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 50, c.PageSize)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("SOURCE_SHOP_DOMAIN", "https://prod-store.myshopify.com/")
	t.Setenv("SOURCE_ACCESS_TOKEN", "shpat_prod")
	t.Setenv("TARGET_SHOP_DOMAIN", "stage-store.myshopify.com")
	t.Setenv("TARGET_ACCESS_TOKEN", "shpat_stage")
	t.Setenv("SYNC_PAGE_SIZE", "25")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "prod-store.myshopify.com", cfg.Source.ShopDomain, "scheme and trailing slash are stripped")
	assert.Equal(t, "shpat_prod", cfg.Source.AccessToken)
	assert.Equal(t, "stage-store.myshopify.com", cfg.Target.ShopDomain)
	assert.Equal(t, 25, cfg.PageSize)

	require.NoError(t, cfg.RequireSource())
	require.NoError(t, cfg.RequireTarget())
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "SOURCE_SHOP_DOMAIN=file-store.myshopify.com\nSOURCE_ACCESS_TOKEN=shpat_file\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "file-store.myshopify.com", cfg.Source.ShopDomain)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingEnvFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestRequire_MissingCredential(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := cfg.RequireSource()
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "SOURCE_SHOP_DOMAIN")

	cfg.Source = StoreConfig{ShopDomain: "store.myshopify.com"}
	err = cfg.RequireSource()
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "SOURCE_ACCESS_TOKEN")
}

func TestRequire_PlaceholderCredential(t *testing.T) {
	cfg := &Config{
		Target: StoreConfig{ShopDomain: "your-store.myshopify.com", AccessToken: "shpat_real"},
	}
	require.ErrorIs(t, cfg.RequireTarget(), ErrMissingCredential)

	cfg.Target = StoreConfig{ShopDomain: "store.myshopify.com", AccessToken: "shpat_xxxxxxxx"}
	require.ErrorIs(t, cfg.RequireTarget(), ErrMissingCredential)
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"your-store.myshopify.com", true},
		{"YOUR_TOKEN_HERE", true},
		{"<access token>", true},
		{"changeme", true},
		{"shpat_xxxxxxxxxxxx", true},
		{"shpat_9f2d4c3a5e6b", false},
		{"prod-store.myshopify.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlaceholder(tt.value), tt.value)
	}
}
