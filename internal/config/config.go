package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// StoreConfig identifies one Shopify store and its Admin API credential.
type StoreConfig struct {
	ShopDomain  string
	AccessToken string
}

type Config struct {
	Source      StoreConfig // SOURCE_SHOP_DOMAIN / SOURCE_ACCESS_TOKEN
	Target      StoreConfig // TARGET_SHOP_DOMAIN / TARGET_ACCESS_TOKEN
	APIVersion  string      // SHOPIFY_API_VERSION
	LogLevel    string      // LOG_LEVEL
	PageSize    int         // SYNC_PAGE_SIZE, files per listing request
	SummaryFile string      // SUMMARY_FILE, key=value lines for CI (GITHUB_OUTPUT)
}

// LoadDefaults populates c with sensible defaults. Credentials have no
// default on purpose.
func (c *Config) LoadDefaults() {
	c.APIVersion = "2026-01"
	c.LogLevel = "info"
	c.PageSize = 50
}

// Load builds a Config from environment variables, optionally overlaid from
// the env file at envFile (empty means look for ./.env, which may be absent).
// Credential validation happens separately via RequireSource/RequireTarget,
// since each command needs a different pair of stores.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	if envFile != "" {
		v.SetConfigFile(envFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	} else {
		v.SetConfigName(".env")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading .env: %w", err)
			}
		}
	}
	v.AutomaticEnv()

	cfg := &Config{}
	cfg.LoadDefaults()

	cfg.Source = StoreConfig{
		ShopDomain:  normalizeDomain(v.GetString("SOURCE_SHOP_DOMAIN")),
		AccessToken: strings.TrimSpace(v.GetString("SOURCE_ACCESS_TOKEN")),
	}
	cfg.Target = StoreConfig{
		ShopDomain:  normalizeDomain(v.GetString("TARGET_SHOP_DOMAIN")),
		AccessToken: strings.TrimSpace(v.GetString("TARGET_ACCESS_TOKEN")),
	}
	if s := v.GetString("SHOPIFY_API_VERSION"); s != "" {
		cfg.APIVersion = s
	}
	if s := v.GetString("LOG_LEVEL"); s != "" {
		cfg.LogLevel = s
	}
	if n := v.GetInt("SYNC_PAGE_SIZE"); n > 0 {
		cfg.PageSize = n
	}
	cfg.SummaryFile = v.GetString("SUMMARY_FILE")
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = v.GetString("GITHUB_OUTPUT")
	}

	return cfg, nil
}

// RequireSource fails unless the source store is fully configured with
// non-placeholder values. Called before any network I/O.
func (c *Config) RequireSource() error {
	return requireStore("SOURCE", c.Source)
}

// RequireTarget fails unless the target store is fully configured with
// non-placeholder values. Called before any network I/O.
func (c *Config) RequireTarget() error {
	return requireStore("TARGET", c.Target)
}

func requireStore(role string, s StoreConfig) error {
	if s.ShopDomain == "" || IsPlaceholder(s.ShopDomain) {
		return fmt.Errorf("%w: set %s_SHOP_DOMAIN to the store's myshopify.com domain", ErrMissingCredential, role)
	}
	if s.AccessToken == "" || IsPlaceholder(s.AccessToken) {
		return fmt.Errorf("%w: set %s_ACCESS_TOKEN to an Admin API access token", ErrMissingCredential, role)
	}
	return nil
}

// IsPlaceholder reports whether v looks like a template value that was never
// filled in (the checked-in env samples use your-store / shpat_xxxx shapes).
func IsPlaceholder(v string) bool {
	lower := strings.ToLower(v)
	for _, marker := range []string{"your-", "your_", "changeme", "change-me", "xxxx", "<", ">"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}
