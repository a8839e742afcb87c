package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaultPortfolioEndpoints is the built-in ordered candidate list for
// the portfolio GraphQL provider, used when PORTFOLIO_ENDPOINTS is not set.
var defaultPortfolioEndpoints = []string{
	"https://public.zapper.xyz/graphql",
	"https://api.zapper.xyz/v2/graphql",
	"https://zapper-proxy.onrender.com/graphql",
}

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // in seconds
	IdleTimeout     int    `mapstructure:"idle_timeout"`     // in seconds
	RequestDeadline int    `mapstructure:"request_deadline"` // end-to-end, in seconds
}

// NFTProviderConfig holds NFT indexer provider configuration
type NFTProviderConfig struct {
	APIKey          string `mapstructure:"api_key"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
}

// SocialGraphConfig holds social-graph provider configuration
type SocialGraphConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	AuthHeader string `mapstructure:"auth_header"`
	AltHeader  string `mapstructure:"alt_header"`
}

// PortfolioConfig holds portfolio GraphQL provider configuration
type PortfolioConfig struct {
	APIKey     string   `mapstructure:"api_key"`
	AuthHeader string   `mapstructure:"auth_header"`
	Endpoints  []string `mapstructure:"endpoints"`
}

// MediaConfig holds media proxy configuration
type MediaConfig struct {
	IPFSGateways    []string      `mapstructure:"ipfs_gateways"`
	ArweaveGateways []string      `mapstructure:"arweave_gateways"`
	AttemptTimeout  time.Duration `mapstructure:"attempt_timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	ProfileTTL       time.Duration `mapstructure:"profile_ttl"`
	OwnerNFTsEnabled bool          `mapstructure:"owner_nfts_enabled"`
	OwnerNFTsTTL     time.Duration `mapstructure:"owner_nfts_ttl"`
}

// FanoutConfig bounds per-request outbound parallelism
type FanoutConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Pause       time.Duration `mapstructure:"pause"`
}

// RPCConfig holds JSON-RPC pass-through configuration
type RPCConfig struct {
	OptimismURL string `mapstructure:"optimism_url"`
}

// GatewayConfig holds configuration for the gateway binary
type GatewayConfig struct {
	BaseConfig      `mapstructure:",squash"`
	Server          ServerConfig      `mapstructure:"server"`
	NFTProvider     NFTProviderConfig `mapstructure:"nft_provider"`
	SocialGraph     SocialGraphConfig `mapstructure:"social_graph"`
	Portfolio       PortfolioConfig   `mapstructure:"portfolio"`
	Media           MediaConfig       `mapstructure:"media"`
	Cache           CacheConfig       `mapstructure:"cache"`
	Fanout          FanoutConfig      `mapstructure:"fanout"`
	RPC             RPCConfig         `mapstructure:"rpc"`
	FarcasterDomain string            `mapstructure:"farcaster_domain"`
	StrictConfig    bool              `mapstructure:"strict_config"`
	StrictChains    bool              `mapstructure:"strict_chains"`
}

// configureViper sets up a viper instance reading an optional config
// file plus environment variables (with .env support via godotenv).
func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	if envPath != "" {
		envFile := filepath.Join(envPath, ".env")
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("gateway")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Recognized environment keys.
	_ = v.BindEnv("nft_provider.api_key", "NFT_PROVIDER_KEY")
	_ = v.BindEnv("social_graph.api_key", "SOCIAL_GRAPH_KEY")
	_ = v.BindEnv("portfolio.api_key", "PORTFOLIO_GRAPHQL_KEY")
	_ = v.BindEnv("portfolio.endpoints", "PORTFOLIO_ENDPOINTS")
	_ = v.BindEnv("farcaster_domain", "FARCASTER_DOMAIN")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("debug", "GATEWAY_DEBUG")
	_ = v.BindEnv("sentry_dsn", "SENTRY_DSN")
	_ = v.BindEnv("strict_config", "STRICT_CONFIG")
	_ = v.BindEnv("strict_chains", "STRICT_CHAINS")
	_ = v.BindEnv("cache.owner_nfts_enabled", "OWNER_NFT_CACHE")
	_ = v.BindEnv("rpc.optimism_url", "OPTIMISM_RPC_URL")

	return v
}

// Load loads gateway configuration from file and environment.
func Load(configFile string, envPath string) (*GatewayConfig, error) {
	v := configureViper(configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.request_deadline", 30)
	v.SetDefault("nft_provider.default_page_size", 100)
	v.SetDefault("nft_provider.max_page_size", 100)
	v.SetDefault("social_graph.base_url", "https://api.neynar.com/v2/farcaster")
	v.SetDefault("social_graph.auth_header", "x-api-key")
	v.SetDefault("social_graph.alt_header", "api_key")
	v.SetDefault("portfolio.auth_header", "x-zapper-api-key")
	v.SetDefault("media.ipfs_gateways", []string{"https://cloudflare-ipfs.com", "https://ipfs.io"})
	v.SetDefault("media.arweave_gateways", []string{"https://arweave.net"})
	v.SetDefault("media.attempt_timeout", "8s")
	v.SetDefault("media.max_attempts", 3)
	v.SetDefault("media.max_body_bytes", 10*1024*1024)
	v.SetDefault("cache.profile_ttl", "15m")
	v.SetDefault("cache.owner_nfts_enabled", false)
	v.SetDefault("cache.owner_nfts_ttl", "5m")
	v.SetDefault("fanout.concurrency", 3)
	v.SetDefault("fanout.pause", "300ms")
	v.SetDefault("rpc.optimism_url", "https://mainnet.optimism.io")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else if configFile == "" && os.IsNotExist(err) {
			// No explicit file requested; environment is enough
		} else if configFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg GatewayConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// PORTFOLIO_ENDPOINTS arrives as a comma-separated string from env;
	// entries may still carry embedded commas or whitespace.
	cfg.Portfolio.Endpoints = splitAndTrim(strings.Join(cfg.Portfolio.Endpoints, ","))
	if len(cfg.Portfolio.Endpoints) == 0 {
		cfg.Portfolio.Endpoints = append([]string{}, defaultPortfolioEndpoints...)
	}

	return &cfg, nil
}

// MissingSecrets reports which required upstream secrets are absent.
// Routes backed by a missing secret answer config_error; in strict
// mode the binary refuses to start instead.
func (c *GatewayConfig) MissingSecrets() []string {
	var missing []string
	if c.NFTProvider.APIKey == "" {
		missing = append(missing, "NFT_PROVIDER_KEY")
	}
	if c.SocialGraph.APIKey == "" {
		missing = append(missing, "SOCIAL_GRAPH_KEY")
	}
	if c.Portfolio.APIKey == "" {
		missing = append(missing, "PORTFOLIO_GRAPHQL_KEY")
	}
	return missing
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
