package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Chain   ChainConfig
	Mint    MintConfig
	App     AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// BackendConfig points at the external artist/project REST API.
type BackendConfig struct {
	BaseURL           string
	Timeout           time.Duration
	AvailabilityRPS   float64
	AvailabilityBurst int
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

// ChainConfig describes the chain side: which network minting must happen on
// and how to reach every network a wallet may be switched to. The keystore
// is only used by mintctl; web visitors sign in their own browser wallet.
type ChainConfig struct {
	TargetChainID   uint64
	TargetChainName string
	RPCURLs         map[uint64]string
	KeystorePath    string
	Passphrase      string
}

type MintConfig struct {
	ConfirmTimeout time.Duration
	// WalletReplyTimeout bounds the wait for a browser wallet to answer.
	WalletReplyTimeout time.Duration
	ViewIdleTTL        time.Duration
	JanitorSpec        string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	rpcs, err := parseRPCURLs(getEnv("CHAIN_RPC_URLS", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Backend: BackendConfig{
			BaseURL:           strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
			Timeout:           getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),
			AvailabilityRPS:   getEnvAsFloat("AVAILABILITY_RPS", 5),
			AvailabilityBurst: getEnvAsInt("AVAILABILITY_BURST", 10),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		},
		Chain: ChainConfig{
			TargetChainID:   uint64(getEnvAsInt("TARGET_CHAIN_ID", 1)),
			TargetChainName: getEnv("TARGET_CHAIN_NAME", "Ethereum Mainnet"),
			RPCURLs:         rpcs,
			KeystorePath:    getEnv("WALLET_KEYSTORE", ""),
			Passphrase:      getEnv("WALLET_PASSPHRASE", ""),
		},
		Mint: MintConfig{
			ConfirmTimeout:     getEnvAsDuration("MINT_CONFIRM_TIMEOUT", 5*time.Minute),
			WalletReplyTimeout: getEnvAsDuration("MINT_WALLET_REPLY_TIMEOUT", 2*time.Minute),
			ViewIdleTTL:        getEnvAsDuration("VIEW_IDLE_TTL", 30*time.Minute),
			JanitorSpec:        getEnv("VIEW_JANITOR_SPEC", "@every 1m"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}

	if c.Chain.TargetChainID == 0 {
		return fmt.Errorf("TARGET_CHAIN_ID must be non-zero")
	}

	if _, ok := c.Chain.RPCURLs[c.Chain.TargetChainID]; len(c.Chain.RPCURLs) > 0 && !ok {
		return fmt.Errorf("CHAIN_RPC_URLS has no endpoint for target chain %d", c.Chain.TargetChainID)
	}

	if c.Mint.ConfirmTimeout <= 0 {
		return fmt.Errorf("MINT_CONFIRM_TIMEOUT must be positive")
	}

	return nil
}

// parseRPCURLs reads "1=https://a,137=https://b".
func parseRPCURLs(raw string) (map[uint64]string, error) {
	out := make(map[uint64]string)
	for _, item := range splitList(raw) {
		id, url, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("CHAIN_RPC_URLS: malformed entry %q", item)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CHAIN_RPC_URLS: bad chain id %q: %w", id, err)
		}
		out[n] = strings.TrimSpace(url)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
