package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Default protocol deployment. These are deployment-time choices: override
// via environment for a different program or recipient.
const (
	DefaultProgramAddress   = "4K6LtuL5hK9FGADBNgiw5cXyk3RPPz3LeLwq7M8xUzUS"
	DefaultRecipientAddress = "GsJYonU5Kz4MJBHZ5UFx9oyStBpXXswnZcFUorktj2yZ"
	DefaultSolanaRPCURL     = "https://api.devnet.solana.com"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Database configuration
	DatabaseURL string

	// NATS configuration
	NATSURL string

	// Solana configuration
	SolanaRPCURL     string
	SolanaNetwork    string // "devnet" or "mainnet"
	ProgramAddress   string
	RecipientAddress string

	// Submission configuration
	ConfirmTimeout time.Duration

	// Temporal configuration
	TemporalHost      string
	TemporalNamespace string
	TemporalTaskQueue string

	// Chain-to-database sync configuration
	SyncInterval time.Duration
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Database configuration
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required"))
	}

	// NATS configuration
	cfg.NATSURL = getEnvOrDefault("NATS_URL", "nats://localhost:4222")

	// Solana configuration
	cfg.SolanaRPCURL = getEnvOrDefault("SOLANA_RPC_URL", DefaultSolanaRPCURL)
	cfg.SolanaNetwork = getEnvOrDefault("SOLANA_NETWORK", "devnet")
	cfg.ProgramAddress = getEnvOrDefault("TIP_PROGRAM_ADDRESS", DefaultProgramAddress)
	cfg.RecipientAddress = getEnvOrDefault("TIP_RECIPIENT_ADDRESS", DefaultRecipientAddress)

	// Submission configuration
	confirmTimeout, err := parseDuration("CONFIRM_TIMEOUT", "90s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmTimeout = confirmTimeout
	}

	// Temporal configuration
	cfg.TemporalHost = getEnvOrDefault("TEMPORAL_HOST", "localhost:7233")
	cfg.TemporalNamespace = getEnvOrDefault("TEMPORAL_NAMESPACE", "default")
	cfg.TemporalTaskQueue = getEnvOrDefault("TEMPORAL_TASK_QUEUE", "tipjar-chain-sync")

	// Sync configuration
	syncInterval, err := parseDuration("SYNC_INTERVAL", "30s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.SyncInterval = syncInterval
	}

	if err := cfg.validateAddresses(); err != nil {
		errs = append(errs, err)
	}

	if cfg.SolanaNetwork != "devnet" && cfg.SolanaNetwork != "mainnet" {
		errs = append(errs, fmt.Errorf("SOLANA_NETWORK must be devnet or mainnet, got %q", cfg.SolanaNetwork))
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DatabaseURL is required"))
	}

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if err := c.validateAddresses(); err != nil {
		errs = append(errs, err)
	}

	if c.ConfirmTimeout < time.Second {
		errs = append(errs, fmt.Errorf("ConfirmTimeout must be at least 1 second"))
	}

	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Errorf("SyncInterval must be at least 1 second"))
	}

	if c.TemporalHost == "" {
		errs = append(errs, fmt.Errorf("TemporalHost is required"))
	}

	if c.TemporalTaskQueue == "" {
		errs = append(errs, fmt.Errorf("TemporalTaskQueue is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// ProgramID parses the configured tipping program address.
func (c *Config) ProgramID() (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(c.ProgramAddress)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program address %q: %w", c.ProgramAddress, err)
	}
	return pk, nil
}

// RecipientID parses the configured recipient address.
func (c *Config) RecipientID() (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(c.RecipientAddress)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid recipient address %q: %w", c.RecipientAddress, err)
	}
	return pk, nil
}

func (c *Config) validateAddresses() error {
	if _, err := solana.PublicKeyFromBase58(c.ProgramAddress); err != nil {
		return fmt.Errorf("TIP_PROGRAM_ADDRESS: invalid base58 public key %q", c.ProgramAddress)
	}
	if _, err := solana.PublicKeyFromBase58(c.RecipientAddress); err != nil {
		return fmt.Errorf("TIP_RECIPIENT_ADDRESS: invalid base58 public key %q", c.RecipientAddress)
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
