package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Chain    ChainConfig
	Watcher  WatcherConfig
	Payment  PaymentConfig
	Realtime RealtimeConfig
	Telegram TelegramConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// TokenConfig describes one token merchants can be paid in.
type TokenConfig struct {
	Symbol   string
	Address  string
	Decimals int32
	// Rate is the number of fiat units (ARS) per whole token.
	Rate string
}

// ChainConfig holds the node endpoint and contract addresses
type ChainConfig struct {
	RPCURL                string
	Network               string
	PaymentGatewayAddress string
	OracleAddress         string
	RPCTimeout            time.Duration
	WaitTimeout           time.Duration
	Tokens                []TokenConfig
}

// WatcherConfig holds chain watcher tuning
type WatcherConfig struct {
	Interval       time.Duration
	LookbackBlocks uint64
	MaxBlockRange  uint64
}

// PaymentConfig holds payment request lifetimes
type PaymentConfig struct {
	FiatCurrency string
	Expiry       time.Duration
	FailureGrace time.Duration
}

// RealtimeConfig holds notification fan-out settings
type RealtimeConfig struct {
	RedisFanout bool
	Channel     string
}

// TelegramConfig holds the optional merchant alert bot
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Enabled reports whether Telegram alerts are configured.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "midatopay"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Chain: ChainConfig{
			RPCURL:                getEnv("CHAIN_RPC_URL", "https://sepolia.base.org"),
			Network:               getEnv("CHAIN_NETWORK", "base-sepolia"),
			PaymentGatewayAddress: getEnv("PAYMENT_GATEWAY_ADDRESS", "0x0000000000000000000000000000000000000000"),
			OracleAddress:         getEnv("ORACLE_ADDRESS", ""),
			RPCTimeout:            getEnvAsDuration("RPC_TIMEOUT", 15*time.Second),
			WaitTimeout:           getEnvAsDuration("RPC_WAIT_TIMEOUT", 2*time.Minute),
			Tokens: []TokenConfig{
				loadToken("USDT", "0x323e78f944A9a1FcF3a10efcC5319DBb0bB6e673", 6, "1380"),
				loadToken("USDC", "0x036CbD53842c5426634e7929541eC2318f3dCF7e", 6, "1380"),
				loadToken("ETH", "0x4200000000000000000000000000000000000006", 18, "4500000"),
			},
		},
		Watcher: WatcherConfig{
			Interval:       getEnvAsDuration("WATCHER_INTERVAL", 10*time.Second),
			LookbackBlocks: uint64(getEnvAsInt("WATCHER_LOOKBACK_BLOCKS", 100)),
			MaxBlockRange:  uint64(getEnvAsInt("WATCHER_MAX_BLOCK_RANGE", 2000)),
		},
		Payment: PaymentConfig{
			FiatCurrency: getEnv("PAYMENT_FIAT_CURRENCY", "ARS"),
			Expiry:       getEnvAsDuration("PAYMENT_EXPIRY", 30*time.Minute),
			FailureGrace: getEnvAsDuration("PAYMENT_FAILURE_GRACE", 30*time.Minute),
		},
		Realtime: RealtimeConfig{
			RedisFanout: getEnvAsBool("REALTIME_REDIS_FANOUT", false),
			Channel:     getEnv("REALTIME_CHANNEL", "midatopay:payments"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   int64(getEnvAsInt("TELEGRAM_CHAT_ID", 0)),
		},
	}
}

// loadToken lets TOKEN_<SYM>_ADDRESS and RATE_<SYM> override the defaults.
func loadToken(symbol, address string, decimals int32, rate string) TokenConfig {
	return TokenConfig{
		Symbol:   symbol,
		Address:  getEnv("TOKEN_"+symbol+"_ADDRESS", address),
		Decimals: decimals,
		Rate:     getEnv("RATE_"+symbol, rate),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
