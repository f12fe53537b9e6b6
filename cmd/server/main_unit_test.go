package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"midatopay.backend/internal/config"
	"midatopay.backend/internal/domain/entities"
	"midatopay.backend/internal/infrastructure/blockchain"
	"midatopay.backend/internal/usecases"
	plog "midatopay.backend/pkg/logger"
	"midatopay.backend/pkg/redis"
)

type stubChain struct{}

func (s *stubChain) BlockNumber(context.Context) (uint64, error) { return 0, nil }
func (s *stubChain) FilterLogs(context.Context, string, common.Hash, uint64, uint64) ([]entities.ChainEvent, error) {
	return nil, nil
}
func (s *stubChain) TransactionReceipt(context.Context, string) (*entities.ChainReceipt, error) {
	return nil, errors.New("not mined")
}
func (s *stubChain) WaitForReceipt(context.Context, string) (*entities.ChainReceipt, error) {
	return nil, errors.New("not mined")
}
func (s *stubChain) CallView(context.Context, string, []byte) ([]byte, error) {
	return nil, errors.New("no oracle")
}

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origMigrateDB := migrateDB
	origDialChain := dialChain
	origNewAlerter := newAlerter
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		migrateDB = origMigrateDB
		dialChain = origDialChain
		newAlerter = origNewAlerter
		runServer = origRunServer
	})

	loadDotenv = func(...string) error { return nil }
	initLog = plog.Init
}

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port: "18080",
			Env:  "development",
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "midatopay",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			URL: "redis://localhost:6379",
		},
		JWT: config.JWTConfig{
			Secret:        "secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		},
		Chain: config.ChainConfig{
			RPCURL:                "http://127.0.0.1:8545",
			Network:               "starknet-sepolia",
			PaymentGatewayAddress: "0x00000000000000000000000000000000000000aa",
			RPCTimeout:            time.Second,
			WaitTimeout:           time.Second,
			Tokens: []config.TokenConfig{
				{Symbol: "USDT", Address: "0x00000000000000000000000000000000000000bb", Decimals: 6, Rate: "1000"},
			},
		},
		Watcher: config.WatcherConfig{
			Interval:       time.Hour,
			LookbackBlocks: 10,
			MaxBlockRange:  100,
		},
		Payment: config.PaymentConfig{
			FiatCurrency: "ARS",
			Expiry:       15 * time.Minute,
			FailureGrace: time.Minute,
		},
		Realtime: config.RealtimeConfig{
			Channel: "payments:confirmed",
		},
	}
}

func sqliteOpener(name string) func(config.DatabaseConfig) (*gorm.DB, error) {
	return func(config.DatabaseConfig) (*gorm.DB, error) {
		dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}

func useMiniredis(t *testing.T, cfg *config.Config) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg.Redis.URL = "redis://" + mr.Addr()
	initRedis = redis.Init
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return errors.New("redis down") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return nil }
	openDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestRunMainProcess_MigrateError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return nil }
	openDB = sqliteOpener("main_migrate_err")
	migrateDB = func(*gorm.DB) error { return errors.New("migrate failed") }

	err := runMainProcess()
	assert.EqualError(t, err, "migrate failed")
}

func TestRunMainProcess_InvalidTokenTable(t *testing.T) {
	withMainHooks(t)
	cfg := baseTestConfig()
	cfg.Chain.Tokens = []config.TokenConfig{{Symbol: "USDT", Rate: "abc"}}
	loadCfg = func() *config.Config { return cfg }
	initRedis = func(string, string) error { return nil }
	openDB = sqliteOpener("main_tokens")

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token table")
}

func TestRunMainProcess_ChainDialError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return nil }
	openDB = sqliteOpener("main_dial")
	dialChain = func(*blockchain.ClientFactory, string) (chainClient, error) {
		return nil, errors.New("connection refused")
	}

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain node")
}

func TestRunMainProcess_InvalidOracleAddress(t *testing.T) {
	withMainHooks(t)
	cfg := baseTestConfig()
	cfg.Chain.OracleAddress = "not-an-address"
	loadCfg = func() *config.Config { return cfg }
	initRedis = func(string, string) error { return nil }
	openDB = sqliteOpener("main_oracle")
	dialChain = func(*blockchain.ClientFactory, string) (chainClient, error) { return &stubChain{}, nil }

	assert.Error(t, runMainProcess())
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	cfg := baseTestConfig()
	loadCfg = func() *config.Config { return cfg }
	useMiniredis(t, cfg)
	openDB = sqliteOpener("main_run_err")
	dialChain = func(*blockchain.ClientFactory, string) (chainClient, error) { return &stubChain{}, nil }
	runServer = func(*http.Server) error { return errors.New("bind failed") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start server")
}

func TestRunMainProcess_ServesAPI(t *testing.T) {
	withMainHooks(t)
	cfg := baseTestConfig()
	cfg.Realtime.RedisFanout = true
	cfg.Telegram = config.TelegramConfig{BotToken: "token", ChatID: 42}
	loadCfg = func() *config.Config { return cfg }
	useMiniredis(t, cfg)
	openDB = sqliteOpener("main_ok")
	dialChain = func(*blockchain.ClientFactory, string) (chainClient, error) { return &stubChain{}, nil }

	alerterBuilt := false
	newAlerter = func(token string, chatID int64) (usecases.MerchantAlerter, error) {
		alerterBuilt = token == "token" && chatID == 42
		return nil, errors.New("telegram unreachable")
	}

	served := false
	runServer = func(srv *http.Server) error {
		served = true
		assert.Equal(t, ":18080", srv.Addr)
		h := srv.Handler

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pay/not-a-payment", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "midatopay_events_total")

		return http.ErrServerClosed
	}

	require.NoError(t, runMainProcess())
	assert.True(t, served)
	assert.True(t, alerterBuilt)
}
