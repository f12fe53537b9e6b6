package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"midatopay.backend/internal/config"
	"midatopay.backend/internal/infrastructure/blockchain"
	"midatopay.backend/internal/infrastructure/datasources/postgres"
	"midatopay.backend/internal/infrastructure/jobs"
	"midatopay.backend/internal/infrastructure/metrics"
	"midatopay.backend/internal/infrastructure/notify"
	"midatopay.backend/internal/infrastructure/realtime"
	"midatopay.backend/internal/infrastructure/repositories"
	"midatopay.backend/internal/interfaces/http/handlers"
	"midatopay.backend/internal/interfaces/http/middleware"
	"midatopay.backend/internal/usecases"
	"midatopay.backend/pkg/jwt"
	"midatopay.backend/pkg/logger"
	"midatopay.backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

// chainClient is everything the server needs from the node
type chainClient interface {
	jobs.ChainReader
	usecases.ReceiptWaiter
	blockchain.ViewCaller
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	migrateDB  = postgres.Migrate
	dialChain  = func(factory *blockchain.ClientFactory, rpcURL string) (chainClient, error) {
		return factory.GetEVMClient(rpcURL)
	}
	newAlerter = func(token string, chatID int64) (usecases.MerchantAlerter, error) {
		return notify.NewTelegramAlerter(token, chatID)
	}
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrateDB(db); err != nil {
		return err
	}
	logger.Info(ctx, "Connected to PostgreSQL")

	rates, err := usecases.NewRateTable(cfg.Chain.Tokens)
	if err != nil {
		return fmt.Errorf("invalid token table: %w", err)
	}

	clientFactory := blockchain.NewClientFactory(cfg.Chain.RPCTimeout)
	defer clientFactory.Close()
	chain, err := dialChain(clientFactory, cfg.Chain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to chain node: %w", err)
	}

	var oracle usecases.PriceReader
	if cfg.Chain.OracleAddress != "" {
		priceOracle, err := blockchain.NewPriceOracle(chain, cfg.Chain.OracleAddress)
		if err != nil {
			return err
		}
		oracle = priceOracle
	}

	recorder := metrics.NewPrometheusRecorder()
	hub := realtime.NewHub(recorder)
	defer hub.Close()

	notifier := usecases.NewNotificationUsecase(hub)
	if cfg.Realtime.RedisFanout {
		notifier.WithRelay(redis.ChannelPublisher{}, cfg.Realtime.Channel)
		relay := realtime.NewRelay(cfg.Realtime.Channel, hub)
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error(ctx, "Realtime relay stopped", zap.Error(err))
			}
		}()
	}
	if cfg.Telegram.Enabled() {
		alerter, err := newAlerter(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn(ctx, "Telegram alerts disabled", zap.Error(err))
		} else {
			notifier.WithAlerter(alerter)
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	requestRepo := repositories.NewPaymentRequestRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	eventRepo := repositories.NewProcessedEventRepository(db)
	checkpointRepo := repositories.NewCheckpointRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	uow := repositories.NewUnitOfWork(db)

	schema := blockchain.MustPaymentEventV1()

	walletStore := usecases.NewWalletStore(walletRepo)
	authUsecase := usecases.NewAuthUsecase(walletStore, jwtService)
	paymentUsecase := usecases.NewPaymentUsecase(requestRepo, txRepo, uow, rates, usecases.PaymentSettings{
		Network:         cfg.Chain.Network,
		ContractAddress: cfg.Chain.PaymentGatewayAddress,
		FiatCurrency:    cfg.Payment.FiatCurrency,
		Expiry:          cfg.Payment.Expiry,
	})
	reconciler := usecases.NewReconcilerUsecase(
		requestRepo, txRepo, eventRepo, uow,
		chain, schema, notifier,
		cfg.Chain.PaymentGatewayAddress, cfg.Chain.WaitTimeout,
	)
	oracleUsecase := usecases.NewOracleUsecase(rates, oracle, blockchain.OraclePriceDecimals, cfg.Payment.FiatCurrency)

	watcher := jobs.NewChainWatcherJob(chain, reconciler, eventRepo, checkpointRepo, recorder, jobs.ChainWatcherConfig{
		GatewayAddress: cfg.Chain.PaymentGatewayAddress,
		Topic:          schema.Topic(),
		Interval:       cfg.Watcher.Interval,
		LookbackBlocks: cfg.Watcher.LookbackBlocks,
		MaxBlockRange:  cfg.Watcher.MaxBlockRange,
	})
	expiryJob := jobs.NewPaymentExpiryJob(txRepo, cfg.Payment.FailureGrace, recorder)
	go watcher.Start(ctx)
	go expiryJob.Start(ctx)
	defer watcher.Stop()
	defer expiryJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(recorder))
	applyCORSMiddleware(r)

	deps := routeDeps{
		authHandler:        handlers.NewAuthHandler(authUsecase),
		walletHandler:      handlers.NewWalletHandler(walletStore),
		paymentHandler:     handlers.NewPaymentHandler(paymentUsecase),
		transactionHandler: handlers.NewTransactionHandler(paymentUsecase, reconciler),
		oracleHandler:      handlers.NewOracleHandler(oracleUsecase),
		realtimeHandler:    handlers.NewRealtimeHandler(hub),
		healthHandler:      handlers.NewHealthHandler(healthChecks(db)),
		metricsHandler:     recorder.Handler(),
		authMiddleware:     middleware.AuthMiddleware(jwtService),
	}
	registerOperationalRoutes(r, deps)
	registerAPIV1Routes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- runServer(srv) }()
	logger.Info(ctx, "MidatoPay backend started",
		zap.String("port", cfg.Server.Port),
		zap.String("network", cfg.Chain.Network),
		zap.String("gateway", cfg.Chain.PaymentGatewayAddress),
		zap.Int("routes", len(r.Routes())),
	)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server")
	watcher.Stop()
	expiryJob.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func healthChecks(db *gorm.DB) map[string]handlers.Pinger {
	return map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return redis.GetClient().Ping(ctx).Err()
		},
	}
}
