package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/estateledger-backend/internal/adapter/auth"
	"github.com/simaogato/estateledger-backend/internal/adapter/events"
	"github.com/simaogato/estateledger-backend/internal/adapter/funds"
	grpcadapter "github.com/simaogato/estateledger-backend/internal/adapter/grpc"
	"github.com/simaogato/estateledger-backend/internal/adapter/httpapi"
	"github.com/simaogato/estateledger-backend/internal/adapter/repository/memory"
	"github.com/simaogato/estateledger-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/estateledger-backend/internal/config"
	"github.com/simaogato/estateledger-backend/internal/domain"
	"github.com/simaogato/estateledger-backend/internal/logger"
	"github.com/simaogato/estateledger-backend/internal/observability"
	"github.com/simaogato/estateledger-backend/internal/usecase/burnwatch"
	"github.com/simaogato/estateledger-backend/internal/usecase/deed"
	"github.com/simaogato/estateledger-backend/internal/usecase/estatetoken"
	"github.com/simaogato/estateledger-backend/internal/usecase/seeder"
)

type repositories struct {
	agreements domain.AgreementRepository
	tokens     domain.TokenRepository
	settings   domain.SettingsRepository
	close      func()
}

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	// 1. Load configuration and logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	observability.RegisterMetrics()

	// 2. Initialize Repositories
	repos, err := openRepositories(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer repos.close()

	// 3. Funds transfer backend; its spender identity is the ledger address
	fundsTransferer, ledgerAddress, closeFunds, err := openFunds(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to open funds backend", zap.Error(err))
	}
	defer closeFunds()

	// 4. Event publishers
	publisher := events.Fanout{events.NewLogPublisher(zapLogger)}
	if cfg.Events.RabbitMQURL != "" {
		rabbit, err := events.DialRabbitPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer func() { _ = rabbit.Close() }()
		publisher = append(publisher, rabbit)
	}

	// 5. Seed settings on first start
	ctx := context.Background()
	deedSeeded, tokenSeeded, err := seeder.NewSettingsSeeder(repos.settings).Seed(ctx, seeder.Defaults{
		Deed: domain.DeedSettings{
			FundsAsset:    config.Address(cfg.Ledger.FundsAsset),
			PlatformFee:   cfg.PlatformFee(),
			PayoutAddress: config.Address(cfg.Ledger.PayoutAddress),
		},
		Token: domain.TokenSettings{
			VestingPool:   config.Address(cfg.Ledger.VestingPool),
			CrowdsalePool: config.Address(cfg.Ledger.CrowdsalePool),
		},
	})
	if err != nil {
		zapLogger.Fatal("Failed to seed ledger settings", zap.Error(err))
	}
	zapLogger.Info("Ledger settings ready", zap.Bool("deed_seeded", deedSeeded), zap.Bool("token_seeded", tokenSeeded))

	// 6. Initialize Services (Use Cases)
	operators := auth.NewOperatorSet(cfg.OperatorAddresses()...)
	deedService := deed.NewDeedService(repos.agreements, repos.settings, operators, fundsTransferer, publisher, ledgerAddress)
	tokenService := estatetoken.NewTokenService(repos.tokens, repos.settings, operators, publisher)

	watcher, err := burnwatch.NewWatcher(tokenService, publisher, zapLogger, cfg.Scheduler.BurnWatchInterval)
	if err != nil {
		zapLogger.Fatal("Failed to create burn window watcher", zap.Error(err))
	}
	if err := watcher.Start(); err != nil {
		zapLogger.Fatal("Failed to start burn window watcher", zap.Error(err))
	}

	// 7. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.AuthInterceptor(cfg.Server.APIToken),
			grpcadapter.CallerInterceptor(),
			grpcadapter.ObservabilityInterceptor(zapLogger),
		),
	)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(deedService, tokenService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		zapLogger.Fatal("Failed to listen", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}
	go func() {
		zapLogger.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			zapLogger.Fatal("Failed to serve gRPC server", zap.Error(err))
		}
	}()

	// 8. Start HTTP query server
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           httpapi.NewHandler(deedService, tokenService, zapLogger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to serve HTTP server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(zapLogger, grpcServer, httpServer, watcher)
}

func openRepositories(cfg *config.Config, zapLogger *zap.Logger) (*repositories, error) {
	if cfg.Storage.Driver == "postgres" {
		db, err := postgres.NewDB(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		applied, err := db.Migrate()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		zapLogger.Info("Database migrated", zap.Int("applied", applied))
		return &repositories{
			agreements: postgres.NewAgreementRepository(db),
			tokens:     postgres.NewTokenRepository(db),
			settings:   postgres.NewSettingsRepository(db),
			close:      func() { _ = db.Close() },
		}, nil
	}

	zapLogger.Warn("Using in-memory storage; ledger state is lost on restart")
	return &repositories{
		agreements: memory.NewAgreementRepository(),
		tokens:     memory.NewTokenRepository(),
		settings:   memory.NewSettingsRepository(),
		close:      func() {},
	}, nil
}

func openFunds(cfg *config.Config) (domain.FundsTransferer, common.Address, func(), error) {
	if cfg.Funds.Driver == "erc20" {
		transferer, err := funds.NewERC20Transferer(cfg.Funds.RPCURL, cfg.Funds.PrivateKey, cfg.Funds.ChainID, cfg.Funds.ReceiptTimeout)
		if err != nil {
			return nil, common.Address{}, nil, err
		}
		return transferer, transferer.Spender(), transferer.Close, nil
	}
	return funds.NewMemoryLedger(), config.Address(cfg.Ledger.LedgerAddress), func() {}, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(zapLogger *zap.Logger, grpcServer *grpclib.Server, httpServer *http.Server, watcher *burnwatch.Watcher) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	zapLogger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

	if err := watcher.Stop(); err != nil {
		zapLogger.Error("Failed to stop burn window watcher", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	grpcServer.GracefulStop()
	zapLogger.Info("Servers stopped")
}
