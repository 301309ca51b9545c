package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/audit"
	auditPostgres "github.com/Poorani-S/pettycash-backend/internal/audit/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	authPostgres "github.com/Poorani-S/pettycash-backend/internal/auth/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/category"
	categoryPostgres "github.com/Poorani-S/pettycash-backend/internal/category/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/client"
	clientPostgres "github.com/Poorani-S/pettycash-backend/internal/client/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
	"github.com/Poorani-S/pettycash-backend/internal/filestore"
	"github.com/Poorani-S/pettycash-backend/internal/fundtransfer"
	fundtransferPostgres "github.com/Poorani-S/pettycash-backend/internal/fundtransfer/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/ledger"
	ledgerPostgres "github.com/Poorani-S/pettycash-backend/internal/ledger/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/notification"
	"github.com/Poorani-S/pettycash-backend/internal/report"
	reportPostgres "github.com/Poorani-S/pettycash-backend/internal/report/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/transaction"
	transactionPostgres "github.com/Poorani-S/pettycash-backend/internal/transaction/postgres"
	"github.com/Poorani-S/pettycash-backend/internal/transport"
	"github.com/Poorani-S/pettycash-backend/internal/transport/rest"
	"github.com/Poorani-S/pettycash-backend/internal/user"
	userPostgres "github.com/Poorani-S/pettycash-backend/internal/user/postgres"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	GormDB   *gorm.DB
	PingDB   *sqlx.DB
	Router   *chi.Mux
	Mailer   *notification.Mailer
	Logger   *slog.Logger
	Handlers rest.Handlers
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.PingDB, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Mailer.Shutdown()
		if err := deps.PingDB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
		if sqlDB, err := deps.GormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env, config.Observability.Logging.Level)
	log := logger.L()

	gormDB, err := initGormDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pingDB, err := initPingDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ping database: %w", err)
	}

	bus := events.NewEventBus(log)
	policy := approval.NewPolicy(log)

	// Auth
	credentialRepo := authPostgres.NewUserRepository(gormDB)
	otpRepo := authPostgres.NewOTPRepository(gormDB)
	tokens := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(credentialRepo, otpRepo, tokens, bus, auth.Config{
		BCryptCost:          config.Security.BCryptCost,
		OTPCooldown:         config.Security.OTPCooldown,
		OTPExpiry:           config.Security.OTPExpiry,
		OTPMaxAttempts:      config.Security.OTPMaxAttempts,
		AccountLockDuration: config.Security.AccountLockDuration,
	}, log)
	authHandler := auth.NewHandler(authService)

	// Ledger
	balanceRepo := ledgerPostgres.NewBalanceRepository(gormDB)
	ledgerService := ledger.NewService(balanceRepo, log)
	ledgerHandler := ledger.NewHandler(ledgerService)

	// Transactions
	files := filestore.NewStore(config.Storage.UploadDir, config.Storage.MaxFileSize, log)
	transactionRepo := transactionPostgres.NewTransactionRepository(gormDB)
	transactionService := transaction.NewService(transactionRepo, policy, bus, transaction.DefaultResubmitPolicy(), log)
	transactionHandler := transaction.NewHandler(transactionService, files)

	// Fund transfers
	fundTransferRepo := fundtransferPostgres.NewFundTransferRepository(gormDB)
	fundTransferService := fundtransfer.NewService(fundTransferRepo, ledgerService, policy, bus, log)
	fundTransferHandler := fundtransfer.NewHandler(fundTransferService)

	// Categories
	categoryRepo := categoryPostgres.NewCategoryRepository(gormDB)
	categoryService := category.NewService(categoryRepo, policy, log)
	categoryHandler := category.NewHandler(transport.NewBaseHandler(log), categoryService)

	// Clients
	clientRepo := clientPostgres.NewClientRepository(gormDB)
	clientService := client.NewService(clientRepo, policy, log)
	clientHandler := client.NewHandler(transport.NewBaseHandler(log), clientService)

	// Users
	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, auth.BcryptHasher{Cost: config.Security.BCryptCost}, policy, bus, log)
	userHandler := user.NewHandler(userService)

	// Audit
	auditRepo := auditPostgres.NewAuditRepository(gormDB)
	audit.NewRecorder(auditRepo, log).Register(bus)
	auditService := audit.NewService(auditRepo, log)
	auditHandler := audit.NewHandler(auditService)

	// Reports
	reportRepo := reportPostgres.NewReportRepository(gormDB)
	reportService := report.NewService(reportRepo, log)
	reportHandler := report.NewHandler(reportService)

	// Notifications
	mailer := notification.NewMailer(notification.Config{
		MailAPIURL:      config.Notification.MailAPIURL,
		APIKey:          config.Notification.APIKey,
		FromAddress:     config.Notification.FromAddress,
		DispatchTimeout: config.Notification.DispatchTimeout,
		MaxWorkers:      config.Notification.MaxWorkers,
		JobQueueSize:    config.Notification.JobQueueSize,
	}, log)
	notification.NewNotifier(mailer, userRepo, log).Register(bus)

	return &Dependencies{
		Config: config,
		GormDB: gormDB,
		PingDB: pingDB,
		Router: chi.NewRouter(),
		Mailer: mailer,
		Logger: log,
		Handlers: rest.Handlers{
			Auth:         authHandler,
			Transaction:  transactionHandler,
			Ledger:       ledgerHandler,
			FundTransfer: fundTransferHandler,
			Category:     categoryHandler,
			Client:       clientHandler,
			User:         userHandler,
			Audit:        auditHandler,
			Report:       reportHandler,
		},
	}, nil
}

func initGormDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(cfg.Source), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// initPingDB opens a separate pgx connection for the health endpoints.
func initPingDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}
	dbConn.SetMaxOpenConns(2)
	dbConn.SetMaxIdleConns(1)
	return dbConn, nil
}
