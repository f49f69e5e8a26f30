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

	"github.com/dmarquez/inventory-management/internal"
	"github.com/dmarquez/inventory-management/internal/auth"
	authPostgres "github.com/dmarquez/inventory-management/internal/auth/postgres"
	"github.com/dmarquez/inventory-management/internal/core/events"
	"github.com/dmarquez/inventory-management/internal/document"
	"github.com/dmarquez/inventory-management/internal/item"
	itemPostgres "github.com/dmarquez/inventory-management/internal/item/postgres"
	"github.com/dmarquez/inventory-management/internal/movement"
	movementPostgres "github.com/dmarquez/inventory-management/internal/movement/postgres"
	"github.com/dmarquez/inventory-management/internal/permission"
	permissionPostgres "github.com/dmarquez/inventory-management/internal/permission/postgres"
	"github.com/dmarquez/inventory-management/internal/report"
	reportPostgres "github.com/dmarquez/inventory-management/internal/report/postgres"
	"github.com/dmarquez/inventory-management/internal/transport/rest"
	"github.com/dmarquez/inventory-management/internal/user"
	userPostgres "github.com/dmarquez/inventory-management/internal/user/postgres"
	"github.com/dmarquez/inventory-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger

	AuthHandler       *auth.Handler
	ItemHandler       *item.Handler
	MovementHandler   *movement.Handler
	ReportHandler     *report.Handler
	UserHandler       *user.Handler
	PermissionHandler *permission.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config.Server.AllowedOrigins,
		deps.AuthHandler, deps.ItemHandler, deps.MovementHandler,
		deps.ReportHandler, deps.UserHandler, deps.PermissionHandler,
		deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)

	// ledger and catalog
	movementRepo := movementPostgres.NewMovementRepository(gormDB)
	movementService := movement.NewService(movementRepo, eventBus, lg)
	movementHandler := movement.NewHandler(movementService)

	itemRepo := itemPostgres.NewItemRepository(gormDB)
	itemService := item.NewService(itemRepo, movementService, lg)
	itemHandler := item.NewHandler(itemService)

	// permissions and users
	permissionRepo := permissionPostgres.NewPermissionRepository(gormDB)
	permissionService := permission.NewService(permissionRepo, lg)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService)
	permissionHandler := permission.NewHandler(permissionService, userService)

	// reporting
	reportRepo := reportPostgres.NewReportRepository(gormDB)
	reportService := report.NewService(itemService, movementService, reportRepo, lg)
	generator := document.NewGenerator()
	reportHandler := report.NewHandler(reportService, report.NewExcelWriter(), generator)

	// document pipeline, best effort when storage is not configured
	if config.Storage.Endpoint != "" {
		storage, err := document.NewStorage(config.Storage)
		if err != nil {
			lg.Warn("document storage unavailable, receipts disabled", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := storage.EnsureBucket(ctx); err != nil {
				lg.Warn("document bucket check failed", "error", err)
			}
			cancel()
			subscriber := document.NewSubscriber(generator, storage, movementService, itemService, lg)
			subscriber.Register(eventBus)
		}
	} else {
		lg.Warn("no storage endpoint configured, exit receipts disabled")
	}

	return &Dependencies{
		Config:            config,
		Logger:            lg,
		DB:                db,
		GormDB:            gormDB,
		Router:            chi.NewRouter(),
		EventBus:          eventBus,
		AuthHandler:       authHandler,
		ItemHandler:       itemHandler,
		MovementHandler:   movementHandler,
		ReportHandler:     reportHandler,
		UserHandler:       userHandler,
		PermissionHandler: permissionHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
