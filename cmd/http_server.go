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

	"github.com/frahmantamala/yardguard/internal"
	"github.com/frahmantamala/yardguard/internal/audit"
	auditPostgres "github.com/frahmantamala/yardguard/internal/audit/postgres"
	"github.com/frahmantamala/yardguard/internal/auth"
	authPostgres "github.com/frahmantamala/yardguard/internal/auth/postgres"
	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/frahmantamala/yardguard/internal/capability"
	capabilityPostgres "github.com/frahmantamala/yardguard/internal/capability/postgres"
	"github.com/frahmantamala/yardguard/internal/core/events"
	"github.com/frahmantamala/yardguard/internal/gatepass"
	gatepassPostgres "github.com/frahmantamala/yardguard/internal/gatepass/postgres"
	"github.com/frahmantamala/yardguard/internal/transport/rest"
	"github.com/frahmantamala/yardguard/internal/transport/swagger"
	"github.com/frahmantamala/yardguard/internal/user"
	userPostgres "github.com/frahmantamala/yardguard/internal/user/postgres"
	"github.com/frahmantamala/yardguard/pkg/logger"

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
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := swagger.ValidateSpec("./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi spec validation failed, swagger UI may be broken", "error", err)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	engine := authz.NewEngine()
	bus := events.NewEventBus(lg)

	// capability grants feed both the admin API and the login path
	capabilityRepo := capabilityPostgres.NewCapabilityRepository(deps.GormDB)
	capabilityService := capability.NewService(capabilityRepo, bus, lg)
	capabilityHandler := capability.NewHandler(capabilityService)

	authRepo := authPostgres.NewRepository(deps.GormDB)
	tokenGenerator := auth.NewJWTTokenGenerator(cfg.Security.AccessTokenSecret, cfg.Security.RefreshTokenSecret)
	authService := auth.NewService(authRepo, capabilityService, tokenGenerator, authRepo)
	contextBuilder := auth.ContextBuilder{TrustForwardedFor: cfg.Authz.TrustForwardedFor}
	authHandler := auth.NewHandler(authService, contextBuilder)

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	gatepassRepo := gatepassPostgres.NewGatePassRepository(deps.GormDB)
	gatepassService := gatepass.NewService(gatepassRepo, engine, bus, lg)
	gatepassHandler := gatepass.NewHandler(gatepassService)

	auditRepo := auditPostgres.NewAuditRepository(deps.GormDB)
	auditService := audit.NewService(auditRepo, lg)
	if cfg.Authz.AuditDecisions {
		auditService.RegisterHandlers(bus)
	}
	auditHandler := audit.NewHandler(auditService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, engine, authHandler, userHandler, gatepassHandler, capabilityHandler, auditHandler, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
