package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/yardguard/internal/audit"
	auditPostgres "github.com/frahmantamala/yardguard/internal/audit/postgres"
	"github.com/frahmantamala/yardguard/internal/capability"
	capabilityPostgres "github.com/frahmantamala/yardguard/internal/capability/postgres"
	"github.com/frahmantamala/yardguard/pkg/logger"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers for grant expiry and audit trail retention.`,
}

// Prune worker command
var pruneWorkerCmd = &cobra.Command{
	Use:   "prune",
	Short: "Start the retention worker",
	Long:  `Periodically removes expired capability grants and audit decisions past the retention window`,
	Run: func(cmd *cobra.Command, args []string) {
		startPruneWorker()
	},
}

var (
	pruneInterval  time.Duration
	grantRetention time.Duration
	auditRetention time.Duration
)

func startPruneWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	capabilityService := capability.NewService(capabilityPostgres.NewCapabilityRepository(gormDB), nil, lg)
	auditService := audit.NewService(auditPostgres.NewAuditRepository(gormDB), lg)

	lg.Info("starting prune worker",
		"interval", pruneInterval,
		"grant_retention", grantRetention,
		"audit_retention", auditRetention)

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	runPruneCycle(capabilityService, auditService, lg)

	for {
		select {
		case <-ticker.C:
			runPruneCycle(capabilityService, auditService, lg)
		case sig := <-sigChan:
			lg.Info("received signal, shutting down prune worker", "signal", sig)
			if err := db.Close(); err != nil {
				lg.Error("database close error", "error", err)
			}
			return
		}
	}
}

func runPruneCycle(capabilityService *capability.Service, auditService *audit.Service, lg *slog.Logger) {
	if _, err := capabilityService.PruneExpired(grantRetention); err != nil {
		lg.Error("grant prune cycle failed", "error", err)
	}
	if _, err := auditService.PruneBefore(auditRetention); err != nil {
		lg.Error("audit prune cycle failed", "error", err)
	}
}

func init() {
	pruneWorkerCmd.Flags().DurationVar(&pruneInterval, "interval", time.Hour, "How often to run a prune cycle")
	pruneWorkerCmd.Flags().DurationVar(&grantRetention, "grant-retention", 24*time.Hour, "How long expired grants are kept before deletion")
	pruneWorkerCmd.Flags().DurationVar(&auditRetention, "audit-retention", 90*24*time.Hour, "How long audit decisions are kept")

	workerCmd.AddCommand(pruneWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
