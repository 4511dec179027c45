package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blogem/corpdata-hub/config"
	"github.com/blogem/corpdata-hub/controllers"
	"github.com/blogem/corpdata-hub/database"
	"github.com/blogem/corpdata-hub/logging"
	"github.com/blogem/corpdata-hub/repositories"
	"github.com/blogem/corpdata-hub/server"
	"github.com/blogem/corpdata-hub/services"
)

// serverOptions holds the flags that override the environment
type serverOptions struct {
	envFile   string
	host      string
	port      int
	dbPath    string
	adminAddr string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &serverOptions{}

	cmd := &cobra.Command{
		Use:   "corpdata-hub",
		Short: "Audited corporate data hub with update notifications",
		Long: `Serve get, set, list and subscribe requests over TCP.

Each connection carries one JSON request and receives one JSON response.
Every data access is written to the audit log, and subscribers are
notified after each successful set.

Example:
  corpdata-hub --port 8080 --db ./corporate_data.db
  corpdata-hub --admin-addr 127.0.0.1:9090`,
		Version:       server.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "env file to load (default .env)")
	cmd.Flags().StringVar(&opts.host, "host", "", "interface to listen on (overrides HOST)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "TCP port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "path to SQLite database (overrides DB_PATH)")
	cmd.Flags().StringVar(&opts.adminAddr, "admin-addr", "", "address of the admin HTTP listener (overrides ADMIN_ADDR)")

	return cmd
}

// loadConfig reads the environment and applies the flags that were set
func loadConfig(cmd *cobra.Command, opts *serverOptions) (config.Config, error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Changed("admin-addr") {
		cfg.AdminAddr = opts.adminAddr
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, opts *serverOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(ctx, database.Options{Path: cfg.DBPath, AutoMigrate: cfg.AutoMigrate})
	if err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		return err
	}
	defer db.Close()
	logger.Infof("🗃️  Database: %s", cfg.DBPath)

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Initialize services
	srvs := services.NewServices(repos, logger)

	dispatcher := server.New(server.Config{
		Addr:            cfg.ListenAddr(),
		MaxRequestBytes: cfg.MaxRequestBytes,
		NotifyTimeout:   cfg.NotifyTimeout,
	}, srvs, logger.WithField("component", "dispatcher"))

	if cfg.AdminAddr != "" {
		admin := startAdmin(cfg.AdminAddr, repos, dispatcher, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			admin.Shutdown(shutdownCtx)
		}()
	}

	return dispatcher.ListenAndServe(ctx)
}

// startAdmin serves the operator endpoints in the background
func startAdmin(addr string, repos *repositories.Repositories, stats controllers.StatsSource, logger *logrus.Logger) *http.Server {
	ctrl := controllers.NewControllers(repos.Items, stats, logger.WithField("component", "admin"))
	srv := &http.Server{
		Addr:              addr,
		Handler:           controllers.NewRouter(ctrl, logger.WithField("component", "admin")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("📂 Admin endpoints on http://%s (/health, /stats)", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Admin listener failed")
		}
	}()
	return srv
}
