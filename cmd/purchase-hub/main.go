package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/api"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/config"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/jobs"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/telemetry"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/workflow"
)

const usage = `Usage: purchase-hub [flags]

Flags:
  -c, -config <path>      YAML config file (flags given here override it)
  -d, -db <path>          SQLite database path (default: purchase-hub.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: stdout/stderr only)
  -h, -help               show this help and exit
`

// parseArgs builds the configuration from the optional config file and the
// command line. Flags that were set explicitly win over the file.
func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("purchase-hub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	def := config.Default()
	var flags config.Config
	var configPath string
	for _, name := range []string{"config", "c"} {
		fs.StringVar(&configPath, name, "", "")
	}
	for _, name := range []string{"db", "d"} {
		fs.StringVar(&flags.DB, name, def.DB, "")
	}
	for _, name := range []string{"addr", "a"} {
		fs.StringVar(&flags.Addr, name, def.Addr, "")
	}
	for _, name := range []string{"user", "u"} {
		fs.StringVar(&flags.AdminUser, name, def.AdminUser, "")
	}
	for _, name := range []string{"log", "l"} {
		fs.StringVar(&flags.Log, name, def.Log, "")
	}

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return config.Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg := def
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db", "d":
			cfg.DB = flags.DB
		case "addr", "a":
			cfg.Addr = flags.Addr
		case "user", "u":
			cfg.AdminUser = flags.AdminUser
		case "log", "l":
			cfg.Log = flags.Log
		}
	})

	return cfg, cfg.Validate()
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(cfg.DB); errors.Is(err, os.ErrNotExist) {
		password, err := initDatabase(ctx, cfg.DB, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(cfg.DB, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := openDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DB)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Error("flushing traces", "error", err)
		}
	}()

	scheduler, err := jobs.New(database, cfg.LowStockSchedule, cfg.TokenPurgeSchedule)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		scheduler.Stop(sctx)
	}()

	engine := workflow.New(workflow.NewSQLRepository(database))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(api.NewRouter(database, engine, jwtSecret)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}

	slog.Info("server stopped, closing database")
	return nil
}
