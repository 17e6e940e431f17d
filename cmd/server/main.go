package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/me/covweb/internal/client"
	"github.com/me/covweb/internal/config"
	"github.com/me/covweb/internal/logging"
	"github.com/me/covweb/internal/server"
	"github.com/me/covweb/internal/store"
	"github.com/me/covweb/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Flags are bound to a separate copy so that only flags given on the
	// command line override the config file and the environment.
	flags := config.DefaultServerConfig()
	flag.StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	flag.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format (text, json)")
	flag.StringVar(&flags.DBPath, "db", flags.DBPath, "Database path (default ~/.covweb/covweb.db)")
	flag.StringVar(&flags.VideoDir, "video-dir", flags.VideoDir, "Directory holding inspection videos")
	flag.StringVar(&flags.ThumbDir, "thumb-dir", flags.ThumbDir, "Directory holding video thumbnails")
	flag.StringVar(&flags.BackendURL, "backend", flags.BackendURL, "Backend URL used by the web UI (default: this server)")
	flag.StringVar(&flags.Fixtures, "fixtures", flags.Fixtures, "YAML fixtures to load at startup")
	flag.BoolVar(&flags.Secure, "secure", flags.Secure, "Use secure cookies (HTTPS)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	configFile := flag.String("config", "", "Path to YAML config file")
	noUI := flag.Bool("no-ui", false, "Serve only the JSON endpoints")

	flag.Parse()

	cfg := config.DefaultServerConfig()
	if *configFile != "" {
		if err := config.LoadFile(*configFile, &cfg); err != nil {
			return err
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flags.Addr
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "log-format":
			cfg.LogFormat = flags.LogFormat
		case "db":
			cfg.DBPath = flags.DBPath
		case "video-dir":
			cfg.VideoDir = flags.VideoDir
		case "thumb-dir":
			cfg.ThumbDir = flags.ThumbDir
		case "backend":
			cfg.BackendURL = flags.BackendURL
		case "fixtures":
			cfg.Fixtures = flags.Fixtures
		case "secure":
			cfg.Secure = flags.Secure
		}
	})
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir := filepath.Join(home, ".covweb")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
		dbPath = filepath.Join(dir, "covweb.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready", "path", dbPath)

	if cfg.Fixtures != "" {
		n, err := store.LoadFixturesFile(context.Background(), st, cfg.Fixtures)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		logger.Info("fixtures loaded", "path", cfg.Fixtures, "inspections", n)
	}

	var (
		serverOpts []server.Option
		web        *ui.UI
	)
	if !*noUI {
		// Media links are relative unless the UI lists another backend.
		mediaBase := ""
		if cfg.BackendURL != "" {
			mediaBase = cfg.ResolvedBackendURL()
		}
		backend := client.New(cfg.ResolvedBackendURL(), logger)
		web = ui.New(backend, logger, ui.Config{Secure: cfg.Secure, MediaBase: mediaBase})
		serverOpts = append(serverOpts, server.WithFrontend(web))
		logger.Info("web ui enabled", "backend", backend.BaseURL)
	}

	srv := server.New(cfg, st, logger, serverOpts...)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	if web != nil {
		g.Go(func() error {
			return web.Sessions().Run(gctx, time.Minute)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
