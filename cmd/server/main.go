package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wordduel/wordduel/internal/factory"
	"github.com/wordduel/wordduel/internal/ws"
)

type serverOptions struct {
	bind         string
	port         int
	storage      string
	redisURL     string
	jwtSecret    string
	keywordsPath string
	logLevel     string
}

func newCmd(opts *serverOptions) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordduel-server",
		Short:         "Realtime session coordinator for two-player word duels",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.bind, "bind", "b", "", "address to bind to (env: WORDDUEL_BIND)")
	fs.IntVarP(&opts.port, "port", "p", 8080, "port to listen on (env: WORDDUEL_PORT)")
	fs.StringVar(&opts.storage, "storage", factory.StorageTypeMemory, "backend: memory or redis (env: WORDDUEL_STORAGE)")
	fs.StringVar(&opts.redisURL, "redis-url", "", "redis connection URL (env: WORDDUEL_REDIS_URL)")
	fs.StringVar(&opts.jwtSecret, "jwt-secret", "", "secret for verifying connection tokens (env: WORDDUEL_JWT_SECRET)")
	fs.StringVar(&opts.keywordsPath, "keywords", "data/keywords.txt", "keyword file for the memory backend (env: WORDDUEL_KEYWORDS)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error (env: WORDDUEL_LOG_LEVEL)")

	// Environment variables override defaults; explicit flags win
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func main() {
	opts := &serverOptions{}
	if err := newCmd(opts).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts *serverOptions) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", opts.logLevel)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if opts.jwtSecret == "" {
		return fmt.Errorf("--jwt-secret is required")
	}

	cfg := factory.Config{
		JWTSecret:   opts.jwtSecret,
		Logger:      logger,
		StorageType: opts.storage,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		if opts.redisURL == "" {
			return fmt.Errorf("--redis-url required with redis storage")
		}
		redisCfg := factory.DefaultRedisConfig()
		redisCfg.URL = opts.redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Load keywords when using the in-memory backend; the Redis backend
	// is seeded out of band
	if app.MemoryKeywords != nil {
		if err := app.MemoryKeywords.LoadFromFile(opts.keywordsPath); err != nil {
			logger.Warn("could not load keywords", slog.String("error", err.Error()))
		} else {
			logger.Info("keywords loaded",
				slog.String("path", opts.keywordsPath),
				slog.Int("count", app.MemoryKeywords.Count()))
		}
	}

	go app.Hub.Run()

	router := ws.NewRouter(ws.RouterConfig{
		Logger:      logger,
		Coordinator: app.Coordinator,
		Hub:         app.Hub,
		Verifier:    app.Verifier,
	})

	serverConfig := ws.DefaultServerConfig()
	serverConfig.Host = opts.bind
	serverConfig.Port = opts.port
	server := ws.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		// Shutdown stops the listener; closing the hub drops the
		// upgraded connections it does not cover
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
		app.Hub.Close()
	}

	logger.Info("server stopped")
	return nil
}
