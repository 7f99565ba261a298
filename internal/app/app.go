package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/portal/internal/config"
	"github.com/MrSnakeDoc/portal/internal/editor"
	"github.com/MrSnakeDoc/portal/internal/httpserver"
	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/index"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/redis"
	"github.com/MrSnakeDoc/portal/internal/render"
	"github.com/MrSnakeDoc/portal/internal/scheduler"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
	redisstore "github.com/MrSnakeDoc/portal/internal/store/redis"
	"github.com/MrSnakeDoc/portal/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	watcher     *scheduler.StoreWatcher
	gc          *scheduler.SessionCollector
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store := filestore.New(cfg.StoreFile, loggerClient)

	// Load once at startup so a first run writes the default document and a
	// corrupt file shows up in the logs before the first visitor does.
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to open config store %s: %w", cfg.StoreFile, err)
	}
	loggerClient.Info("config store ready",
		logger.String("path", cfg.StoreFile),
		logger.String("revision", snap.Revision),
		logger.Int("departments", len(snap.Config.Departments)))

	a := &App{cfg: cfg, logger: loggerClient}

	var sessions deps.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		sessions = redisstore.NewSessionStore(client, cfg.SessionIdleTTL)
		loggerClient.Info("redis session backend initialized")
	default:
		mem := index.NewMemorySessions(index.WithLimit(cfg.MaxSessions))
		sessions = mem
		if cfg.SessionIdleTTL > 0 {
			a.gc = scheduler.NewSessionCollector(mem, loggerClient, cfg.GCInterval, cfg.SessionIdleTTL, time.Now)
		}
	}

	if cfg.WatchStore {
		w, err := scheduler.NewStoreWatcher(store, loggerClient)
		if err != nil {
			loggerClient.Warn("store watcher disabled", logger.Error(err))
		} else {
			a.watcher = w
		}
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		ConfigStore:  store,
		Sessions:     sessions,
		Editor:       editor.NewService(store, loggerClient),
		Brand: render.Brand{
			Title:    cfg.Title,
			Subtitle: cfg.Subtitle,
			Footer:   cfg.Footer,
			Version:  version.Version,
		},
		CookieSecure:    cfg.CookieSecure,
		LoginRateBurst:  cfg.LoginRateBurst,
		LoginRatePerMin: cfg.LoginRatePerMin,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	a.logger.Infof("🚀 Starting portal %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("store watcher failed to start", logger.Error(err))
			a.watcher = nil
		}
	}
	if a.gc != nil {
		a.gc.Start(ctx)
		a.logger.Info("idle session collector started",
			logger.Duration("interval", a.cfg.GCInterval),
			logger.Duration("idle_ttl", a.cfg.SessionIdleTTL))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()

	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.gc != nil {
		a.gc.Stop()
	}
	if a.redisClient != nil {
		if cerr := a.redisClient.Close(); cerr != nil {
			a.logger.Warnf("failed to close redis: %v", cerr)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("✅ portal stopped cleanly")
	return nil
}
