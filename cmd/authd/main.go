package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/telegive/authd"
	fiberadapter "github.com/telegive/authd/adapters/fiber"
	pgxadapter "github.com/telegive/authd/adapters/pgx"
	redisadapter "github.com/telegive/authd/adapters/redis"
	"github.com/telegive/authd/config"
	"github.com/telegive/authd/core"
	"github.com/telegive/authd/notify"
	"github.com/telegive/authd/pkg/cache"
	"github.com/telegive/authd/services"
	"github.com/telegive/authd/telegram"
)

func main() {
	// Missing .env is fine; containers inject real env.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool", zap.Error(err))
	}
	defer pool.Close()

	store := pgxadapter.New(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	svc, err := authd.New(authd.Config{
		MasterSecret: cfg.EncryptionKey,
		Storage:      store,
		Authority:    telegram.NewClient(cfg.TelegramAPIBase, cfg.HTTPTimeout, logger.Named("telegram")),
		Cache:        buildCache(cfg, logger),
		Notifier:     buildNotifier(cfg, logger),
		SessionTTL:   cfg.SessionTTL,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("wiring", zap.Error(err))
	}

	go sweepSessions(ctx, svc.Sessions, cfg.SweepInterval, logger)

	app := fiber.New()
	adapter := fiberadapter.New(app, svc, fiberadapter.Options{
		ServiceToken:  cfg.ServiceToken,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.Env != "dev",
		Health:        store,
	})
	adapter.RegisterRoutes()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = app.Shutdown()
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func buildCache(cfg *config.Config, logger *zap.Logger) core.Cache {
	switch cfg.Cache.Kind {
	case "redis":
		logger.Info("session cache: redis", zap.String("addr", cfg.Cache.RedisAddr))
		return redisadapter.New(cfg.Cache.RedisAddr, cfg.Cache.RedisDB, cfg.Cache.TTL)
	case "none":
		return nil
	default:
		return cache.NewMemory(cfg.Cache.TTL)
	}
}

func buildNotifier(cfg *config.Config, logger *zap.Logger) services.TokenNotifier {
	if cfg.BotServiceURL == "" {
		logger.Info("bot service notifications disabled")
		return nil
	}
	return notify.New(cfg.BotServiceURL, cfg.ServiceToken, cfg.HTTPTimeout, logger.Named("notify"))
}

// sweepSessions periodically removes expired session rows. The engine
// exposes the operation; the schedule lives here.
func sweepSessions(ctx context.Context, sessions *services.SessionManager, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.CleanupExpired(ctx); err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}
