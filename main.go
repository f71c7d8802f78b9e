package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kuyua/kuyua-api/config"
	"github.com/kuyua/kuyua-api/logging"
	"github.com/kuyua/kuyua-api/metrics"
	"github.com/kuyua/kuyua-api/routes"
	"github.com/kuyua/kuyua-api/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var source services.Source
	switch cfg.DataSource {
	case config.SourceRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
		}
		cancel()

		source = services.NewRedisSource(rdb, cfg.RedisKey)
	default:
		source = services.NewFileSource(cfg.DataFile)
	}

	store := services.NewStore(source, log, m)
	gen := services.NewGenerator(cfg.GeneratorCount, cfg.GeneratorSeed, log, m)

	task, err := services.EnsureData(ctx, source, gen)
	if err != nil {
		log.Error("could not check locations resource", zap.Error(err))
	}

	go func() {
		if task != nil {
			if err := task.Wait(ctx); err != nil {
				log.Error("location generation did not complete", zap.Error(err))
				return
			}
		}
		if _, err := store.Load(ctx); err != nil {
			log.Warn("store warm-up failed", zap.Error(err))
		}
	}()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	opts := routes.Options{
		DefaultPageSize: cfg.DefaultPageSize,
		CORSOrigins:     cfg.CORSOrigins,
		Log:             log,
		Metrics:         m,
	}
	routes.Use(app, opts)
	routes.RegisterRoutes(app, store, opts)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server listening", zap.String("addr", cfg.Addr()), zap.String("source", source.Name()))
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
