package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iliyamo/campus-connect/internal/config"
	"github.com/iliyamo/campus-connect/internal/database"
	"github.com/iliyamo/campus-connect/internal/handler"
	"github.com/iliyamo/campus-connect/internal/logging"
	"github.com/iliyamo/campus-connect/internal/metrics"
	"github.com/iliyamo/campus-connect/internal/middleware"
	"github.com/iliyamo/campus-connect/internal/queue"
	"github.com/iliyamo/campus-connect/internal/repository"
	"github.com/iliyamo/campus-connect/internal/repository/memory"
	"github.com/iliyamo/campus-connect/internal/router"
	"github.com/iliyamo/campus-connect/internal/seed"
	"github.com/iliyamo/campus-connect/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mt := metrics.New(reg)

	rdb := config.NewRedisClient(config.RedisOptions())
	if rdb == nil {
		log.Warn("redis unavailable: listing cache off, rate limiting in process")
	} else {
		defer rdb.Close()
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(mt),
		service.WithIdentity(service.Identity{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
			AdminEmail:     cfg.AdminEmail,
		}),
	}
	if cfg.RabbitURL != "" {
		opts = append(opts, service.WithHandoff(queue.NewPublisher(cfg.RabbitURL, log)))
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.HandoffLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("handoff consumer stopped", "error", err)
			}
		}()
	} else {
		log.Warn("RABBITMQ_URL not set: contact hand-off disabled")
	}
	svc := service.NewMarketplace(store, opts...)

	if cfg.AdminPassword != "" {
		created, err := svc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("seeded admin account", "email", cfg.AdminEmail)
		}
	}
	if cfg.SeedDemoUsers > 0 {
		res, err := seed.Run(ctx, svc, seed.Options{
			Users:           cfg.SeedDemoUsers,
			ListingsPerUser: 3,
			RequestChance:   30,
			Seed:            1,
		})
		if err != nil {
			return err
		}
		log.Info("demo data ready", "users", res.Users, "skipped", res.Skipped, "listings", res.Listings, "requests", res.Requests)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestContext())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Metrics(mt))

	router.RegisterRoutes(e, router.Deps{
		Handler:   handler.New(svc, log),
		JWTSecret: cfg.JWTSecret,
		Metrics:   mt,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", ":"+cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, *sql.DB, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store: data is lost on restart")
		return memory.New(), nil, nil
	}
	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return repository.NewMySQLStore(db), db, nil
}
