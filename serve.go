// path: serve.go
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/config"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/controllers"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/database"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/lifecycle"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/metrics"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/routes"
)

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx, cfg.Mongo, logger); err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Disconnect(dctx)
	}()

	h := newHandler(cfg, logger, database.Requests(), database.History(), database.Volunteers())
	app := newApp(cfg, h, logger, database.Ping)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("API listening", zap.String("addr", addr))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(sctx)
	})
	return g.Wait()
}

// newHandler wires the stores into the lifecycle service and controllers.
func newHandler(cfg config.Config, log *zap.Logger, requests *database.RequestStore,
	history *database.HistoryStore, volunteers *database.VolunteerStore) *controllers.Handler {

	roles := identity.Directory{Volunteers: volunteers}

	svc := lifecycle.NewService(requests, history, roles, log.Named("lifecycle"))
	svc.Tracker = volunteers
	svc.RoleTimeout = cfg.RoleTimeout
	svc.Retry = lifecycle.RetryPolicy{Attempts: cfg.StoreRetries, BaseDelay: cfg.StoreBackoff}

	return (&controllers.Handler{
		Requests:       requests,
		History:        history,
		Volunteers:     volunteers,
		Lifecycle:      svc,
		Roles:          roles,
		Log:            log.Named("http"),
		IdentityHeader: cfg.IdentityHeader,
		Timeout:        cfg.StoreTimeout,
	}).WithDefaults()
}

// newApp builds the Fiber app with middleware, health checks and API routes.
func newApp(cfg config.Config, h *controllers.Handler, log *zap.Logger, ping func(context.Context) error) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "reliefhub",
		ErrorHandler: controllers.ErrorHandler(log),
	})
	app.Use(recover.New())

	// Log concise request lines
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,PUT,PATCH,OPTIONS",
		AllowHeaders:     "*",
		AllowCredentials: false,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)
	app.Use(metrics.Middleware())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/readyz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).SendString("unavailable")
		}
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	routes.Register(app, h)
	return app
}
