package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/order"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
	"github.com/MMMDolphin/ImunofanWebsite/internal/gateway/econt"
	"github.com/MMMDolphin/ImunofanWebsite/internal/gateway/openai"
	"github.com/MMMDolphin/ImunofanWebsite/internal/gateway/stripe"
	"github.com/MMMDolphin/ImunofanWebsite/internal/handler"
	"github.com/MMMDolphin/ImunofanWebsite/internal/storage/postgres"
	"github.com/MMMDolphin/ImunofanWebsite/pkg/health"
	"github.com/MMMDolphin/ImunofanWebsite/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	seoRepo := postgres.NewSeoRepository(pool)

	// Gateways.
	paymentGateway := stripe.New(stripe.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	carrier := econt.New(econt.Config{
		APIURL:   cfg.Econt.APIURL,
		Username: cfg.Econt.Username,
		Password: cfg.Econt.Password,
	})
	contentGenerator := openai.New(cfg.OpenAI.APIKey)

	// Domain services.
	orderService := order.NewService(productRepo, orderRepo, paymentGateway)
	authService := auth.NewService(adminRepo, sessionRepo, cfg.Session.TTL)
	seoService := seo.NewService(seoRepo, contentGenerator, cfg.Seo.DailyPageLimit)

	if err := seedAdmin(ctx, lg, authService, cfg); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	// Expired sessions accumulate without a sweeper; the interval is coarse
	// because sessions are also validated against expires_at on every request.
	go sweepSessions(ctx, authService, cfg.Session.SweepInterval)

	// HTTP handlers.
	h := handler.New(
		handler.Config{
			SenderName:    cfg.Sender.Name,
			SenderCity:    cfg.Sender.City,
			SenderAddress: cfg.Sender.Address,
			SenderPhone:   cfg.Sender.Phone,
		},
		productRepo,
		orderService,
		paymentGateway,
		authService,
		carrier,
		seoService,
	)

	router := mux.NewRouter()
	router.HandleFunc("/livez", healthSvc.LiveEndpoint)
	router.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Routes(router)

	instrumented := otelhttp.NewHandler(router, "imunofan-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Stripe-Signature"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

func sweepSessions(ctx context.Context, authService *auth.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.SweepExpired(ctx)
			if err != nil {
				zctx.From(ctx).Warn("Session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zctx.From(ctx).Info("Swept expired sessions", zap.Int64("count", n))
			}
		}
	}
}

func seedAdmin(ctx context.Context, lg *zap.Logger, authService *auth.Service, cfg *Config) error {
	created, err := authService.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return err
	}
	if created {
		lg.Info("Seeded admin account", zap.String("username", cfg.Admin.Username))
		if cfg.Admin.Password == "admin123" {
			lg.Warn("Admin account uses the default password, set IMUNOFAN_ADMIN_PASSWORD")
		}
	}
	return nil
}
