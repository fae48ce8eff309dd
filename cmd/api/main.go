package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-agency/internal/audit"
	"github.com/noah-isme/backend-agency/internal/auth"
	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/config"
	"github.com/noah-isme/backend-agency/internal/customer"
	"github.com/noah-isme/backend-agency/internal/deposit"
	"github.com/noah-isme/backend-agency/internal/events"
	"github.com/noah-isme/backend-agency/internal/health"
	"github.com/noah-isme/backend-agency/internal/invoice"
	"github.com/noah-isme/backend-agency/internal/lock"
	"github.com/noah-isme/backend-agency/internal/notify"
	"github.com/noah-isme/backend-agency/internal/obs"
	"github.com/noah-isme/backend-agency/internal/queue"
	"github.com/noah-isme/backend-agency/internal/ratelimit"
	"github.com/noah-isme/backend-agency/internal/receipt"
	"github.com/noah-isme/backend-agency/internal/security"
	"github.com/noah-isme/backend-agency/internal/staff"
	"github.com/noah-isme/backend-agency/internal/ticket"
	"github.com/noah-isme/backend-agency/migrations"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "agency")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "agency-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "agency-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if cfg.MigrateOnStart {
		if err := migrations.Up(pool); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	})
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()

	staffRepo := staff.NewRepo(pool)
	sessionRepo := auth.NewSessionRepo(pool)
	customerRepo := customer.NewRepo(pool)
	depositRepo := deposit.NewRepo(pool)
	invoiceRepo := invoice.NewRepo(pool)
	receiptRepo := receipt.NewRepo(pool)
	auditRepo := audit.NewRepo(pool)
	eventRepo := events.NewRepo(pool)

	authService, err := auth.NewService(auth.Config{
		Staff:           staffRepo,
		Sessions:        sessionRepo,
		Secret:          cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Issuer:          cfg.JWTIssuer,
		Audience:        cfg.JWTAudience,
		ClockSkew:       cfg.ClockSkew,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	pinGuard := auth.PINGuard{
		Staff:         staffRepo,
		R:             redisClient,
		MaxAttempts:   cfg.PINMaxAttempts,
		LockoutWindow: cfg.PINLockoutWindow,
	}
	authMW := auth.Middleware{Service: authService, Guard: pinGuard}

	enqueuer := queue.Enqueuer{Client: taskClient, Log: logger}
	bus := &events.Bus{
		Store: eventRepo,
		Notifiers: []events.Notifier{
			notify.EmailNotifier{
				Mail:    queue.QueuedEmailSender{Q: enqueuer},
				Enabled: cfg.NotifyEmailEnabled,
				From:    cfg.NotifyEmailFrom,
			},
		},
	}
	locker := lock.Locker{R: redisClient}

	staffSvc := &staff.Service{Store: staffRepo}
	customerSvc := &customer.Service{Repo: customerRepo}
	depositSvc := &deposit.Service{
		Pool:      pool,
		Repo:      depositRepo,
		Customers: customerRepo,
		Locker:    locker,
		LockTTL:   cfg.DepositLockTTL,
		Bus:       bus,
		Log:       logger,
	}
	invoiceSvc := &invoice.Service{
		Pool:      pool,
		Repo:      invoiceRepo,
		Deposits:  depositRepo,
		Customers: customerRepo,
		Locker:    locker,
		LockTTL:   cfg.DepositLockTTL,
		Bus:       bus,
		Log:       logger,
	}
	ticketSvc := &ticket.Service{
		Pool:      pool,
		Invoices:  invoiceRepo,
		Deposits:  depositRepo,
		Customers: customerRepo,
		Locker:    locker,
		LockTTL:   cfg.DepositLockTTL,
		Bus:       bus,
		Enqueue:   enqueuer,
		Currency:  cfg.CurrencyCode,
		Log:       logger,
	}
	receiptSvc := &receipt.Service{
		Pool:      pool,
		Repo:      receiptRepo,
		Invoices:  invoiceRepo,
		Deposits:  depositRepo,
		Customers: customerRepo,
		Locker:    locker,
		LockTTL:   cfg.DepositLockTTL,
		Bus:       bus,
		Log:       logger,
	}
	auditSvc := audit.Service{
		Store:        auditRepo,
		Enabled:      cfg.AuditEnabled,
		SamplingRate: cfg.AuditSamplingRate,
	}
	auditRec := audit.HTTPRecorder{
		Service: &auditSvc,
		OnError: func(err error) {
			logger.Error().Err(err).Msg("record audit entry")
		},
	}

	pages := common.PageLimits{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize}
	staffHandler := &staff.Handlers{Svc: staffSvc, Validate: validate, Pages: pages}
	authHandler := &auth.Handlers{Svc: authService, Validate: validate}
	customerHandler := &customer.Handlers{Svc: customerSvc, Validate: validate, Pages: pages}
	depositHandler := &deposit.Handlers{Svc: depositSvc, Validate: validate, Pages: pages}
	invoiceHandler := &invoice.Handlers{Svc: invoiceSvc, Validate: validate, Pages: pages}
	ticketHandler := &ticket.Handlers{Svc: ticketSvc, Validate: validate}
	receiptHandler := &receipt.Handlers{Svc: receiptSvc, Validate: validate, Pages: pages}
	auditHandler := &audit.Handlers{Svc: &auditSvc, Pages: common.PageLimits{Default: 50, Max: 200}}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	loginLimiter, err := ratelimit.New(redisClient, cfg.LoginRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise login rate limiter")
	}
	loginLimit := ratelimit.Handler{
		Limiter: loginLimiter,
		Key:     ratelimit.ByClientIP,
		OnError: func(err error) {
			logger.Error().Err(err).Msg("rate limit check")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	secHeaders := security.Headers{
		Enable:     true,
		EnableHSTS: cfg.AppEnv == "production",
	}
	bodyLimit := security.BodyLimit{Max: cfg.MaxBodyBytes}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	// Soft authentication runs ahead of the request logger so staff identity
	// shows up in request logs; RequireAuth still gates the protected groups.
	r.Use(authMW.Authenticate)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.PINHeader, "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(secHeaders.Middleware)
	r.Use(bodyLimit.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Route("/auth", func(a chi.Router) {
			a.With(loginLimit.Middleware).Post("/login", authHandler.Login)
			a.Post("/refresh", authHandler.Refresh)
			a.Post("/logout", authHandler.Logout)

			a.Group(func(protected chi.Router) {
				protected.Use(authMW.RequireAuth)
				protected.Get("/me", authHandler.Me)
				protected.Post("/logout-all", authHandler.LogoutAll)
			})
		})

		v.Group(func(authR chi.Router) {
			authR.Use(authMW.RequireAuth)

			authR.With(idem.Middleware, auditRec.Middleware(audit.HTTPConfig{ResourceType: "tickets"})).
				Post("/tickets", ticketHandler.Issue)
			authR.Post("/tickets/quote", ticketHandler.Quote)

			authR.With(idem.Middleware, auditRec.Middleware(audit.HTTPConfig{ResourceType: "receipts"})).
				Post("/receipts", receiptHandler.Record)
			authR.Get("/receipts/{id}", receiptHandler.Get)

			authR.Route("/customers", func(c chi.Router) {
				c.Get("/", customerHandler.List)
				c.Post("/", customerHandler.Create)
				c.Route("/{id}", func(one chi.Router) {
					one.Get("/", customerHandler.Get)
					one.Patch("/", customerHandler.Update)
					one.Get("/deposit", depositHandler.Statement)
					one.Get("/receipts", receiptHandler.ListByCustomer)
					one.With(authMW.RequirePIN, auditRec.Middleware(audit.HTTPConfig{ResourceType: "deposits", ResourceIDParam: "id"})).
						Post("/deposit/adjust", depositHandler.Adjust)
				})
			})

			authR.Route("/invoices", func(i chi.Router) {
				i.Get("/", invoiceHandler.List)
				i.Get("/{id}", invoiceHandler.Get)
				i.With(authMW.RequirePIN, auditRec.Middleware(audit.HTTPConfig{ResourceType: "invoices", ResourceIDParam: "id"})).
					Post("/{id}/void", invoiceHandler.Void)
			})

			authR.Route("/staff", func(s chi.Router) {
				s.Group(func(admin chi.Router) {
					admin.Use(authMW.RequireRole(staff.RoleAdmin))
					admin.Use(auditRec.Middleware(audit.HTTPConfig{ResourceType: "staff", ResourceIDParam: "id"}))
					admin.Post("/", staffHandler.Create)
					admin.Get("/", staffHandler.List)
					admin.Get("/{id}", staffHandler.Get)
					admin.Patch("/{id}", staffHandler.Update)
				})
				s.With(auditRec.Middleware(audit.HTTPConfig{ResourceType: "staff", ResourceIDParam: "id"})).
					Put("/{id}/pin", staffHandler.SetPIN)
				s.Put("/{id}/password", staffHandler.SetPassword)
			})

			authR.With(authMW.RequireRole(staff.RoleAdmin)).Get("/audit", auditHandler.List)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-shutdownCtx.Done():
		health.SetReady(false)
		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
