package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nrattyp233/create-a-date/internal/config"
	aiinfra "github.com/nrattyp233/create-a-date/internal/infra/ai"
	"github.com/nrattyp233/create-a-date/internal/infra/httpclient"
	paypalinfra "github.com/nrattyp233/create-a-date/internal/infra/paypal"
	"github.com/nrattyp233/create-a-date/internal/jobs/cleanup"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
	redrepo "github.com/nrattyp233/create-a-date/internal/repo/redis"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	dateideassvc "github.com/nrattyp233/create-a-date/internal/services/dateideas"
	datessvc "github.com/nrattyp233/create-a-date/internal/services/dates"
	entsvc "github.com/nrattyp233/create-a-date/internal/services/entitlements"
	matchessvc "github.com/nrattyp233/create-a-date/internal/services/matches"
	messagessvc "github.com/nrattyp233/create-a-date/internal/services/messages"
	paymentsvc "github.com/nrattyp233/create-a-date/internal/services/payments"
	ratesvc "github.com/nrattyp233/create-a-date/internal/services/rate"
	swipesvc "github.com/nrattyp233/create-a-date/internal/services/swipes"
	userssvc "github.com/nrattyp233/create-a-date/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	cleanupJob *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	premiumCache := redrepo.NewPremiumCacheRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	orderRepo := pgrepo.NewOrderRepo(pool)
	datePostRepo := pgrepo.NewDatePostRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Premium.SwipeMaxPerMinute)
	entitlementService := entsvc.NewService(userRepo, messageRepo, premiumCache, entsvc.Config{
		FreeMessageCap:     cfg.Premium.FreeMessageCap,
		FreeVisibleMatches: cfg.Premium.FreeVisibleMatches,
	})

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:         pool,
		SwipeStore:   swipeRepo,
		MatchStore:   matchRepo,
		Entitlements: entitlementService,
		RateLimiter:  rateLimiter,
		Logger:       log,
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:         pool,
		MatchStore:   matchRepo,
		SwipeStore:   swipeRepo,
		UserStore:    userRepo,
		Entitlements: entitlementService,
	})
	messageService := messagessvc.NewService(messagessvc.Dependencies{
		MessageStore: messageRepo,
		Matches:      matchRepo,
		Entitlements: entitlementService,
	}, messagessvc.Config{
		FreeMessageCap: cfg.Premium.FreeMessageCap,
	})
	userService := userssvc.NewService(userRepo, swipeService)
	dateService := datessvc.NewService(datePostRepo)

	paypalClient := paypalinfra.NewClient(
		cfg.PayPal.ClientID,
		cfg.PayPal.ClientSecret,
		cfg.PayPal.Mode,
		httpclient.New(cfg.PayPal.Timeout),
	)
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		Orders:      orderRepo,
		Users:       userRepo,
		Provider:    paypalClient,
		Invalidator: entitlementService,
		Logger:      log,
	}, paymentsvc.Config{
		PriceUSD: cfg.PayPal.PriceUSD,
		Currency: "USD",
	})

	aiClient := aiinfra.NewClient(
		cfg.AI.BaseURL,
		cfg.AI.APIKey,
		cfg.AI.Model,
		httpclient.New(cfg.AI.Timeout),
	)
	dateIdeaService := dateideassvc.NewService(aiClient, entitlementService, userRepo)

	cleanupJob := cleanup.New(orderRepo, datePostRepo, cfg.PayPal.PendingTTL, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		UserService:        userService,
		SwipeService:       swipeService,
		MatchService:       matchService,
		MessageService:     messageService,
		DateService:        dateService,
		DateIdeaService:    dateIdeaService,
		PaymentService:     paymentService,
		EntitlementService: entitlementService,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunCleanup sweeps expired state on an interval until ctx is cancelled.
func (a *App) RunCleanup(ctx context.Context, interval time.Duration) error {
	if a.cleanupJob == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Hour
	}

	if err := a.cleanupJob.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.cleanupJob.Run(ctx); err != nil {
				return err
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
