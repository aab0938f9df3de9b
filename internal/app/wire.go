package app

import (
	"log/slog"
	"time"

	"github.com/fightcard/platform/internal/auth"
	"github.com/fightcard/platform/internal/guard"
	"github.com/fightcard/platform/internal/handler"
	"github.com/fightcard/platform/internal/infra"
	"github.com/fightcard/platform/internal/repository"
	"github.com/fightcard/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultLoginRatePerMinute = 10
	idempotencyTTL            = 24 * time.Hour
)

// Services bundles the domain services shared by the HTTP API and background jobs.
type Services struct {
	Fighters *service.FighterRegistry
	Events   *service.EventService
	Results  *service.ResultsService
	Betting  *service.BettingService
	BetTypes *service.BetTypeService
	Auth     *service.AuthService
}

// NewServices builds the repositories and services over pool.
func NewServices(pool *pgxpool.Pool, jwtMgr *auth.JWTManager, metrics *infra.Metrics, logger *slog.Logger) *Services {
	fighterRepo := repository.NewFighterRepository()
	eventRepo := repository.NewEventRepository()
	boutRepo := repository.NewBoutRepository()
	betTypeRepo := repository.NewBetTypeRepository()
	resultRepo := repository.NewBoutResultRepository()
	betRepo := repository.NewUserBetRepository()
	userRepo := repository.NewUserRepository()
	outboxRepo := repository.NewOutboxRepository()

	registry := service.NewFighterRegistry(pool, fighterRepo, metrics, logger)
	events := service.NewEventService(pool, eventRepo, boutRepo, resultRepo, registry, logger)

	return &Services{
		Fighters: registry,
		Events:   events,
		Results:  service.NewResultsService(pool, events, registry, boutRepo, betTypeRepo, resultRepo, outboxRepo, metrics, logger),
		Betting:  service.NewBettingService(pool, boutRepo, betTypeRepo, betRepo, metrics, logger),
		BetTypes: service.NewBetTypeService(pool, betTypeRepo),
		Auth:     service.NewAuthService(pool, userRepo, jwtMgr, logger),
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool    *pgxpool.Pool
	JWTMgr  *auth.JWTManager
	Logger  *slog.Logger
	Metrics *infra.Metrics
	// Services defaults to NewServices over Pool.
	Services           *Services
	CORSAllowedOrigins string
	LoginRatePerMinute int
	// TrustedProxies may set X-Forwarded-For; empty means the peer address is the client.
	TrustedProxies handler.TrustedProxies
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	metrics := deps.Metrics
	if metrics == nil {
		metrics = infra.NewMetrics()
	}
	svc := deps.Services
	if svc == nil {
		svc = NewServices(pool, jwtMgr, metrics, logger)
	}
	origins := deps.CORSAllowedOrigins
	if origins == "" {
		origins = "*"
	}
	loginRate := deps.LoginRatePerMinute
	if loginRate <= 0 {
		loginRate = defaultLoginRatePerMinute
	}

	// Guards
	idempotency := guard.NewIdempotencyGuard(idempotencyTTL)
	loginLimiter := guard.NewRateLimiter(loginRate)
	lockout := guard.NewLockout(pool, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(svc.Auth, loginLimiter, lockout, deps.TrustedProxies)
	eventHandler := handler.NewEventHandler(svc.Events, idempotency)
	fighterHandler := handler.NewFighterHandler(svc.Fighters)
	betTypeHandler := handler.NewBetTypeHandler(svc.BetTypes)
	bettingHandler := handler.NewBettingHandler(svc.Betting)
	resultsHandler := handler.NewResultsHandler(svc.Results, idempotency)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.Metrics(metrics))
	r.Use(handler.CORSWithOrigins(origins))

	// Prometheus exposition keeps its own content type.
	r.Method("GET", "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Get("/health", handler.HealthHandler(pool))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Public reads
		r.Get("/events", eventHandler.List)
		r.Get("/events/{id}", eventHandler.Get)
		r.Get("/fighters", fighterHandler.List)
		r.Get("/fighters/search", fighterHandler.Search)
		r.Get("/fighters/{id}", fighterHandler.Get)
		r.Get("/bet-types", betTypeHandler.List)
		r.Get("/bet-types/{id}", betTypeHandler.Get)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(jwtMgr))

			r.Post("/events", eventHandler.Create)
			r.Put("/events/{id}", eventHandler.Update)
			r.Delete("/events/{id}", eventHandler.Delete)

			r.Post("/bet-types", betTypeHandler.Create)

			r.Post("/user-bets", bettingHandler.PlaceBet)
			r.Put("/user-bets/result", bettingHandler.RecordOutcome)
			r.Get("/user-bets/{userId}", bettingHandler.ListForUser)
			r.Get("/bout-bets/{boutId}", bettingHandler.ListForBout)

			r.Post("/event-results", resultsHandler.AddResults)
		})
	})

	return r
}
