package http

import (
	"log/slog"
	"net/http"

	"github.com/event-planner-api/internal/application/auth"
	"github.com/event-planner-api/internal/application/event"
	"github.com/event-planner-api/internal/config"
	jwtinfra "github.com/event-planner-api/internal/infrastructure/jwt"
	"github.com/event-planner-api/internal/transport/http/handler"
	appmiddleware "github.com/event-planner-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	EventRepo   EventRepository
	PendingRepo auth.PendingStore
	OTPSender   auth.OTPSender
	JWTProvider *jwtinfra.Provider
	Logger      *slog.Logger
	BcryptCost  int
	// HealthChecks back GET /api/health-check/ready.
	HealthChecks []handler.Check
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:        deps.UserRepo,
		PendingRepo:     deps.PendingRepo,
		Tokens:          deps.JWTProvider,
		OTPSender:       deps.OTPSender,
		RegistrationOTP: cfg.RegistrationOTP,
		OTPTTL:          cfg.OTPTTL,
		BcryptCost:      deps.BcryptCost,
		Logger:          log,
	})
	eventSvc := event.NewService(event.ServiceDeps{EventRepo: deps.EventRepo, Logger: log})

	healthH := handler.NewHealthHandler(deps.HealthChecks...)
	authH := handler.NewAuthHandler(authSvc, handler.NewCookieWriter(cfg.Cookie), log)
	eventH := handler.NewEventHandler(eventSvc, log)
	authMw := appmiddleware.Auth(authSvc, log)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)
		r.Post("/auth/logout", authH.Logout)
		r.Get("/events/upcoming", eventH.Upcoming)
		r.Get("/events/past", eventH.Past)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)
			r.Get("/events", eventH.List)
			r.Post("/events", eventH.Create)
			r.Get("/events/my-events", eventH.ListMine)
			r.Get("/events/{id}", eventH.Get)
			r.Put("/events/{id}", eventH.Update)
			r.Delete("/events/{id}", eventH.Delete)
		})
	})

	return r
}
