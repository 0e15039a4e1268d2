package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/klubfitness/fitness-club/docs" // registers the swagger document
	"github.com/klubfitness/fitness-club/internal/api/handler"
	"github.com/klubfitness/fitness-club/internal/api/middleware"
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
	"github.com/klubfitness/fitness-club/internal/infrastructure/http/handlers"
)

// Dependencies are the services the router wires into handlers. Audit and
// RateLimiter are optional and must be left as nil interfaces when their
// backing store is not configured.
type Dependencies struct {
	Logger    zerolog.Logger
	JWTSecret string

	Auth         ports.AuthService
	Users        ports.UserService
	Trainers     ports.TrainerService
	Sessions     ports.SessionService
	Reservations ports.ReservationService
	Audit        ports.AuditService

	RateLimiter middleware.RateLimiter
	Readiness   *handlers.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("fitness"))

	// --- Operational routes (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness)
	}

	limit := middleware.RateLimit(d.RateLimiter, d.Logger)
	authenticated := middleware.Auth(d.JWTSecret, d.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleUser, domain.RoleTrainer, domain.RoleAdmin)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Users)
	e.POST("/api/auth/login", authHandler.Login, limit)

	api := e.Group("/api", authenticated, limit)
	api.GET("/auth/me", authHandler.Me)

	// --- Trainers ---
	trainerHandler := handler.NewTrainerHandler(d.Trainers)
	trainers := api.Group("/trainers")
	trainers.GET("", trainerHandler.List)
	trainers.GET("/:id", trainerHandler.Get)
	trainers.POST("", trainerHandler.Create, adminOnly)
	trainers.PUT("/:id", trainerHandler.Update, adminOnly)
	trainers.DELETE("/:id", trainerHandler.Delete, adminOnly)

	// --- Users ---
	userHandler := handler.NewUserHandler(d.Users)
	users := api.Group("/users")
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create, adminOnly)
	users.PUT("/:id", userHandler.Update, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Training sessions ---
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	for _, prefix := range []string{"/sessions", "/training-sessions"} {
		sessions := api.Group(prefix)
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("", sessionHandler.Create, anyRole)
		sessions.PUT("/:id", sessionHandler.Update, anyRole)
		sessions.DELETE("/:id", sessionHandler.Delete, anyRole)
	}

	// --- Reservations ---
	reservationHandler := handler.NewReservationHandler(d.Reservations)
	reservations := api.Group("/reservations")
	reservations.GET("", reservationHandler.List)
	reservations.GET("/:id", reservationHandler.Get)
	reservations.POST("", reservationHandler.Create, anyRole)
	reservations.DELETE("/:id", reservationHandler.Cancel, anyRole)

	// --- Audit (Mongo only) ---
	if d.Audit != nil {
		auditHandler := handler.NewAuditHandler(d.Audit)
		api.GET("/audit/reservations", auditHandler.List, adminOnly)
	}

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
