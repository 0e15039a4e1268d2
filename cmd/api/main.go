// Command api serves the fitness club REST API.
//
//	@title						Fitness Club API
//	@version					1.0
//	@description				Users, trainers, training sessions and reservations with role-based discounts.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@securityDefinitions.basic	BasicAuth
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/klubfitness/fitness-club/internal/api"
	"github.com/klubfitness/fitness-club/internal/api/middleware"
	"github.com/klubfitness/fitness-club/internal/core/discount"
	"github.com/klubfitness/fitness-club/internal/core/ports"
	"github.com/klubfitness/fitness-club/internal/core/service"
	"github.com/klubfitness/fitness-club/internal/infrastructure/config"
	mongostore "github.com/klubfitness/fitness-club/internal/infrastructure/db/mongo"
	redisstore "github.com/klubfitness/fitness-club/internal/infrastructure/db/redis"
	"github.com/klubfitness/fitness-club/internal/infrastructure/db/sqldb"
	httpserver "github.com/klubfitness/fitness-club/internal/infrastructure/http"
	"github.com/klubfitness/fitness-club/internal/infrastructure/http/handlers"
	"github.com/klubfitness/fitness-club/internal/infrastructure/queue"
	"github.com/klubfitness/fitness-club/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "fitness-club",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
	log.Info().Msg("api stopped")
}

// closers run in reverse registration order on shutdown.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) close() error {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		err = multierr.Append(err, c[i]())
	}
	return err
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var cleanup closers
	defer func() {
		if cerr := cleanup.close(); cerr != nil {
			log.Error().Err(cerr).Msg("shutdown cleanup failed")
		}
	}()

	// Fail fast on a bad policy table before touching any store.
	loc, err := cfg.Discount.Location()
	if err != nil {
		return err
	}
	policies, err := discount.FromConfig(cfg.Discount.Policies, discount.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("discount policies: %w", err)
	}
	log.Info().Interface("routes", policies.Routes()).Str("timezone", loc.String()).Msg("discount policies loaded")

	// --- Relational store ---
	dbCfg := sqldb.Config{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}
	if cfg.DB.AutoMigrate {
		if err := sqldb.Migrate(ctx, dbCfg, logger.Component("migrate")); err != nil {
			return err
		}
	}
	db, err := sqldb.Open(ctx, dbCfg)
	if err != nil {
		return err
	}
	cleanup.add(db.Close)
	log.Info().Str("driver", cfg.DB.Driver).Msg("database connected")

	userRepo := sqldb.NewUserRepository(db)
	trainerRepo := sqldb.NewTrainerRepository(db)
	sessionRepo := sqldb.NewSessionRepository(db)
	reservationRepo := sqldb.NewReservationRepository(db)

	readiness := handlers.NewHealthDependenciesHandler(db)

	// --- Event sinks ---
	sinks := []ports.ReservationEventSink{queue.NewLogSink(logger.Component("events"))}

	var auditService ports.AuditService
	if cfg.Mongo.URI != "" {
		client, mdb, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "fitness-club",
		})
		if err != nil {
			return err
		}
		cleanup.add(mongostore.Disconnect(client, 5*time.Second))

		auditRepo := mongostore.NewAuditRepository(mdb)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			return err
		}
		sinks = append(sinks, auditRepo)
		auditService = service.NewAuditService(auditRepo)
		readiness.WithMongo(mdb)
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo audit log enabled")
	}

	if cfg.AMQP.URL != "" {
		publisher := queue.NewAMQPPublisher(queue.AMQPConfig{URL: cfg.AMQP.URL, Queue: cfg.AMQP.Queue}, logger.Component("amqp"))
		if err := publisher.Connect(); err != nil {
			return err
		}
		cleanup.add(publisher.Close)
		sinks = append(sinks, publisher)
		readiness.WithCheck("amqp", publisher.Ping)
		log.Info().Str("queue", cfg.AMQP.Queue).Msg("amqp publisher enabled")
	}

	// --- Redis: idempotency and rate limiting ---
	reservationOpts := []service.ReservationOption{}
	var limiter middleware.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		cleanup.add(rdb.Close)
		readiness.WithRedis(rdb)

		reservationOpts = append(reservationOpts,
			service.WithIdempotencyStore(redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)))
		if cfg.RateLimit.Enabled {
			limiter = newRateLimiter(rdb, cfg.RateLimit)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Bool("rate_limit", limiter != nil).Msg("redis enabled")
	}

	// --- Event dispatcher ---
	dispatcher := queue.NewDispatcher(cfg.Workers.EventWorkers, logger.Component("dispatcher"), sinks...)
	// Workers outlive the signal so Close can drain them.
	dispatcher.Start(context.WithoutCancel(ctx))
	reservationOpts = append(reservationOpts, service.WithEventPublisher(dispatcher))

	// --- Services ---
	userService := service.NewUserService(userRepo, logger.Component("users"))
	if err := userService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return err
	}

	router := api.NewRouter(api.Dependencies{
		Logger:       logger.Component("http"),
		JWTSecret:    cfg.JWTSecret,
		Auth:         service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		Users:        userService,
		Trainers:     service.NewTrainerService(trainerRepo, logger.Component("trainers")),
		Sessions:     service.NewSessionService(sessionRepo, trainerRepo, logger.Component("sessions")),
		Reservations: service.NewReservationService(userRepo, sessionRepo, reservationRepo, policies, logger.Component("reservations"), reservationOpts...),
		Audit:        auditService,
		RateLimiter:  limiter,
		Readiness:    readiness,
	})

	serveErr := httpserver.Serve(ctx, router, httpserver.ServerConfig{
		Addr:            ":" + cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, log)

	// Drain events after the server stopped accepting requests.
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Warn().Err(err).Msg("event queue not fully drained")
	}
	return serveErr
}

func newRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig) middleware.RateLimiter {
	return redisstore.NewRateLimiter(rdb, redisstore.RateLimitConfig{
		Capacity:       cfg.Capacity,
		RefillTokens:   cfg.RefillTokens,
		RefillInterval: cfg.RefillInterval,
		Prefix:         cfg.Prefix,
	})
}
