package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/hotel-booking-api/internal/config"
	"github.com/iliyamo/hotel-booking-api/internal/database"
	"github.com/iliyamo/hotel-booking-api/internal/handler"
	"github.com/iliyamo/hotel-booking-api/internal/middleware"
	"github.com/iliyamo/hotel-booking-api/internal/observability"
	"github.com/iliyamo/hotel-booking-api/internal/payment"
	"github.com/iliyamo/hotel-booking-api/internal/queue"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
	"github.com/iliyamo/hotel-booking-api/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load() // Load environment config

	logger, closer, err := observability.NewLogger(config.LoadLogConfig(), cfg.Env, cfg.Version)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbOpt := database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpen,
		MaxIdleConns:    cfg.DBMaxIdle,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}
	if cfg.DBMigrate {
		if err := migrate(ctx, dbOpt, cfg.MigrationsDir, logger); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	db, err := database.Open(ctx, dbOpt)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			logger.Fatal().Err(err).Msg("bootstrap admin")
		}
		if created {
			logger.Info().Str("email", cfg.AdminEmail).Msg("admin account created")
		}
	}

	// nil when redis is disabled or unreachable
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable: response cache off, rate limiter in-process")
	} else {
		defer rdb.Close()
	}

	amqpCfg := config.LoadAMQPConfig()
	var pub queue.Publisher = queue.NopPublisher{}
	if amqpCfg.Enabled {
		pub = queue.NewAMQPPublisher(amqpCfg, logger)
	}
	defer pub.Close()

	bookings := repository.NewBookingRepo(db)
	roomTypes := repository.NewRoomTypeRepo(db)
	h := router.Handlers{
		Service: &handler.ServiceHandler{DB: db, Version: cfg.Version, Env: cfg.Env},
		Auth: handler.NewAuthHandler(handler.AuthSettings{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
		}, users, repository.NewTokenRepo(db)),
		Catalog:  handler.NewCatalogHandler(repository.NewCityRepo(db), repository.NewHotelRepo(db), roomTypes),
		Bookings: handler.NewBookingHandler(bookings, roomTypes, pub),
		Payments: handler.NewPaymentHandler(repository.NewPaymentRepo(db), bookings,
			payment.NewSimulator(config.LoadPaymentConfig()), pub),
		Reviews: handler.NewReviewHandler(repository.NewReviewRepo(db)),
		Pricing: handler.NewPricingHandler(repository.NewPricingRepo(db)),
	}

	opt := router.OptionsFrom(cfg)
	opt.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)
	opt.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	opt.Metrics = observability.MetricsHandler(observability.InitRegistry())
	e := router.New(h, opt, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", ":"+cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if amqpCfg.Enabled && amqpCfg.ConsumerEnabled {
		consumer := queue.NewConsumer(amqpCfg, logger)
		g.Go(func() error { return consumer.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
}

// migrate applies the SQL files over a dedicated multi-statement
// connection that is closed before the server starts.
func migrate(ctx context.Context, opt database.Options, dir string, logger zerolog.Logger) error {
	mdb, err := database.OpenForMigrations(ctx, opt)
	if err != nil {
		return err
	}
	defer mdb.Close()
	applied, err := database.Migrate(ctx, mdb, dir)
	if err != nil {
		return err
	}
	logger.Info().Strs("files", applied).Msg("migrations applied")
	return nil
}
