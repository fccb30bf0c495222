package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/positions-api/internal/config"
	"github.com/iliyamo/positions-api/internal/database"
	"github.com/iliyamo/positions-api/internal/handler"
	"github.com/iliyamo/positions-api/internal/logger"
	"github.com/iliyamo/positions-api/internal/middleware"
	"github.com/iliyamo/positions-api/internal/queue"
	"github.com/iliyamo/positions-api/internal/repository"
	"github.com/iliyamo/positions-api/internal/router"
	"github.com/iliyamo/positions-api/internal/service"
	"github.com/iliyamo/positions-api/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config; fall back to a bare one.
		l := logger.New("info", "console")
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With().Str("service", "positions-api").Str("env", cfg.Env).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec, err := database.NewExecutor(ctx, database.MySQLOpener(database.MySQLOptions{
		User:      cfg.DBUser,
		Pass:      cfg.DBPass,
		Addr:      cfg.DBAddr(),
		Name:      cfg.DBName,
		ConnLimit: cfg.DBConnLimit,
	}), log)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer func() { _ = exec.Close() }()

	principals := repository.NewPrincipalRepo(exec)
	positions := repository.NewPositionRepo(exec)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	codec := utils.NewTokenCodec(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	qcfg := config.LoadQueueConfig()
	var events service.EventPublisher
	if qcfg.Enabled {
		events = queue.NewPublisher(qcfg.URL, qcfg.Name, log)
	}
	if qcfg.ConsumerEnabled {
		consumer := queue.NewConsumer(qcfg.URL, qcfg.Name, qcfg.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("auth event consumer stopped")
			}
		}()
	}

	authSvc, err := service.NewAuthService(principals, hasher, codec, events, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init auth service")
	}
	userSvc := service.NewUserService(principals, hasher, log)
	positionSvc := service.NewPositionService(positions)

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(log))

	authH := handler.NewAuthHandler(authSvc, userSvc, log)
	router.RegisterRoutes(e, router.Deps{
		Health:    exec,
		Auth:      authH,
		Users:     handler.NewUserHandler(userSvc, authH, log),
		Positions: handler.NewPositionHandler(positionSvc, log),
		Verifier:  codec,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
