package main

import (
	"context"
	"docbook/cmd/internal/access"
	"docbook/cmd/internal/config"
	"docbook/cmd/internal/domain/database"
	"docbook/cmd/internal/domain/database/repository"
	cognitoclient "docbook/cmd/internal/integration/aws/cognito"
	rediscache "docbook/cmd/internal/integration/redis"
	"docbook/cmd/internal/routes"
	"docbook/cmd/internal/service"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/validators"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(logLevel(cfg.LogLevel))

	validate := validator.New()
	validators.Register(validate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	// Availability cache is optional
	var cache service.AvailabilityCache
	if cfg.RedisAddr != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("failed to connect to redis: ", err)
		}
		defer client.Close()
		cache = rediscache.NewAvailabilityCache(client, cfg.CacheTTL)
	}

	auth, err := newAuthenticator(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize authenticator: ", err)
	}

	// Getting repositories
	slotRepo := repository.NewSlotRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	// Getting services
	reservationService := service.NewReservationService(slotRepo, directoryRepo, cache, validate, cfg.BookingLocation, cfg.ReserveTimeout)
	scheduleService := service.NewScheduleService(slotRepo, directoryRepo, cache, validate, cfg.BookingLocation)
	apptService := service.NewAppointmentService(apptRepo, slotRepo, directoryRepo, validate, cfg.BookingLocation)
	directoryService := service.NewDirectoryService(directoryRepo)
	policy := access.NewPolicy(directoryRepo)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.BodyLimit("64K"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Infof("%s %s %d %s request_id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))

	e.GET("/healthz", healthCheck(db))
	routes.Register(e, auth, &routes.Handlers{
		Directory:    routes.NewDirectoryDefault(directoryService),
		Reservation:  routes.NewReservationDefault(reservationService, policy),
		Schedule:     routes.NewScheduleDefault(scheduleService, policy),
		Appointments: routes.NewAppointmentDefault(apptService, policy),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped: ", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newAuthenticator prefers the Cognito user pool and falls back to locally
// signed tokens.
func newAuthenticator(ctx context.Context, cfg *config.Config) (utils.Authenticator, error) {
	if cfg.CognitoEnabled {
		cogClient, err := cognitoclient.InitCognitoClient(ctx, cfg.CognitoRegion)
		if err != nil {
			return nil, err
		}
		return cognitoclient.NewAuthenticator(cogClient), nil
	}
	return utils.NewJWTAuthenticator(cfg.JWTSecret), nil
}

func healthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			log.Errorf("health check failed: %v", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}

func logLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
