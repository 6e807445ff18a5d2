package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	sessionapi "github.com/seedlift/seedlift/api/echo"
	"github.com/seedlift/seedlift/cache"
	redcache "github.com/seedlift/seedlift/cache/redis"
	"github.com/seedlift/seedlift/config"
	"github.com/seedlift/seedlift/internal/auth"
	"github.com/seedlift/seedlift/internal/fingerprint"
	"github.com/seedlift/seedlift/internal/metrics"
	"github.com/seedlift/seedlift/log"
	"github.com/seedlift/seedlift/middleware"
	"github.com/seedlift/seedlift/mongodb"
	"github.com/seedlift/seedlift/services"
	"github.com/seedlift/seedlift/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger := log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "Starting seedlift API server", map[string]interface{}{
		"http_port":     cfg.HTTPPort,
		"mongo_db_name": cfg.MongoDBName,
		"log_level":     cfg.LogLevel,
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			appLogger.Error(shutdownCtx, "TracerProvider shutdown failed", shutdownErr)
		}
	}()

	metrics.Register(prometheus.DefaultRegisterer)

	if initErr := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); initErr != nil {
		appLogger.Fatal(ctx, "Failed to initialize MongoDB connection", initErr)
	}
	defer mongodb.CloseMongoDB(context.Background())
	db := mongodb.GetDB()

	sessionRepo, err := mongodb.NewSessionRepositoryMongo(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize SessionRepository", err)
	}
	userRepo := mongodb.NewUserRepositoryMongo(db)

	var locationCache cache.LocationCache
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		locationCache = redcache.NewLocationCache(redisClient, "seedlift")
		appLogger.Info(ctx, "Using Redis location cache", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		memCache := cache.NewMemoryLocationCache(time.Hour)
		defer memCache.Close()
		locationCache = memCache
	}
	locator := fingerprint.NewLocator(cfg.GeoAPIURL, locationCache)

	codec := services.NewTokenCodec(cfg.JWTSecret)
	hasher := auth.NewBcryptPasswordHasher(0)
	sessionService := services.NewSessionService(
		sessionRepo, userRepo, codec, hasher,
		cfg.AccessTokenDuration(), cfg.RefreshTokenDuration(),
	)

	deserializer := middleware.NewDeserializer(cfg, sessionService, locator)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := sessionapi.NewSessionAPI(cfg, sessionService, locator)
	api.RegisterRoutes(e, deserializer)

	go func() {
		if serveErr := e.Start(":" + cfg.HTTPPort); serveErr != nil && serveErr != http.ErrServerClosed {
			appLogger.Fatal(ctx, "HTTP server failed", serveErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info(ctx, "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Server forced to shutdown", err)
	}
	appLogger.Info(ctx, "Server exited.")
}
