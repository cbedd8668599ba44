package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/techtimeoff/leave-service/internal/api/http"
	"github.com/techtimeoff/leave-service/internal/api/http/handlers"
	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/bootstrap"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/oauth"
	"github.com/techtimeoff/leave-service/internal/observability"
	"github.com/techtimeoff/leave-service/internal/persistence"
	"github.com/techtimeoff/leave-service/internal/service"
	"github.com/techtimeoff/leave-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer stores.Close()

	checks := map[string]handlers.Pinger{}
	for name, dep := range stores.Checks {
		checks[name] = dep
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	var states oauth.StateStore
	if redis != nil {
		defer redis.Close()
		checks["redis"] = redis
		states = oauth.NewRedisStateStore(redis.Client, cfg.OAuth.StateTTL())
	} else {
		logger.Info("redis not configured, oauth state kept in memory")
		states = oauth.NewMemoryStateStore(cfg.OAuth.StateTTL())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var sink *events.KafkaSink
	if cfg.Kafka.Enabled() {
		sink = events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("kafka sink close", zap.Error(err))
			}
		}()
	}
	worker.StartEventSubscribers(dispatcher, service.NewActivityService(dispatcher, logger, metrics), sink)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	identity := service.NewIdentityService(*cfg, service.IdentityDependencies{
		UserRepo: stores.Users,
		Logger:   logger,
	})
	authService := service.NewAuthService(identity, tokens)

	providers, enabled := oauthProviders(cfg.OAuth, logger)
	oauthService := service.NewOAuthService(*cfg, service.OAuthDependencies{
		Providers: providers,
		States:    states,
		Identity:  identity,
		Tokens:    tokens,
		Logger:    logger,
	})
	leaveService := service.NewLeaveService(*cfg, service.LeaveDependencies{
		LeaveRepo:   stores.Leaves,
		HistoryRepo: stores.History,
		UserRepo:    stores.Users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ExposeInternal: !cfg.App.IsProduction(),
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, checks),
		Auth:           handlers.NewAuthHandler(authService, identity),
		OAuth:          handlers.NewOAuthHandler(oauthService),
		Users:          handlers.NewUsersHandler(identity),
		Leaves:         handlers.NewLeavesHandler(leaveService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		OAuthProviders: enabled,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func oauthProviders(cfg config.OAuthConfig, logger *zap.Logger) (oauth.Registry, []domain.AuthProvider) {
	registry := oauth.Registry{}
	if cfg.Google.Enabled() {
		registry.Register(oauth.NewGoogleProvider(cfg.Google))
	} else {
		logger.Warn("google oauth disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET missing")
	}
	if cfg.GitHub.Enabled() {
		registry.Register(oauth.NewGitHubProvider(cfg.GitHub))
	} else {
		logger.Warn("github oauth disabled: GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET missing")
	}

	enabled := make([]domain.AuthProvider, 0, len(registry))
	for _, p := range []domain.AuthProvider{domain.AuthProviderGoogle, domain.AuthProviderGitHub} {
		if _, ok := registry.Get(p); ok {
			enabled = append(enabled, p)
		}
	}
	return registry, enabled
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
