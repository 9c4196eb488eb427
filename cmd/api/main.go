// @title                       Accounts API
// @version                     1.0
// @description                 User registration, authentication and account management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/accounts-service/internal/api"
	"github.com/99minutos/accounts-service/internal/api/handler"
	"github.com/99minutos/accounts-service/internal/core/ports"
	"github.com/99minutos/accounts-service/internal/core/service"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/memory"
	mongodir "github.com/99minutos/accounts-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/postgres"
	rediscache "github.com/99minutos/accounts-service/internal/infrastructure/db/redis"
	"github.com/99minutos/accounts-service/internal/infrastructure/seed"
	"github.com/99minutos/accounts-service/internal/infrastructure/token"
	"github.com/99minutos/accounts-service/internal/pkg/config"
	"github.com/99minutos/accounts-service/pkg/logger"
	"github.com/99minutos/accounts-service/pkg/password"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "accounts-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWT.RefreshTTL() <= cfg.JWT.AccessTTL() {
		log.Warn().
			Dur("access_ttl", cfg.JWT.AccessTTL()).
			Dur("refresh_ttl", cfg.JWT.RefreshTTL()).
			Msg("refresh token lifetime should exceed access token lifetime")
	}

	readiness := make(map[string]handler.PingFunc)

	repo, closeRepo, err := openDirectory(ctx, cfg, log, readiness)
	if err != nil {
		return err
	}
	defer closeRepo()

	var cache service.StatusCache
	if cfg.Redis.Enabled {
		rdb, err := rediscache.Connect(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()

		cache = rediscache.NewStatusCache(rdb, cfg.Redis.StatusTTL)
		readiness["redis"] = rediscache.Ping(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("user status cache enabled")
	}

	hasher := password.NewHasher(password.DefaultCost)
	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		AccessTTL:     cfg.JWT.AccessTTL(),
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshTTL(),
	})
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}

	authService := service.NewAuthService(repo, hasher, tokens, logger.Component("auth"))
	userService := service.NewUserService(repo, cache, logger.Component("users"))

	if _, err := seed.FromFile(ctx, cfg.SeedUsersPath, repo, hasher, logger.Component("seed")); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	e := api.NewRouter(api.Deps{
		Log:           logger.Component("http"),
		AuthService:   authService,
		UserService:   userService,
		Tokens:        tokens,
		Readiness:     readiness,
		EnableSwagger: cfg.Swagger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr()).Str("storage", cfg.StorageDriver).Msg("server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openDirectory connects the configured user directory, prepares its schema
// and registers its readiness check.
func openDirectory(ctx context.Context, cfg *config.Config, log zerolog.Logger, readiness map[string]handler.PingFunc) (ports.UserRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{
			Host:           cfg.Postgres.Host,
			Port:           cfg.Postgres.Port,
			User:           cfg.Postgres.User,
			Password:       cfg.Postgres.Password,
			Database:       cfg.Postgres.Database,
			SSLMode:        cfg.Postgres.SSLMode,
			MaxConns:       cfg.Postgres.MaxConns,
			MaxConnIdle:    cfg.Postgres.MaxConnIdle,
			ConnectTimeout: cfg.Postgres.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		readiness["postgres"] = pool.Ping
		log.Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.Database).Msg("connected to postgres")
		return postgres.NewUserRepository(pool), pool.Close, nil

	case config.DriverMongo:
		client, db, err := mongodir.Connect(ctx, mongodir.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		repo := mongodir.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		readiness["mongodb"] = mongodir.Ping(client)
		log.Info().Str("db", cfg.Mongo.Database).Msg("connected to mongodb")
		return repo, closeFn, nil

	default:
		log.Warn().Msg("using in-memory user directory, data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	}
}
