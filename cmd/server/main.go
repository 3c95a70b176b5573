package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"studyhub/internal/app"
	"studyhub/internal/config"
	"studyhub/internal/health"
	"studyhub/internal/http/handler"
	"studyhub/internal/http/router"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/security"
	"studyhub/internal/service"
	"studyhub/internal/tokenstore"
)

func main() {
	root := &cobra.Command{
		Use:   "studyhub",
		Short: "Study group membership and attendance backend",
	}
	root.AddCommand(serveCmd(), migrateCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg)
			slog.SetDefault(logger)

			runtime, err := observability.InitRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			db, err := repository.Open(cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}

			store, redisClient := newTokenStore(cmd.Context(), cfg, logger)

			jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
			tokens := service.NewTokenService(jwtMgr, store, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

			userRepo := repository.NewUserRepository(db)
			studyRepo := repository.NewStudyRepository(db)
			memberRepo := repository.NewMemberRepository(db)
			attendanceRepo := repository.NewAttendanceRepository(db)

			authSvc := service.NewAuthService(userRepo, tokens, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.BcryptCost)
			userSvc := service.NewUserService(userRepo)
			studySvc := service.NewStudyService(studyRepo, memberRepo, userRepo)
			attendanceSvc := service.NewAttendanceService(attendanceRepo, studyRepo, memberRepo)

			readiness := health.NewProbeRunner(2 * time.Second)
			readiness.Register("database", func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			})
			if redisClient != nil {
				readiness.Register("redis", func(ctx context.Context) error {
					return redisClient.Ping(ctx).Err()
				})
			}

			h := router.NewRouter(router.Dependencies{
				AuthHandler:       handler.NewAuthHandler(authSvc),
				UserHandler:       handler.NewUserHandler(userSvc),
				StudyHandler:      handler.NewStudyHandler(studySvc),
				AttendanceHandler: handler.NewAttendanceHandler(attendanceSvc),
				TokenVerifier:     tokens,
				AuthRateLimitRPM:  cfg.AuthRateLimitRPM,
				APIRateLimitRPM:   cfg.APIRateLimitRPM,
				Readiness:         readiness,
				EnableOTelHTTP:    cfg.OTELTracingEnabled,
			})

			server := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           h,
				ReadHeaderTimeout: 5 * time.Second,
			}
			return app.New(cfg, logger, server, runtime).Run(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := repository.Open(cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			return repository.Migrate(db)
		},
	}
}

// newTokenStore connects to Redis; outside production an unreachable Redis
// degrades to the in-memory store instead of failing startup.
func newTokenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (tokenstore.Store, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if cfg.IsProduction() {
			logger.Error("redis unreachable in production", "error", err)
			os.Exit(1)
		}
		logger.Warn("redis unreachable, falling back to in-memory token store", "error", err)
		_ = client.Close()
		return tokenstore.NewInMemoryStore(), nil
	}
	return tokenstore.NewRedisStore(client, "studyhub"), client
}
