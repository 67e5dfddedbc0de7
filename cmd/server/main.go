// Package main provides the taskquest API server binary.
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

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskquest-api/internal/auth"
	"github.com/yukikurage/taskquest-api/internal/config"
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/mailer"
	"github.com/yukikurage/taskquest-api/internal/metrics"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/scheduler"
	"github.com/yukikurage/taskquest-api/internal/server"
	"github.com/yukikurage/taskquest-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "TaskQuest API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations, seed tiers and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				log.Info("migrations applied")
				return nil
			})
		},
	})

	var tierFile string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the tier table from a YAML file or the built-in defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
				if tierFile != "" {
					cfg.TierSeedFile = tierFile
				}
				return seedTiers(cfg, db, log)
			})
		},
	}
	seed.Flags().StringVarP(&tierFile, "file", "f", "", "Tier seed file (YAML), overrides TIER_SEED_FILE")
	cmd.AddCommand(seed)

	return cmd
}

// withDatabase loads configuration, connects and hands the handles to fn.
func withDatabase(fn func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error) error {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	return fn(cfg, db, log)
}

func seedTiers(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
	tiers := database.DefaultTiers()
	if cfg.TierSeedFile != "" {
		loaded, err := database.LoadTierSeed(cfg.TierSeedFile)
		if err != nil {
			return fmt.Errorf("load tier seed: %w", err)
		}
		tiers = loaded
	}

	if err := database.SeedTiers(db, tiers); err != nil {
		return err
	}
	log.Info("tiers seeded", zap.Int("count", len(tiers)), zap.String("source", seedSource(cfg)))
	return nil
}

func seedSource(cfg *config.Config) string {
	if cfg.TierSeedFile == "" {
		return "defaults"
	}
	return cfg.TierSeedFile
}

func serve() error {
	return withDatabase(func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if cfg.UsesDefaultSecrets() {
			log.Warn("using development signing secrets; set JWT_SECRET and SESSION_SECRET")
		}
		gin.SetMode(cfg.GinMode)

		if err := database.Migrate(db); err != nil {
			return err
		}

		// Registration and provisioning need at least one tier.
		var tierCount int64
		if err := db.Model(&models.Tier{}).Count(&tierCount).Error; err != nil {
			return fmt.Errorf("count tiers: %w", err)
		}
		if tierCount == 0 || cfg.TierSeedFile != "" {
			if err := seedTiers(cfg, db, log); err != nil {
				return err
			}
		}

		store, err := newSessionStore(cfg)
		if err != nil {
			return err
		}

		m := metrics.New()
		svc := server.NewServices(db, server.ServiceDeps{
			Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.ResetTokenTTL),
			Mailer:   newMailer(cfg, log),
			Provider: newIdentityProvider(cfg, log),
			AI:       services.NewAIService(cfg.OpenAIAPIKey),
			Metrics:  m,
			ResetURL: cfg.AppBaseURL + "/reset-password",
			Log:      log,
		})

		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		stopCleanup := make(chan struct{})
		defer close(stopCleanup)
		limiter.StartCleanup(time.Minute, stopCleanup)

		jobs := scheduler.New(m, log)
		if err := jobs.AddStreakReset(cfg.StreakResetSchedule, svc.Streaks); err != nil {
			return err
		}
		jobs.Start()

		router := server.NewRouter(svc, server.Options{
			Log:          log,
			Metrics:      m,
			SessionStore: store,
			CORSOrigins:  cfg.CORSOrigins,
			AuthLimiter:  limiter,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		case sig := <-quit:
			log.Info("shutting down", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		jobs.Stop(ctx)
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
}

// newSessionStore uses Redis when REDIS_HOST is set and signed cookies
// otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func newMailer(cfg *config.Config, log *zap.Logger) mailer.Mailer {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set; password reset links are logged instead of mailed")
		return mailer.NewLogMailer(log)
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// newIdentityProvider returns nil when no external provider is configured.
func newIdentityProvider(cfg *config.Config, log *zap.Logger) identity.Provider {
	if !cfg.SupabaseEnabled() {
		return nil
	}
	log.Info("external identity provider enabled", zap.String("url", cfg.SupabaseURL))
	return identity.NewSupabaseProvider(identity.SupabaseConfig{
		URL:       cfg.SupabaseURL,
		AnonKey:   cfg.SupabaseAnonKey,
		JWTSecret: cfg.SupabaseJWTSecret,
	})
}
