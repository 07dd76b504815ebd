package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/collegeprep/organizer/internal/app/controllers"
	appMigrations "github.com/collegeprep/organizer/internal/app/migrations"
	appRepos "github.com/collegeprep/organizer/internal/app/repositories"
	appRoutes "github.com/collegeprep/organizer/internal/app/routes"
	appServices "github.com/collegeprep/organizer/internal/app/services"
	"github.com/collegeprep/organizer/internal/config"
	"github.com/collegeprep/organizer/internal/db"
	"github.com/collegeprep/organizer/internal/jobs"
	appMiddleware "github.com/collegeprep/organizer/internal/middleware"
	pkgAuth "github.com/collegeprep/organizer/internal/pkg/auth"
	"github.com/collegeprep/organizer/internal/pkg/cache"
	"github.com/collegeprep/organizer/internal/pkg/email"
	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/collegeprep/organizer/internal/pkg/validation"
	"github.com/collegeprep/organizer/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Redis       *redis.Client // nil when redis is not configured or unreachable
	Scheduler   *jobs.Scheduler
	Controllers appRoutes.Controllers
	Middlewares appRoutes.Middlewares
	RateLimiter *appMiddleware.RateLimiter
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	if len(cfg.EnvOverrides) > 0 {
		lgr.Info().Strs("keys", cfg.EnvOverrides).Msg("Configuration overridden from environment")
	}
	return cfg, lgr, nil
}

// SetupDatabase connects to postgres, applies migrations and installs reference data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString()).Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	categories := appRepos.NewCategoryRepository(dbPool)
	if err := seed.CreateDefaultData(ctx, categories, lgr); err != nil {
		// Task seeding cannot work without categories
		dbPool.Close()
		return nil, fmt.Errorf("failed to create default data: %w", err)
	}

	return dbPool, nil
}

// SetupRedis connects to redis when an address is configured. Redis only
// backs advisory caches and rate limits, so failures are logged and the
// API runs without it.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured; caches disabled and rate limits kept in memory")
		return nil
	}

	client, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable; continuing without it")
		return nil
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
	return client
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Redis: redisClient}
	deps.Repos = appRepos.NewRepositories(dbPool)

	// A nil *redis.Client stored in the interface would not compare equal to nil
	var cacheClient cache.Interface
	if redisClient != nil {
		cacheClient = redisClient
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	hasher := pkgAuth.BcryptHasher{Cost: pkgAuth.BcryptCost}

	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.SMTP.ClientURL,
	}, lgr)

	seeder := appServices.NewSeedingService(deps.Repos.CategoryRepository, deps.Repos.TaskRepository, lgr)
	sessions := appServices.NewSessionStateStore(cacheClient, config.Duration(cfg.Redis.StateTTL, 7*24*time.Hour), lgr)
	entitlement := appServices.NewEntitlementService(deps.Repos.SubscriptionRepository, cacheClient,
		config.Duration(cfg.Redis.EntitlementTTL, time.Minute), lgr)

	authService := appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository,
		deps.JWTService, hasher, seeder, sessions, lgr)
	invitationService := appServices.NewInvitationService(deps.Repos.UserRepository, deps.Repos.InvitationRepository,
		deps.Repos.RelationRepository, hasher, mailer, authService, seeder,
		config.Duration(cfg.Invitations.Expiry, appServices.DefaultInvitationExpiry), lgr)
	paymentService := appServices.NewPaymentService(deps.Repos.UserRepository, deps.Repos.PaymentRepository,
		entitlement, appServices.NewSimulatedProvider(), appServices.PaymentConfig{
			PriceCents:    cfg.Payments.PriceCents,
			Currency:      cfg.Payments.Currency,
			AccessPeriod:  config.Duration(cfg.Payments.AccessPeriod, 365*24*time.Hour),
			WebhookSecret: cfg.Payments.WebhookSecret,
		}, lgr)
	taskService := appServices.NewTaskService(deps.Repos.TaskRepository, deps.Repos.CategoryRepository, seeder, lgr)
	documentService := appServices.NewDocumentService(deps.Repos.DocumentRepository, deps.Repos.TaskRepository, lgr)
	categoryService := appServices.NewCategoryService(deps.Repos.CategoryRepository)

	deps.Controllers = appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(authService, invitationService, lgr),
		Category: appControllers.NewCategoryController(categoryService),
		Task:     appControllers.NewTaskController(taskService, lgr),
		Document: appControllers.NewDocumentController(documentService, lgr),
		Payment:  appControllers.NewPaymentController(paymentService, lgr),
		Health:   appControllers.NewHealthController(dbPool, lgr),
	}
	deps.Middlewares = appRoutes.Middlewares{
		Auth:    appMiddleware.NewAuthMiddleware(deps.JWTService),
		Payment: appMiddleware.NewPaymentMiddleware(entitlement, lgr),
	}

	if cfg.RateLimit.Enabled {
		limiter, err := appMiddleware.NewRateLimiter(redisClient)
		if err != nil {
			return nil, err
		}
		deps.RateLimiter = limiter
		if deps.Middlewares.AuthLimit, err = limiter.Limit("auth", cfg.RateLimit.Auth); err != nil {
			return nil, err
		}
	}

	if cfg.Maintenance.Enabled {
		scheduler, err := jobs.NewScheduler(deps.Repos.TokenRepository, deps.Repos.InvitationRepository, jobs.Specs{
			TokenCleanup:    cfg.Maintenance.TokenCleanupSpec,
			InvitationSweep: cfg.Maintenance.InvitationSweepSpec,
		}, lgr)
		if err != nil {
			return nil, err
		}
		deps.Scheduler = scheduler
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(appMiddleware.RecoverJSON), appMiddleware.RequestLogger(lgr), appMiddleware.Metrics())

	if deps.RateLimiter != nil {
		global, err := deps.RateLimiter.Limit("global", cfg.RateLimit.Global)
		if err != nil {
			return nil, err
		}
		router.Use(global)
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.Middlewares)

	return router, nil
}
