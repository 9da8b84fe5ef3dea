package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/classroom/internal/app/auth"
	appControllers "github.com/yigit/classroom/internal/app/controllers"
	appMigrations "github.com/yigit/classroom/internal/app/migrations"
	appRepos "github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/app/repositories/memory"
	appRoutes "github.com/yigit/classroom/internal/app/routes"
	appServices "github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/config"
	"github.com/yigit/classroom/internal/db"
	appMiddleware "github.com/yigit/classroom/internal/middleware"
	pkgAuth "github.com/yigit/classroom/internal/pkg/auth"
	"github.com/yigit/classroom/internal/pkg/coursecode"
	"github.com/yigit/classroom/internal/pkg/email"
	"github.com/yigit/classroom/internal/pkg/filestorage"
	"github.com/yigit/classroom/internal/pkg/helpers"
	"github.com/yigit/classroom/internal/pkg/logger"
	"github.com/yigit/classroom/internal/pkg/validation"
	"github.com/yigit/classroom/internal/pkg/websocket"
	"github.com/yigit/classroom/internal/seed"
	sqlMigrations "github.com/yigit/classroom/migrations"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Membership     *appAuth.MembershipService
	Mailer         email.Mailer
	FileStorage    *filestorage.LocalStorage
	Hub            *websocket.Hub
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Storage is the persistence backend chosen by configuration. DB is nil for the memory driver.
type Storage struct {
	Repos *appRepos.Repositories
	DB    *db.PostgresDB
}

// Close releases the database pool, if any
func (s *Storage) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured backend, runs migrations and seeds demo accounts when enabled.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	storage := &Storage{}

	switch cfg.Database.Driver {
	case config.DatabaseDriverMemory:
		lgr.Warn().Msg("Using in-memory storage, data is lost on restart")
		storage.Repos = memory.NewRepositories()

	default:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
		if err := migrator.Migrate(ctx, migrationSource(cfg.Database.MigrationsDir, lgr)); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		storage.DB = database
		storage.Repos = appRepos.NewRepositories(database)
	}

	if cfg.Database.Seed {
		if err := seed.CreateDemoUsers(ctx, storage.Repos.Users, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo users, proceeding anyway...")
		}
	}

	return storage, nil
}

// migrationSource prefers an on-disk migrations directory and falls back to the embedded files
func migrationSource(dir string, lgr zerolog.Logger) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			lgr.Debug().Str("path", dir).Msg("Using migrations directory")
			return os.DirFS(dir)
		}
	}
	return sqlMigrations.FS
}

// BuildDependencies initializes services and controllers on top of the repositories.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Mailer, err = email.New(email.Config{
		Driver:    cfg.Mail.Driver,
		FromName:  cfg.Mail.FromName,
		FromEmail: cfg.Mail.FromEmail,
		SMTP: email.SMTPConfig{
			Host:     cfg.Mail.SMTP.Host,
			Port:     cfg.Mail.SMTP.Port,
			Username: cfg.Mail.SMTP.Username,
			Password: cfg.Mail.SMTP.Password,
			UseTLS:   cfg.Mail.SMTP.UseTLS,
		},
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
	}, logger.Component("mail"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize mailer")
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:        cfg.JWT.Secret,
		RefreshSecretKey: cfg.JWT.RefreshSecret,
		AccessTokenExp:   helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp:  helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:      cfg.JWT.Issuer,
	})

	deps.Membership = appAuth.NewMembershipService(repos.Courses)
	deps.Hub = websocket.NewHub(logger.Component("feed"))
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	publish := appServices.WithPublisher(deps.Hub)

	uploadService := appServices.NewUploadService(
		repos.Uploads,
		deps.FileStorage,
		appServices.UploadLimits{
			MaxFiles:    cfg.Storage.MaxFiles,
			MaxFileSize: cfg.Storage.MaxUploadSize,
		},
		logger.Component("uploads"),
	)
	authService := appServices.NewAuthService(repos.Users, deps.JWTService, logger.Component("auth"))
	userService := appServices.NewUserService(repos.Users)
	courseService := appServices.NewCourseService(
		repos.Courses,
		deps.Membership,
		coursecode.NewGenerator(repos.Courses),
		deps.Mailer,
		helpers.ParseDuration(cfg.Mail.Timeout, 30*time.Second),
		logger.Component("courses"),
		publish,
	)
	absenceService := appServices.NewAbsenceService(
		repos.Absences,
		repos.Users,
		deps.Membership,
		logger.Component("absences"),
		publish,
	)
	homeworkService := appServices.NewHomeworkService(
		repos.Homework,
		uploadService,
		deps.Membership,
		logger.Component("homework"),
		publish,
	)
	submissionService := appServices.NewSubmissionService(
		repos.Submissions,
		repos.Homework,
		repos.Users,
		repos.Courses,
		uploadService,
		deps.Membership,
		logger.Component("submissions"),
		publish,
	)
	postService := appServices.NewPostService(
		repos.Posts,
		uploadService,
		deps.Membership,
		logger.Component("posts"),
		publish,
	)
	commentService := appServices.NewCommentService(
		repos.Comments,
		repos.Posts,
		deps.Membership,
		logger.Component("comments"),
		publish,
	)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(authService, logger.Component("auth")),
		User:       appControllers.NewUserController(userService),
		Course:     appControllers.NewCourseController(courseService),
		Absence:    appControllers.NewAbsenceController(absenceService),
		Homework:   appControllers.NewHomeworkController(homeworkService),
		Submission: appControllers.NewSubmissionController(submissionService),
		Post:       appControllers.NewPostController(postService, commentService),
		Upload:     appControllers.NewUploadController(uploadService),
		Feed:       websocket.NewHandler(deps.Hub, deps.Membership, logger.Component("feed")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterWithGin(); err != nil {
		lgr.Error().Err(err).Msg("Failed to register custom validators")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))
	router.MaxMultipartMemory = 32 << 20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
