package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/applications"
	"trackjob-backend/internal/dashboard"
	"trackjob-backend/internal/documents"
	"trackjob-backend/internal/interviews"
	"trackjob-backend/internal/jobs"
	"trackjob-backend/internal/notes"
	"trackjob-backend/internal/queue"
	"trackjob-backend/internal/services/health"
	"trackjob-backend/internal/shared/config"
	"trackjob-backend/internal/shared/server"
	"trackjob-backend/internal/shared/storage/db"
	"trackjob-backend/internal/shared/storage/object"
	localstore "trackjob-backend/internal/shared/storage/object/local"
	miniostore "trackjob-backend/internal/shared/storage/object/minio"
	s3store "trackjob-backend/internal/shared/storage/object/s3"
	"trackjob-backend/internal/shared/telemetry"
	"trackjob-backend/internal/users"
	"trackjob-backend/internal/workerproc"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Gateway object.Gateway
	// LocalStore is set only for the local backend.
	LocalStore *localstore.Store
	Queue      queue.Client

	DocumentsRepo    documents.Repo
	UsersRepo        users.Repo
	JobsRepo         jobs.Repo
	ApplicationsRepo applications.Repo
	InterviewsRepo   interviews.Repo
	NotesRepo        notes.Repo

	DocumentsService    *documents.Service
	UsersService        *users.Service
	JobsService         *jobs.Service
	ApplicationsService *applications.Service
	InterviewsService   *interviews.Service
	NotesService        *notes.Service
	DashboardService    *dashboard.Service
	HealthService       *health.Service

	// Sweeper removes unconfirmed uploads; used by the worker binaries.
	Sweeper *workerproc.Sweeper
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller supplied context for provider setup.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.SetLevel(cfg.LogLevel)

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}

	if err := buildGateway(ctx, app); err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Queue = queueClient

	buildServices(app)
	app.Router = server.NewRouter(routerDeps(app))

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"storage":  cfg.ObjectStoreType,
		"database": app.DB != nil,
		"queue":    app.Queue != nil,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildGateway(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			return err
		}
		app.Gateway = store
	case "minio":
		store, err := miniostore.New(miniostore.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Region:    cfg.AWSRegion,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			// The bucket may be provisioned out of band; presigning works offline.
			telemetry.Warn("bootstrap.minio.ensure_bucket_failed", map[string]any{"error": err.Error()})
		}
		app.Gateway = store
	default:
		store, err := localstore.New(cfg.LocalStoreDir, cfg.LocalStoreSecret, cfg.PublicBaseURL)
		if err != nil {
			return err
		}
		app.Gateway = store
		app.LocalStore = store
	}
	return nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.OrphanQueueURL) == "" {
		return nil, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.OrphanQueueURL, cfg.AWSRegion, cfg.OrphanGracePeriod)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
		app.InterviewsRepo = &interviews.PGRepo{DB: app.DB}
		app.NotesRepo = &notes.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		jobRepo := jobs.NewMemoryRepo()
		app.JobsRepo = jobRepo
		app.ApplicationsRepo = applications.NewMemoryRepo(jobRepo)
		app.InterviewsRepo = interviews.NewMemoryRepo()
		app.NotesRepo = notes.NewMemoryRepo()
	}

	app.DocumentsService = &documents.Service{
		Gateway:       app.Gateway,
		Repo:          app.DocumentsRepo,
		Queue:         app.Queue,
		TicketTTL:     app.Config.DocumentTicketTTL,
		VerifyUploads: app.Config.VerifyUploads,
		ConfirmWindow: confirmWindow(app.Config.DocumentTicketTTL, app.Config.OrphanGracePeriod),
	}
	app.UsersService = users.NewService(app.UsersRepo)
	app.JobsService = jobs.NewService(app.JobsRepo)
	app.ApplicationsService = applications.NewService(app.ApplicationsRepo)
	app.ApplicationsService.Users = app.UsersService
	app.InterviewsService = interviews.NewService(app.InterviewsRepo)
	app.NotesService = notes.NewService(app.NotesRepo)
	app.DashboardService = &dashboard.Service{
		Applications: app.ApplicationsService,
		Interviews:   app.InterviewsService,
		Notes:        app.NotesService,
		Documents:    app.DocumentsRepo,
	}

	// A nil *sql.DB must not reach the Pinger interface.
	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.HealthService = health.NewService(pinger, app.Config.ObjectStoreType)

	app.Sweeper = &workerproc.Sweeper{
		Keys:    app.DocumentsRepo,
		Gateway: app.Gateway,
		Grace:   app.Config.OrphanGracePeriod,
	}
}

// confirmWindow keeps the confirm deadline strictly inside the sweeper grace
// period so a key is never confirmable and sweepable at the same time.
func confirmWindow(ttl, grace time.Duration) time.Duration {
	window := object.TTLOrDefault(ttl) + documents.DefaultConfirmMargin
	if grace <= 0 || window < grace {
		return window
	}
	clamped := grace - grace/4
	telemetry.Warn("bootstrap.confirm_window.clamped", map[string]any{
		"ticket_ttl":   ttl.String(),
		"grace_period": grace.String(),
		"window":       clamped.String(),
	})
	return clamped
}

func routerDeps(app *App) server.RouterDeps {
	deps := server.RouterDeps{
		Config: app.Config,
		Handlers: []server.RouteRegistrar{
			health.NewHandler(app.HealthService),
			documents.NewHandler(app.DocumentsService),
			users.NewHandler(app.UsersService),
			jobs.NewHandler(app.JobsService),
			applications.NewHandler(app.ApplicationsService),
			interviews.NewHandler(app.InterviewsService),
			notes.NewHandler(app.NotesService),
			dashboard.NewHandler(app.DashboardService),
		},
	}
	if app.LocalStore != nil {
		deps.Objects = &localstore.Handler{Store: app.LocalStore}
	}
	return deps
}

// Close releases the database pool when one was opened outside Lambda.
func (a *App) Close() error {
	if a == nil || a.DB == nil || db.IsLambdaRuntime() {
		return nil
	}
	return a.DB.Close()
}
