package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"pipeline-backend/internal/actors"
	"pipeline-backend/internal/behavior"
	"pipeline-backend/internal/config"
	"pipeline-backend/internal/deadlines"
	"pipeline-backend/internal/dealhealth"
	"pipeline-backend/internal/engine"
	"pipeline-backend/internal/notify"
	"pipeline-backend/internal/server"
	sharedredis "pipeline-backend/internal/shared/redis"
	"pipeline-backend/internal/shared/storage/db"
	"pipeline-backend/internal/submissions"
)

// App holds shared dependencies for the api and worker binaries.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	ActorsRepo      actors.Repo
	SubmissionsRepo submissions.Repo
	DeadlinesRepo   deadlines.Repo
	RulesRepo       deadlines.RulesRepo
	HealthRepo      dealhealth.Repo

	Notifier notify.Notifier
	Locker   *sharedredis.Locker

	SubmissionsService *submissions.Service
	DeadlinesService   *deadlines.Service
	BehaviorService    *behavior.Service
	EngineService      *engine.Service

	closers []func() error
}

// Options tune how Build assembles the app.
type Options struct {
	// DBOptions sets the connection pool profile; the worker uses a smaller
	// one than the api server.
	DBOptions db.Options
	// WithRouter attaches the HTTP surface. The worker skips it.
	WithRouter bool
}

// Build prepares shared dependencies.
func Build(cfg config.Config, opts Options) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg, opts.DBOptions)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	if err := buildNotifier(app); err != nil {
		return nil, err
	}
	buildLocker(app)
	buildRepos(app)
	buildServices(app)

	if opts.WithRouter {
		app.Router = server.NewEngine(cfg, server.Handlers{
			Actors:      actors.NewHandler(app.ActorsRepo),
			Submissions: submissions.NewHandler(app.SubmissionsService),
			Deadlines:   deadlines.NewHandler(app.DeadlinesService),
			Behavior:    behavior.NewHandler(app.BehaviorService),
			Engine:      engine.NewHandler(app.EngineService, app.HealthRepo),
		})
	}
	return app, nil
}

// Close releases held resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("bootstrap: close: %v", err)
		}
	}
}

func buildDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(opts))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildNotifier(app *App) error {
	if len(app.Config.KafkaBrokers) == 0 {
		app.Notifier = notify.LogSink{}
		return nil
	}
	emitter, err := notify.NewKafkaEmitter(notify.KafkaEmitterConfig{
		Brokers: app.Config.KafkaBrokers,
		Topic:   app.Config.KafkaTopic,
	})
	if err != nil {
		return fmt.Errorf("build kafka emitter: %w", err)
	}
	app.Notifier = emitter
	app.closers = append(app.closers, emitter.Close)
	return nil
}

func buildLocker(app *App) {
	if strings.TrimSpace(app.Config.RedisAddr) == "" {
		return
	}
	client := goredis.NewClient(&goredis.Options{Addr: app.Config.RedisAddr})
	app.Locker = sharedredis.NewLocker(client, "pipeline:")
	app.closers = append(app.closers, client.Close)
}

func buildRepos(app *App) {
	if app.DB != nil {
		app.ActorsRepo = &actors.PGRepo{DB: app.DB}
		app.SubmissionsRepo = &submissions.PGRepo{DB: app.DB}
		app.DeadlinesRepo = &deadlines.PGRepo{DB: app.DB}
		app.RulesRepo = &deadlines.PGRulesRepo{DB: app.DB}
		app.HealthRepo = &dealhealth.PGRepo{DB: app.DB}
		return
	}
	app.ActorsRepo = actors.NewMemoryRepo()
	app.SubmissionsRepo = submissions.NewMemoryRepo()
	app.DeadlinesRepo = deadlines.NewMemoryRepo()
	app.RulesRepo = deadlines.NewMemoryRulesRepo()
	app.HealthRepo = dealhealth.NewMemoryRepo()
}

func buildServices(app *App) {
	var scores behavior.ScoresRepo
	var observations behavior.ObservationsRepo
	if app.DB != nil {
		scores = &behavior.PGScoresRepo{DB: app.DB}
		observations = &behavior.PGObservationsRepo{DB: app.DB}
	} else {
		scores = behavior.NewMemoryScoresRepo()
		observations = behavior.NewMemoryObservationsRepo()
	}

	app.SubmissionsService = &submissions.Service{Repo: app.SubmissionsRepo}
	app.DeadlinesService = &deadlines.Service{
		Deadlines: app.DeadlinesRepo,
		Rules:     app.RulesRepo,
	}
	app.BehaviorService = &behavior.Service{
		Scores:       scores,
		Observations: observations,
		Deadlines:    app.DeadlinesRepo,
	}
	app.EngineService = &engine.Service{
		Submissions: app.SubmissionsRepo,
		Deadlines:   app.DeadlinesRepo,
		Machine: &deadlines.Machine{
			Deadlines: app.DeadlinesRepo,
			Rules:     app.RulesRepo,
			Actors:    app.ActorsRepo,
			Notifier:  app.Notifier,
		},
		Behavior:           app.BehaviorService,
		Health:             app.HealthRepo,
		Concurrency:        app.Config.EvaluationConcurrency,
		CompletionLookback: app.Config.CompletionLookback,
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
