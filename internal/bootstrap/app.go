package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"insight-backend/internal/analyses"
	googleauth "insight-backend/internal/auth"
	"insight-backend/internal/boards"
	"insight-backend/internal/dialogues"
	"insight-backend/internal/documents"
	"insight-backend/internal/insight"
	"insight-backend/internal/llm/ollama"
	"insight-backend/internal/services/health"
	"insight-backend/internal/shared/config"
	"insight-backend/internal/shared/server"
	"insight-backend/internal/shared/storage/db"
	"insight-backend/internal/shared/storage/object"
	localstore "insight-backend/internal/shared/storage/object/local"
	s3store "insight-backend/internal/shared/storage/object/s3"
	"insight-backend/internal/users"
)

// App holds the wired dependencies for one process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Analyzer *insight.Analyzer
	Queue    *insight.Queue

	DocumentsRepo documents.DocumentsRepo
	AnalysesRepo  analyses.Repo
	BoardsRepo    boards.Repo
	DialoguesRepo dialogues.Repo
	UsersRepo     users.Repo

	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	BoardsService    *boards.Service
	DialoguesService *dialogues.Service
	UsersService     *users.Service

	DocumentsHandler *documents.Handler
	AnalysesHandler  *analyses.Handler
	BoardsHandler    *boards.Handler
	DialoguesHandler *dialogues.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares all dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analyzer := buildAnalyzer(cfg)
	queue := insight.NewQueue(analyzer, cfg.AIMaxConcurrent)

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Analyzer: analyzer,
		Queue:    queue,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Health:           health.NewService(),
		DocumentsHandler: app.DocumentsHandler,
		AnalysesHandler:  app.AnalysesHandler,
		BoardsHandler:    app.BoardsHandler,
		DialoguesHandler: app.DialoguesHandler,
		UsersHandler:     app.UsersHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

// Close drains the queue and releases connections.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildAnalyzer(cfg config.Config) *insight.Analyzer {
	insightCfg := insight.Config{
		BaseURL:     cfg.OllamaBaseURL,
		APIKey:      cfg.OllamaAPIKey,
		Timeout:     time.Duration(cfg.AITimeoutMs) * time.Millisecond,
		UseMockData: cfg.AIUseMock,
	}

	var gen insight.Generator
	if !cfg.AIUseMock {
		gen = ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaAPIKey, insightCfg.Timeout)
	}
	return insight.NewAnalyzer(gen, insightCfg)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	var boardRepo boards.Repo
	var dialogueRepo dialogues.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		boardRepo = &boards.PGRepo{DB: app.DB}
		dialogueRepo = &dialogues.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		boardRepo = boards.NewMemoryRepo()
		dialogueRepo = dialogues.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}

	analysisSvc := analyses.NewService(analysisRepo, app.Queue, app.Analyzer, docSvc)
	analysisSvc.DefaultModel = app.Config.OllamaModel
	boardSvc := boards.NewService(boardRepo)
	dialogueSvc := dialogues.NewService(dialogueRepo)
	userSvc := users.NewService(userRepo)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.BoardsRepo = boardRepo
	app.DialoguesRepo = dialogueRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.BoardsService = boardSvc
	app.DialoguesService = dialogueSvc
	app.UsersService = userSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysesHandler = analyses.NewHandler(analysisSvc)
	app.BoardsHandler = boards.NewHandler(boardSvc)
	app.DialoguesHandler = dialogues.NewHandler(dialogueSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
}
