package app

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/anonto42/nano-midea/socialgraph/pkg/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired services for one process
type App struct {
	Config   *config.Config
	Users    *services.UserService
	Graph    *services.SocialGraph
	Feed     *services.FeedAssembler
	Content  *services.ContentService
	Messages *services.MessageService

	db     *config.DB
	logger *zap.Logger
}

// Migrate creates or updates the PostgreSQL tables
func Migrate(pgdb *gorm.DB) error {
	return pgdb.AutoMigrate(
		&models.User{},
		&models.Relationship{},
		&models.Micropost{},
		&models.Message{},
	)
}

// New connects to the configured stores, migrates them and injects
// dependencies into the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := config.InitDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db.Postgres); err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Debug("PostgreSQL auto-migrations completed")

	app, err := Wire(ctx, cfg, db, logger)
	if err != nil {
		db.CloseDB()
		return nil, err
	}
	return app, nil
}

// Wire builds the repositories for the selected backends and the services on
// top of them.
func Wire(ctx context.Context, cfg *config.Config, db *config.DB, logger *zap.Logger) (*App, error) {
	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	messageRepo := repositories.NewPostgresMessageRepository(db.Postgres)
	tx := repositories.NewGormTransactor(db.Postgres)

	relationships, err := relationshipStore(ctx, cfg, db)
	if err != nil {
		return nil, err
	}
	logger.Debug("Relationship store configured", zap.String("backend", cfg.GraphBackend))

	content, err := contentRepository(ctx, cfg, db)
	if err != nil {
		return nil, err
	}
	logger.Debug("Content store configured", zap.String("backend", cfg.ContentBackend))

	// --- Initialize Services ---
	directory := services.UserDirectoryFunc(userRepo.Exists)
	pages := services.FeedOptions{
		DefaultPageSize: cfg.FeedDefaultPageSize,
		MaxPageSize:     cfg.FeedMaxPageSize,
	}

	var graphUsers services.UserDirectory
	if cfg.GraphBackend != config.BackendPostgres {
		// PostgreSQL checks users through foreign keys; other backends cannot.
		graphUsers = directory
	}
	graph := services.NewSocialGraph(relationships, graphUsers, logger.Named("graph"))

	return &App{
		Config: cfg,
		Graph:  graph,
		Feed:   services.NewFeedAssembler(graph, content, pages, logger.Named("feed")),
		Users: services.NewUserService(services.UserServiceDeps{
			Users:      userRepo,
			Graph:      graph,
			Content:    content,
			Messages:   messageRepo,
			Tx:         tx,
			BcryptCost: cfg.BcryptCost,
			Pages:      pages,
			Logger:     logger.Named("users"),
		}),
		Content:  services.NewContentService(content, directory, logger.Named("content")),
		Messages: services.NewMessageService(messageRepo, directory, pages, logger.Named("messages")),
		db:       db,
		logger:   logger,
	}, nil
}

func relationshipStore(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.RelationshipStore, error) {
	switch cfg.GraphBackend {
	case config.BackendNeo4j:
		store := repositories.NewNeo4jRelationshipStore(db.Neo4j)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare Neo4j schema: %w", err)
		}
		return store, nil
	default:
		return repositories.NewPostgresRelationshipStore(db.Postgres), nil
	}
}

func contentRepository(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.ContentRepository, error) {
	switch cfg.ContentBackend {
	case config.BackendMongo:
		repo := repositories.NewMongoPostRepository(db.Mongo)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare MongoDB indexes: %w", err)
		}
		return repo, nil
	default:
		return repositories.NewPostgresMicropostRepository(db.Postgres), nil
	}
}

// Close releases the database connections
func (a *App) Close() {
	if a.db != nil {
		a.db.CloseDB()
	}
}
