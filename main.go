package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/auth"
	"github.com/axis-inc/goal-engine/pkg/config"
	"github.com/axis-inc/goal-engine/pkg/database"
	"github.com/axis-inc/goal-engine/pkg/handlers"
	"github.com/axis-inc/goal-engine/pkg/logging"
	"github.com/axis-inc/goal-engine/pkg/middleware"
	"github.com/axis-inc/goal-engine/pkg/repositories"
	"github.com/axis-inc/goal-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.String("migrations_path", cfg.MigrationsPath))

	ctx := context.Background()

	// Migrations run over database/sql; the serving pool is pgx-native.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)
	ownerMiddleware := database.WithOwnerContext(db, logger)

	goalTypeRepo := repositories.NewGoalTypeRepository()
	defRepo := repositories.NewCustomFieldDefinitionRepository()
	goalRepo := repositories.NewGoalRepository()
	answerRepo := repositories.NewCustomFieldAnswerRepository()

	renumberer := services.NewLevelRenumberer(goalTypeRepo, logger)
	validator := services.NewSchemaValidator(defRepo, logger)
	goalTypeService := services.NewGoalTypeService(goalTypeRepo, defRepo, renumberer, logger)
	fieldService := services.NewCustomFieldDefinitionService(defRepo, goalTypeRepo, logger)
	goalService := services.NewGoalService(goalRepo, goalTypeRepo, answerRepo, validator, logger)
	answerService := services.NewCustomFieldAnswerService(answerRepo, goalRepo, goalTypeRepo, defRepo, validator, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewGoalTypesHandler(goalTypeService, logger).RegisterRoutes(mux, authMiddleware, ownerMiddleware)
	handlers.NewCustomFieldsHandler(fieldService, logger).RegisterRoutes(mux, authMiddleware, ownerMiddleware)
	handlers.NewGoalsHandler(goalService, logger).RegisterRoutes(mux, authMiddleware, ownerMiddleware)
	handlers.NewCustomFieldAnswersHandler(answerService, logger).RegisterRoutes(mux, authMiddleware, ownerMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting goal-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
