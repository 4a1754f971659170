package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"datalog/internal/actionstore"
	"datalog/internal/config"
	"datalog/internal/database"
	"datalog/internal/datalog"
	"datalog/internal/handlers"
	"datalog/internal/logger"
	"datalog/internal/models"
	"datalog/internal/repository"
	"datalog/internal/server"
	"datalog/internal/services"
	"datalog/internal/validator"
)

//go:generate swag init --dir ../../ --generalInfo cmd/api/main.go --output ../../internal/docs --outputTypes go

// @title           Datalog API
// @version         1.0
// @description     Datalog records every create, update and delete of an audited entity as an action with field-level changes.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an operator token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()
	ctx := context.Background()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	// Action store
	var store actionstore.Store
	switch appConfig.AuditStore {
	case config.AuditStoreMongo:
		client, err := database.ConnectMongo(ctx, appConfig.MongoURI)
		if err != nil {
			return err
		}
		defer func(client *mongo.Client) {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warnf("mongodb disconnect error: %v", err)
			}
		}(client)

		coll := client.Database(appConfig.MongoDatabase).Collection(appConfig.MongoCollection)
		if err := actionstore.EnsureIndexes(ctx, coll); err != nil {
			return err
		}
		store = actionstore.NewMongoStore(coll)
	default:
		store = actionstore.NewGormStore(db)
	}
	log.Infof("Recording actions in the %s store", appConfig.AuditStore)

	// Audit table
	table := &datalog.Table{Routes: datalog.DefaultRoutes(), IDField: datalog.DefaultIDField}
	if appConfig.AuditTableFile != "" {
		table, err = datalog.LoadTable(appConfig.AuditTableFile)
		if err != nil {
			return fmt.Errorf("failed to load audit table: %w", err)
		}
		if err := table.Check(repository.Methods(), &models.Product{}); err != nil {
			return err
		}
		log.Infof("Loaded audit table from %s (%d methods)", appConfig.AuditTableFile, len(table.Routes))
	}

	interceptor := datalog.NewInterceptor(datalog.Config{
		Store:    store,
		Routes:   table.Routes,
		IDField:  table.IDField,
		Operator: datalog.ContextOperator(appConfig.AuditDefaultOperator),
		Logger:   log,
	})

	// Initialize services
	productRepo := repository.NewAudited(repository.NewGormRepository[models.Product](db), interceptor)
	productService := services.NewProductService(productRepo)
	actionService := services.NewActionService(store)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService, actionService)
	actionHandler := handlers.NewActionHandler(actionService)

	validator.Register()
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(server.Handlers{
		Products: productHandler,
		Actions:  actionHandler,
	}, appConfig.JWTSecret)

	log.Infof("Starting Datalog server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
