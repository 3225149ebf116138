package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-pizza-shop/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/cache"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/config"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/controllers"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/database"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/routes"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:generate swag init --dir ../ --generalInfo cmd/main.go --output ../docs

// @title Pizza Shop API
// @version 1.0
// @description Pizza storefront: catalog, checkout with server side pricing and order tracking
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db := setupDatabase(ctx, configuration)

	catalogCache, closeCache := cache.Connect(ctx, configuration.RedisURL)
	defer func() {
		if err := closeCache(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}()

	// Repositories, services and controllers
	pizzaRepo := repository.NewPizzaRepository(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)

	issuer := auth.NewTokenIssuer(configuration.JWTSecret, configuration.JWTExpiresIn)
	pizzaService := services.NewPizzaService(pizzaRepo, catalogCache, configuration.CatalogCacheTTL)
	orderService := services.NewOrderService(repository.NewOrderRepository(db), pizzaService)
	userService := services.NewUserService(userRepo, issuer)
	clientService := services.NewClientService(clientRepo)

	bootstrapData(ctx, configuration, pizzaService, userService)

	router := routes.NewRouter(routes.Handlers{
		Pizzas:  controllers.NewPizzaController(pizzaService),
		Orders:  controllers.NewOrderController(orderService),
		Auth:    controllers.NewAuthController(userService),
		Clients: controllers.NewClientController(clientService),
		OAuth:   auth.NewOAuthService(db, userRepo, clientRepo, configuration.JWTSecret),
		Ping:    pinger(db),
	}, []byte(configuration.JWTSecret), configuration.CORSOrigins)

	srv := &http.Server{
		Addr:              configuration.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL overrides the environment default.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "development")))
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.WithField("log_level", raw).Warn("Unknown LOG_LEVEL, keeping environment default")
			return
		}
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates the schema and returns the gorm.DB instance
func setupDatabase(ctx context.Context, conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(ctx, conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// bootstrapData seeds the catalog and the admin account. Failures are logged
// and the server still starts.
func bootstrapData(ctx context.Context, conf *config.Config, pizzas services.PizzaService, users services.UserService) {
	if conf.SeedCatalog {
		created, err := pizzas.SeedCatalog(ctx, database.DefaultCatalog())
		if err != nil {
			log.WithError(err).Error("Failed to seed catalog")
		} else if created > 0 {
			log.WithField("pizzas", created).Info("Catalog seeded")
		} else {
			log.Info("Catalog already seeded")
		}
	}

	if conf.AdminEmail != "" {
		if _, err := users.EnsureAdmin(ctx, conf.AdminName, conf.AdminEmail, conf.AdminPassword); err != nil {
			log.WithError(err).Error("Failed to create admin user")
		}
	}
}

func pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
