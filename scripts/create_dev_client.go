package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/config"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/database"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Creates an OAuth client for local testing of the client_credentials grant.
// The client acts with the role of its owner, so an admin owned client can
// list orders and move them through the kitchen.
func main() {
	role := flag.String("role", "admin", "Owner role (admin or user)")
	email := flag.String("email", "", "Owner email, defaults to <role>@pizza.com")
	password := flag.String("password", "changeme", "Owner password when the account is created")
	flag.Parse()

	if !models.Role(*role).Valid() {
		log.Fatalf("Unknown role %q", *role)
	}
	if *email == "" {
		*email = fmt.Sprintf("%s@pizza.com", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx := context.Background()
	db, err := database.InitDatabase(ctx, conf.Database())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	users := services.NewUserService(repository.NewUserRepository(db), auth.NewTokenIssuer(conf.JWTSecret, conf.JWTExpiresIn))

	owner, err := ownerForRole(ctx, users, models.Role(*role), *email, *password)
	if err != nil {
		log.WithError(err).Fatal("Failed to get owner account")
	}

	created, err := services.NewClientService(repository.NewClientRepository(db)).CreateClient(ctx, owner.ID, models.ClientRequest{
		Name:   fmt.Sprintf("Development %s client", *role),
		Domain: "http://localhost",
		Scopes: "orders",
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("Development OAuth client created for %s (user %d, role %s)\n", owner.Email, owner.ID, owner.Role)
	fmt.Printf("Client ID: %s\n", created.Client.ID)
	fmt.Printf("Client Secret: %s\n", created.Secret)
	fmt.Println("\nRequest a token with:")
	fmt.Printf("curl -X POST http://%s/api/oauth/token \\\n", conf.Address())
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", created.Client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", created.Secret)
}

// ownerForRole finds or creates the account that will own the client
func ownerForRole(ctx context.Context, users services.UserService, role models.Role, email, password string) (*models.User, error) {
	if role == models.RoleAdmin {
		return users.EnsureAdmin(ctx, "Development Admin", email, password)
	}

	payload, err := users.Register(ctx, models.RegisterRequest{Name: "Development User", Email: email, Password: password})
	if errors.Is(err, services.ErrUserExists) {
		payload, err = users.Login(ctx, models.LoginRequest{Email: email, Password: password})
	}
	if err != nil {
		return nil, err
	}
	return payload.User, nil
}
