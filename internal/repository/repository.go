package repository

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken
	ErrDuplicate = errors.New("duplicate record")
)

// PizzaFilter narrows catalog listings
type PizzaFilter struct {
	Category   models.Category
	Search     string
	Vegetarian *bool
}

// PizzaRepository persists catalog entries
type PizzaRepository interface {
	List(ctx context.Context, f PizzaFilter) ([]models.Pizza, error)
	GetByID(ctx context.Context, id uint) (*models.Pizza, error)
	GetByName(ctx context.Context, name string) (*models.Pizza, error)
	Create(ctx context.Context, p *models.Pizza) error
	Update(ctx context.Context, p *models.Pizza) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// OrderRepository persists orders together with their items
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, o *models.Order) error
}

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// ClientRepository persists OAuth service clients
type ClientRepository interface {
	Create(ctx context.Context, c *models.OAuthClient) error
	GetByID(ctx context.Context, id string) (*models.OAuthClient, error)
	ListByUser(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	Delete(ctx context.Context, id string, userID uint) error
}
