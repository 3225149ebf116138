package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"gorm.io/gorm"
)

// translate maps gorm errors onto the repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormPizzaRepository struct {
	db *gorm.DB
}

// NewPizzaRepository returns a gorm backed PizzaRepository
func NewPizzaRepository(db *gorm.DB) PizzaRepository {
	return &gormPizzaRepository{db: db}
}

func (r *gormPizzaRepository) List(ctx context.Context, f PizzaFilter) ([]models.Pizza, error) {
	q := r.db.WithContext(ctx).Model(&models.Pizza{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Vegetarian != nil {
		q = q.Where("is_vegetarian = ?", *f.Vegetarian)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(toppings) LIKE ?", like, like, like)
	}
	var pizzas []models.Pizza
	if err := q.Order("id ASC").Find(&pizzas).Error; err != nil {
		return nil, err
	}
	return pizzas, nil
}

func (r *gormPizzaRepository) GetByID(ctx context.Context, id uint) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := r.db.WithContext(ctx).First(&pizza, id).Error; err != nil {
		return nil, translate(err)
	}
	return &pizza, nil
}

func (r *gormPizzaRepository) GetByName(ctx context.Context, name string) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&pizza).Error; err != nil {
		return nil, translate(err)
	}
	return &pizza, nil
}

func (r *gormPizzaRepository) Create(ctx context.Context, p *models.Pizza) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormPizzaRepository) Update(ctx context.Context, p *models.Pizza) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *gormPizzaRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Pizza{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormPizzaRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Pizza{}).Count(&count).Error
	return count, err
}

type gormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository returns a gorm backed OrderRepository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// Create inserts the order and its items in a single transaction
func (r *gormOrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *gormOrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Order("order_date DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus writes only the lifecycle columns
func (r *gormOrderRepository) UpdateStatus(ctx context.Context, o *models.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":       o.Status,
			"delivered_at": o.DeliveredAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm backed UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, u *models.User) error {
	var existing models.User
	if err := r.db.WithContext(ctx).Where("email = ?", u.Email).First(&existing).Error; err == nil {
		return ErrDuplicate
	}
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

type gormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository returns a gorm backed ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &gormClientRepository{db: db}
}

func (r *gormClientRepository) Create(ctx context.Context, c *models.OAuthClient) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormClientRepository) GetByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (r *gormClientRepository) ListByUser(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *gormClientRepository) Delete(ctx context.Context, id string, userID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
