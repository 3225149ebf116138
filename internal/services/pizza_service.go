package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/cache"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	log "github.com/sirupsen/logrus"
)

// catalogPrefix namespaces every cached catalog response
const catalogPrefix = "catalog:"

// PizzaService provides methods to read and manage the catalog
type PizzaService interface {
	// ListPizzas returns the catalog, optionally filtered
	ListPizzas(ctx context.Context, filter repository.PizzaFilter) ([]models.Pizza, error)
	// GetPizza returns one pizza or ErrPizzaNotFound
	GetPizza(ctx context.Context, id uint) (*models.Pizza, error)
	// FindPizza reads straight from storage; used for checkout pricing
	FindPizza(ctx context.Context, id uint) (*models.Pizza, error)
	CreatePizza(ctx context.Context, req models.PizzaRequest) (*models.Pizza, error)
	UpdatePizza(ctx context.Context, id uint, req models.PizzaUpdateRequest) (*models.Pizza, error)
	DeletePizza(ctx context.Context, id uint) error
	// SeedCatalog inserts pizzas whose name is not yet taken
	SeedCatalog(ctx context.Context, seed []models.PizzaRequest) (int, error)
}

type pizzaService struct {
	repo  repository.PizzaRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewPizzaService creates a PizzaService. A nil cache disables caching.
func NewPizzaService(repo repository.PizzaRepository, c cache.Cache, ttl time.Duration) PizzaService {
	if c == nil {
		c = cache.Noop{}
	}
	return &pizzaService{repo: repo, cache: c, ttl: ttl}
}

func listKey(f repository.PizzaFilter) string {
	veg := "any"
	if f.Vegetarian != nil {
		veg = strconv.FormatBool(*f.Vegetarian)
	}
	return fmt.Sprintf("%slist:%s:%s:%s", catalogPrefix, f.Category, veg, f.Search)
}

func pizzaKey(id uint) string {
	return fmt.Sprintf("%spizza:%d", catalogPrefix, id)
}

// cached runs load on a miss and stores its JSON. Cache failures only log.
func cached[T any](ctx context.Context, s *pizzaService, key string, load func() (T, error)) (T, error) {
	var out T
	if raw, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		log.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			log.WithError(err).WithField("key", key).Warn("Catalog cache write failed")
		}
	}
	return out, nil
}

func (s *pizzaService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, catalogPrefix); err != nil {
		log.WithError(err).Warn("Catalog cache invalidation failed")
	}
}

func (s *pizzaService) ListPizzas(ctx context.Context, filter repository.PizzaFilter) ([]models.Pizza, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, filter.Category)
	}
	return cached(ctx, s, listKey(filter), func() ([]models.Pizza, error) {
		pizzas, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if pizzas == nil {
			pizzas = []models.Pizza{}
		}
		return pizzas, nil
	})
}

func (s *pizzaService) GetPizza(ctx context.Context, id uint) (*models.Pizza, error) {
	return cached(ctx, s, pizzaKey(id), func() (*models.Pizza, error) {
		return s.FindPizza(ctx, id)
	})
}

func (s *pizzaService) FindPizza(ctx context.Context, id uint) (*models.Pizza, error) {
	pizza, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPizzaNotFound
		}
		return nil, err
	}
	return pizza, nil
}

func (s *pizzaService) CreatePizza(ctx context.Context, req models.PizzaRequest) (*models.Pizza, error) {
	pizza, err := models.NewPizza(req.Name, req.Description, req.Image, req.Price, req.Category, req.Toppings, req.Sizes, req.IsVegetarian)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.repo.Create(ctx, pizza); err != nil {
		return nil, s.writeError(err)
	}
	s.invalidate(ctx)

	log.WithFields(log.Fields{"pizza_id": pizza.ID, "name": pizza.Name}).Info("Pizza created")
	return pizza, nil
}

func (s *pizzaService) UpdatePizza(ctx context.Context, id uint, req models.PizzaUpdateRequest) (*models.Pizza, error) {
	pizza, err := s.FindPizza(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		pizza.Name = *req.Name
	}
	if req.Description != nil {
		pizza.Description = *req.Description
	}
	if req.Image != nil {
		pizza.Image = *req.Image
	}
	if req.Category != nil {
		pizza.Category = *req.Category
	}
	if req.Toppings != nil {
		pizza.Toppings = req.Toppings
	}
	if req.Sizes != nil {
		pizza.Sizes = req.Sizes
	}
	if req.Price != nil {
		pizza.Price = models.PriceMap(req.Price)
	}
	if req.IsVegetarian != nil {
		pizza.IsVegetarian = *req.IsVegetarian
	}

	if err := pizza.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.repo.Update(ctx, pizza); err != nil {
		return nil, s.writeError(err)
	}
	s.invalidate(ctx)

	log.WithFields(log.Fields{"pizza_id": pizza.ID, "name": pizza.Name}).Info("Pizza updated")
	return pizza, nil
}

func (s *pizzaService) DeletePizza(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPizzaNotFound
		}
		return err
	}
	s.invalidate(ctx)

	log.WithField("pizza_id", id).Info("Pizza deleted")
	return nil
}

func (s *pizzaService) SeedCatalog(ctx context.Context, seed []models.PizzaRequest) (int, error) {
	created := 0
	for _, req := range seed {
		if _, err := s.repo.GetByName(ctx, req.Name); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}
		if _, err := s.CreatePizza(ctx, req); err != nil {
			return created, fmt.Errorf("seed %q: %w", req.Name, err)
		}
		created++
	}
	return created, nil
}

func (s *pizzaService) writeError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrPizzaNameTaken
	}
	return err
}
