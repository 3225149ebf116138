package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices travel as JSON numbers, the same shape clients send them in.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups pizzas on the menu
type Category string

const (
	CategoryVegetarian    Category = "Vegetarian"
	CategoryNonVegetarian Category = "Non-Vegetarian"
	CategoryVegan         Category = "Vegan"
	CategorySpecialty     Category = "Specialty"
	CategoryOther         Category = "Other"
)

// Valid reports whether c is one of the known menu categories
func (c Category) Valid() bool {
	switch c {
	case CategoryVegetarian, CategoryNonVegetarian, CategoryVegan, CategorySpecialty, CategoryOther:
		return true
	}
	return false
}

// DefaultSizes is used when a pizza is created without explicit sizes
var DefaultSizes = []string{"Small", "Medium", "Large"}

var (
	ErrPizzaNameRequired = errors.New("pizza name is required")
	ErrInvalidCategory   = errors.New("invalid pizza category")
	ErrNoSizes           = errors.New("pizza must declare at least one size")
	ErrMissingSizePrice  = errors.New("every size must have a price")
	ErrNonPositivePrice  = errors.New("prices must be greater than zero")
)

// PriceMap maps a size label to its unit price.
// Stored as a JSON document column.
type PriceMap map[string]decimal.Decimal

// NewPriceMap builds a PriceMap and checks that every size in sizes has a positive price
func NewPriceMap(sizes []string, prices map[string]decimal.Decimal) (PriceMap, error) {
	pm := make(PriceMap, len(prices))
	for size, price := range prices {
		pm[size] = price
	}
	if err := pm.Covers(sizes); err != nil {
		return nil, err
	}
	return pm, nil
}

// Covers checks the price map invariant against the declared sizes
func (pm PriceMap) Covers(sizes []string) error {
	if len(sizes) == 0 {
		return ErrNoSizes
	}
	for _, size := range sizes {
		price, ok := pm[size]
		if !ok {
			return fmt.Errorf("%w: no price for size %q", ErrMissingSizePrice, size)
		}
		if !price.IsPositive() {
			return fmt.Errorf("%w: size %q", ErrNonPositivePrice, size)
		}
	}
	return nil
}

// PriceFor returns the unit price for size
func (pm PriceMap) PriceFor(size string) (decimal.Decimal, bool) {
	price, ok := pm[size]
	return price, ok
}

// Value implements driver.Valuer
func (pm PriceMap) Value() (driver.Value, error) {
	if pm == nil {
		return "{}", nil
	}
	b, err := json.Marshal(pm)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (pm *PriceMap) Scan(value interface{}) error {
	return scanJSON(value, pm)
}

// StringList is an ordered list of strings stored as a JSON column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Pizza represents a pizza on the menu with a price per size
type Pizza struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"uniqueIndex;not null"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Price        PriceMap   `json:"price" gorm:"type:text;not null" swaggertype:"object,number"`
	Category     Category   `json:"category" gorm:"default:'Other'" swaggertype:"string"`
	Toppings     StringList `json:"toppings" gorm:"type:text" swaggertype:"array,string"`
	Sizes        StringList `json:"sizes" gorm:"type:text" swaggertype:"array,string"`
	IsVegetarian bool       `json:"isVegetarian"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewPizza builds a pizza, applying defaults and enforcing the size/price invariant
func NewPizza(name, description, image string, prices map[string]decimal.Decimal, category Category, toppings, sizes []string, vegetarian bool) (*Pizza, error) {
	if len(sizes) == 0 {
		sizes = append([]string(nil), DefaultSizes...)
	}
	if category == "" {
		category = CategoryOther
	}
	if toppings == nil {
		toppings = []string{}
	}
	pm, err := NewPriceMap(sizes, prices)
	if err != nil {
		return nil, err
	}
	p := &Pizza{
		Name:         strings.TrimSpace(name),
		Description:  description,
		Image:        image,
		Price:        pm,
		Category:     category,
		Toppings:     toppings,
		Sizes:        sizes,
		IsVegetarian: vegetarian,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the pizza invariants
func (p *Pizza) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrPizzaNameRequired
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, p.Category)
	}
	return p.Price.Covers(p.Sizes)
}

// BeforeSave keeps invalid pizzas out of storage
func (p *Pizza) BeforeSave(tx *gorm.DB) error {
	return p.Validate()
}
