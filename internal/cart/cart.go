// Package cart is the client side cart accumulator used by pizzactl.
// It never talks to the server; prices in it are only the client's belief
// and are re-derived at checkout.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/shopspring/decimal"
)

// Item is one cart line. ID is derived from PizzaID and SelectedSize.
type Item struct {
	ID           string          `json:"id"`
	PizzaID      uint            `json:"pizzaId"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	SelectedSize string          `json:"selectedSize"`
}

// ItemID is the line id for a pizza in a given size. The size is escaped,
// never folded, so distinct labels keep distinct ids.
func ItemID(pizzaID uint, size string) string {
	return fmt.Sprintf("%d-%s", pizzaID, url.PathEscape(size))
}

// Cart keeps items in insertion order together with their aggregates
type Cart struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// New returns an empty cart
func New() *Cart {
	return &Cart{Items: []Item{}}
}

func (c *Cart) index(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// line finds the entry for pizzaID in exactly size
func (c *Cart) line(pizzaID uint, size string) int {
	for i := range c.Items {
		if c.Items[i].PizzaID == pizzaID && c.Items[i].SelectedSize == size {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	c.TotalItems = 0
	c.TotalPrice = decimal.Zero
	for _, item := range c.Items {
		c.TotalItems += item.Quantity
		c.TotalPrice = c.TotalPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
}

// Add merges item into the line with the same pizza and size, or appends it.
// A merge keeps the existing snapshot and only sums quantities.
func (c *Cart) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.ID = ItemID(item.PizzaID, item.SelectedSize)

	if i := c.line(item.PizzaID, item.SelectedSize); i >= 0 {
		c.Items[i].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}
	c.recompute()
}

// AddPizza snapshots name, image and the catalog price for size
func (c *Cart) AddPizza(p *models.Pizza, size string, quantity int) error {
	price, ok := p.Price.PriceFor(size)
	if !ok {
		return fmt.Errorf("%s is not available in size %q", p.Name, size)
	}
	c.Add(Item{
		PizzaID:      p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Price:        price,
		Quantity:     quantity,
		SelectedSize: size,
	})
	return nil
}

// Remove deletes the line with id; unknown ids are ignored
func (c *Cart) Remove(id string) {
	if i := c.index(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	c.recompute()
}

// UpdateQuantity sets the quantity of a line, never below 1
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if i := c.index(id); i >= 0 {
		c.Items[i].Quantity = quantity
	}
	c.recompute()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.recompute()
}

// Empty reports whether the cart has no lines
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// CheckoutLines converts the cart into the order request items
func (c *Cart) CheckoutLines() []models.OrderLineRequest {
	lines := make([]models.OrderLineRequest, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, models.OrderLineRequest{
			PizzaID:      item.PizzaID,
			SelectedSize: item.SelectedSize,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}
	return lines
}

// Load reads a cart saved by Save. A missing file yields an empty cart.
func Load(path string) (*Cart, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	c := New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", path, err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	// ids and aggregates on disk are never trusted
	for i := range c.Items {
		c.Items[i].ID = ItemID(c.Items[i].PizzaID, c.Items[i].SelectedSize)
	}
	c.recompute()
	return c, nil
}

// Save writes the cart atomically
func (c *Cart) Save(path string) error {
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cart-*.json")
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("save cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
