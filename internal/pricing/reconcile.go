// Package pricing turns client submitted cart lines into authoritative order
// lines and totals. Catalog prices always win over the prices a client sends.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrPizzaNotFound is returned when a line references an unknown pizza
	ErrPizzaNotFound = errors.New("pizza not found")
	// ErrInvalidSize is returned when a line asks for a size the pizza is not priced in
	ErrInvalidSize = errors.New("size not available")
)

var (
	DeliveryFee = decimal.RequireFromString("5.00")
	TaxRate     = decimal.RequireFromString("0.08")
)

// Catalog looks pizzas up by id. It returns ErrPizzaNotFound (or an error
// wrapping it) when the pizza does not exist.
type Catalog interface {
	FindPizza(ctx context.Context, id uint) (*models.Pizza, error)
}

// Line is one submitted cart line
type Line struct {
	PizzaID      uint
	SelectedSize string
	Quantity     int
	Price        decimal.Decimal
}

// Quote is the authoritative result of pricing a set of lines
type Quote struct {
	Items       []models.OrderItem
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	// Adjusted counts lines whose client price was replaced
	Adjusted int
}

// Reconciler prices lines against a Catalog
type Reconciler struct {
	catalog Catalog
}

// NewReconciler creates a Reconciler reading prices from catalog
func NewReconciler(catalog Catalog) *Reconciler {
	return &Reconciler{catalog: catalog}
}

// Reconcile prices every line in submission order. The first failing line
// aborts the whole quote.
func (r *Reconciler) Reconcile(ctx context.Context, lines []Line) (*Quote, error) {
	quote := &Quote{Items: make([]models.OrderItem, 0, len(lines))}
	subtotal := decimal.Zero

	for _, line := range lines {
		pizza, err := r.catalog.FindPizza(ctx, line.PizzaID)
		if err != nil {
			if errors.Is(err, ErrPizzaNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrPizzaNotFound, line.PizzaID)
			}
			return nil, err
		}

		price, ok := pizza.Price.PriceFor(line.SelectedSize)
		if !ok {
			return nil, fmt.Errorf("%w: size %q for %s", ErrInvalidSize, line.SelectedSize, pizza.Name)
		}

		if !price.Equal(line.Price) {
			log.WithFields(log.Fields{
				"pizza_id":     pizza.ID,
				"pizza":        pizza.Name,
				"size":         line.SelectedSize,
				"client_price": line.Price.String(),
				"server_price": price.String(),
			}).Warn("Price mismatch, using catalog price")
			quote.Adjusted++
		}

		item := models.OrderItem{
			PizzaID:      pizza.ID,
			Name:         pizza.Name,
			Image:        pizza.Image,
			Price:        price,
			Quantity:     line.Quantity,
			SelectedSize: line.SelectedSize,
		}
		subtotal = subtotal.Add(item.LineTotal())
		quote.Items = append(quote.Items, item)
	}

	quote.Subtotal = subtotal
	quote.DeliveryFee, quote.Tax, quote.Total = Totals(subtotal)
	return quote, nil
}

// Totals derives the delivery fee, tax and rounded total from a subtotal.
// The total is rounded once, from the unrounded tax.
func Totals(subtotal decimal.Decimal) (fee, tax, total decimal.Decimal) {
	fee = decimal.Zero
	if subtotal.IsPositive() {
		fee = DeliveryFee
	}
	rawTax := subtotal.Mul(TaxRate)
	total = subtotal.Add(fee).Add(rawTax).Round(2)
	return fee, rawTax.Round(2), total
}
