package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/pricing"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	log "github.com/sirupsen/logrus"
)

// OrderService places orders and drives their lifecycle
type OrderService interface {
	CreateOrder(ctx context.Context, p auth.Principal, req models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, p auth.Principal, id uint) (*models.Order, error)
	ListMyOrders(ctx context.Context, p auth.Principal) ([]models.Order, error)
	ListAllOrders(ctx context.Context, p auth.Principal) ([]models.Order, error)
	UpdateStatus(ctx context.Context, p auth.Principal, id uint, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orders     repository.OrderRepository
	reconciler *pricing.Reconciler
	now        func() time.Time
}

// NewOrderService prices orders against catalog
func NewOrderService(orders repository.OrderRepository, catalog pricing.Catalog) OrderService {
	return &orderService{
		orders:     orders,
		reconciler: pricing.NewReconciler(catalog),
		now:        time.Now,
	}
}

// validateOrderRequest repeats the binding rules so the service is safe to
// call without gin in front of it
func validateOrderRequest(req models.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for i, item := range req.Items {
		if item.PizzaID == 0 {
			return fmt.Errorf("%w: item %d: pizzaId is required", ErrValidation, i)
		}
		if strings.TrimSpace(item.SelectedSize) == "" {
			return fmt.Errorf("%w: item %d: selectedSize is required", ErrValidation, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d: quantity must be at least 1", ErrValidation, i)
		}
	}

	addr := req.ShippingAddress
	if addr == nil {
		return fmt.Errorf("%w: shipping address is required", ErrValidation)
	}
	fields := map[string]string{
		"name":    addr.Name,
		"email":   addr.Email,
		"address": addr.Address,
		"city":    addr.City,
		"zip":     addr.Zip,
		"phone":   addr.Phone,
	}
	for _, field := range []string{"name", "email", "address", "city", "zip", "phone"} {
		if strings.TrimSpace(fields[field]) == "" {
			return fmt.Errorf("%w: shippingAddress.%s is required", ErrValidation, field)
		}
	}

	switch req.PaymentMethod {
	case models.PaymentCard, models.PaymentCash:
	default:
		return fmt.Errorf("%w: paymentMethod must be card or cash", ErrValidation)
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, p auth.Principal, req models.CreateOrderRequest) (*models.Order, error) {
	if p.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, pricing.Line{
			PizzaID:      item.PizzaID,
			SelectedSize: item.SelectedSize,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}

	quote, err := s.reconciler.Reconcile(ctx, lines)
	if err != nil {
		return nil, err
	}

	userID := p.UserID
	order := &models.Order{
		UserID:          &userID,
		Items:           quote.Items,
		ShippingAddress: *req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        quote.Subtotal,
		DeliveryFee:     quote.DeliveryFee,
		Tax:             quote.Tax,
		TotalAmount:     quote.Total,
		Status:          models.OrderStatusPending,
		OrderDate:       s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	fields := log.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"items":    len(order.Items),
		"total":    order.TotalAmount.StringFixed(2),
	}
	if req.TotalAmount != nil && !req.TotalAmount.Equal(order.TotalAmount) {
		fields["client_total"] = req.TotalAmount.String()
	}
	if quote.Adjusted > 0 {
		fields["adjusted_lines"] = quote.Adjusted
	}
	log.WithFields(fields).Info("Order created")

	return order, nil
}

func (s *orderService) load(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	if p.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanReadOrder(p, order); err != nil {
		log.WithFields(log.Fields{"order_id": id, "user_id": p.UserID}).Warn("Order access denied")
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	if p.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	orders, err := s.orders.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	if err := auth.CanManageOrders(p); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, p auth.Principal, id uint, status models.OrderStatus) (*models.Order, error) {
	if err := auth.CanManageOrders(p); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if previous.Terminal() && previous != status {
		log.WithFields(log.Fields{
			"order_id": id,
			"from":     previous,
			"to":       status,
		}).Warn("Order leaving a terminal status")
	}

	order.ApplyStatus(status, s.now())
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	log.WithFields(log.Fields{"order_id": id, "from": previous, "to": status}).Info("Order status updated")
	return order, nil
}
