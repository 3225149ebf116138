package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusConfirmed      OrderStatus = "Confirmed"
	OrderStatusPreparing      OrderStatus = "Preparing"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the lifecycle
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentMethod is how the customer pays on delivery or online
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// ShippingAddress is the delivery contact stored with each order
type ShippingAddress struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

// OrderItem is a priced line of an order. Price is always the catalog price.
type OrderItem struct {
	ID           uint            `json:"-" gorm:"primaryKey"`
	OrderID      uint            `json:"-" gorm:"index;not null"`
	PizzaID      uint            `json:"pizzaId" gorm:"not null"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null" swaggertype:"number"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	SelectedSize string          `json:"selectedSize" gorm:"not null"`
}

// LineTotal is price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed order. UserID is nil for guest orders.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          *uint           `json:"userId" gorm:"index"`
	User            *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items           []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"not null" swaggertype:"string"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric(10,2)" swaggertype:"number"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee" gorm:"type:numeric(10,2)" swaggertype:"number"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:numeric(10,2)" swaggertype:"number"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:numeric(10,2);not null" swaggertype:"number"`
	Status          OrderStatus     `json:"status" gorm:"index;not null;default:'Pending'" swaggertype:"string"`
	OrderDate       time.Time       `json:"orderDate" gorm:"index"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OwnedBy reports whether the order belongs to userID
func (o *Order) OwnedBy(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}

// ApplyStatus sets the status and keeps DeliveredAt in step with it.
// Any status is accepted; ordering between states is not enforced.
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	o.Status = status
	if status == OrderStatusDelivered {
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
		return
	}
	o.DeliveredAt = nil
}
