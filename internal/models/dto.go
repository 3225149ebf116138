package models

import "github.com/shopspring/decimal"

// PizzaRequest is the admin payload for creating a pizza
type PizzaRequest struct {
	Name         string                     `json:"name" binding:"required"`
	Description  string                     `json:"description" binding:"required"`
	Image        string                     `json:"image" binding:"required"`
	Price        map[string]decimal.Decimal `json:"price" binding:"required" swaggertype:"object,number"`
	Category     Category                   `json:"category" binding:"required" swaggertype:"string"`
	Toppings     []string                   `json:"toppings"`
	Sizes        []string                   `json:"sizes" binding:"required"`
	IsVegetarian bool                       `json:"isVegetarian"`
}

// PizzaUpdateRequest is a partial update; nil fields keep their current value
type PizzaUpdateRequest struct {
	Name         *string                    `json:"name"`
	Description  *string                    `json:"description"`
	Image        *string                    `json:"image"`
	Price        map[string]decimal.Decimal `json:"price" swaggertype:"object,number"`
	Category     *Category                  `json:"category" swaggertype:"string"`
	Toppings     []string                   `json:"toppings"`
	Sizes        []string                   `json:"sizes"`
	IsVegetarian *bool                      `json:"isVegetarian"`
}

// OrderLineRequest is one cart line as submitted by the client. Price is the
// client's belief and is never trusted.
type OrderLineRequest struct {
	PizzaID      uint            `json:"pizzaId" binding:"required"`
	SelectedSize string          `json:"selectedSize" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	Price        decimal.Decimal `json:"price" swaggertype:"number"`
}

// CreateOrderRequest is the checkout payload
type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress" binding:"required"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" binding:"required,oneof=card cash" swaggertype:"string"`
	// TotalAmount is accepted for compatibility and ignored
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty" swaggertype:"number"`
}

// UpdateStatusRequest changes an order's status
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required" swaggertype:"string"`
}

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest exchanges credentials for a bearer token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthPayload is returned by register and login
type AuthPayload struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ClientRequest registers an OAuth service client
type ClientRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// Response wraps successful payloads that carry a message
type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
