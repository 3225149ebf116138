package services

import (
	"errors"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/pricing"
)

var (
	// ErrValidation wraps every request that fails field validation
	ErrValidation = errors.New("validation failed")

	ErrPizzaNotFound  = pricing.ErrPizzaNotFound
	ErrInvalidSize    = pricing.ErrInvalidSize
	ErrPizzaNameTaken = errors.New("pizza name already exists")

	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrClientNotFound = errors.New("client not found")

	ErrUnauthenticated = auth.ErrUnauthenticated
	ErrForbidden       = auth.ErrForbidden
)
