package auth

import (
	"errors"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
)

var (
	// ErrUnauthenticated means no valid credential accompanied the request
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is authenticated but not permitted
	ErrForbidden = errors.New("not authorized for this resource")
)

// Principal is the authenticated caller extracted from a bearer token
type Principal struct {
	UserID   uint
	Role     models.Role
	ClientID string // set for OAuth service clients
}

// IsAdmin reports whether the caller holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanReadOrder allows the owning user and admins. Guest orders have no owner
// and are visible to admins only.
func CanReadOrder(p Principal, order *models.Order) error {
	if p.UserID == 0 {
		return ErrUnauthenticated
	}
	if p.IsAdmin() || order.OwnedBy(p.UserID) {
		return nil
	}
	return ErrForbidden
}

// CanManageOrders allows admins to list every order and change statuses
func CanManageOrders(p Principal) error {
	if p.UserID == 0 {
		return ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
