package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	service services.OrderService
}

func NewOrderController(service services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// CreateOrder godoc
// @Summary Place an order
// @Description Prices every line against the catalog. Client prices and totals are ignored.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body models.CreateOrderRequest true "Checkout payload"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders [post]
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.service.CreateOrder(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetMyOrders godoc
// @Summary List my orders
// @Description Orders placed by the caller, newest first
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/myorders [get]
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := oc.service.ListMyOrders(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrderByID godoc
// @Summary Get an order
// @Description Visible to the owner and to admins
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id} [get]
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.service.GetOrder(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetAllOrders godoc
// @Summary List all orders
// @Description Every order with its customer, newest first
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders [get]
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.service.ListAllOrders(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus godoc
// @Summary Change order status
// @Description Pending, Confirmed, Preparing, Out for Delivery, Delivered or Cancelled
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id}/status [put]
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.service.UpdateStatus(c.Request.Context(), middleware.CurrentPrincipal(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
