package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/api/pizzas", func(c *gin.Context) {
		assert.Equal(t, "true", c.Query("vegetarian"))
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Margherita", "price": gin.H{"Small": 10.0}, "sizes": []string{"Small"}}})
	})
	router.POST("/api/orders", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tkn" {
			c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Not authorized"))
			return
		}
		var req models.CreateOrderRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		c.JSON(http.StatusCreated, gin.H{"id": 9, "status": "Pending", "totalAmount": 15.8, "items": []gin.H{}})
	})
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Login successful", "data": gin.H{"token": "tkn", "user": gin.H{"id": 3, "email": "ada@example.com"}}})
	})
	router.GET("/api/orders/:id", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Not authorized to access this resource"))
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestListPizzas(t *testing.T) {
	srv := fakeAPI(t)
	veg := true

	pizzas, err := New(srv.URL+"/", "").ListPizzas(context.Background(), PizzaQuery{Vegetarian: &veg})
	require.NoError(t, err)
	require.Len(t, pizzas, 1)
	assert.True(t, pizzas[0].Price["Small"].Equal(decimal.NewFromInt(10)))
}

func TestLoginThenOrder(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	client := New(srv.URL, "")

	auth, err := client.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tkn", auth.Token)
	assert.Equal(t, uint(3), auth.User.ID)

	req := models.CreateOrderRequest{
		Items: []models.OrderLineRequest{{PizzaID: 1, SelectedSize: "Small", Quantity: 1, Price: decimal.NewFromInt(10)}},
		ShippingAddress: &models.ShippingAddress{
			Name: "Ada", Email: "ada@example.com", Address: "1 Loop St", City: "Turin", Zip: "10100", Phone: "555",
		},
		PaymentMethod: models.PaymentCash,
	}

	_, err = client.CreateOrder(ctx, req)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	client.Token = auth.Token
	order, err := client.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint(9), order.ID)
	assert.Equal(t, "15.8", order.TotalAmount.String())
}

func TestErrorCarriesAPICode(t *testing.T) {
	srv := fakeAPI(t)

	_, err := New(srv.URL, "tkn").GetOrder(context.Background(), 4)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, models.ErrForbidden, apiErr.Code)
	assert.Contains(t, apiErr.Error(), "403")

	raw, _ := json.Marshal(apiErr.APIError)
	assert.Contains(t, string(raw), "FORBIDDEN")
}
