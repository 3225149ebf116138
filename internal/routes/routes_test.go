package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/docs"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/cache"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/controllers"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/database"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-32-characters"

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	admin  string
}

func setupApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	pizzaRepo := repository.NewPizzaRepository(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	pizzaService := services.NewPizzaService(pizzaRepo, cache.Noop{}, time.Minute)
	userService := services.NewUserService(userRepo, issuer)

	adminUser, err := userService.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "changeme")
	require.NoError(t, err)
	adminToken, _, err := issuer.Issue(adminUser)
	require.NoError(t, err)

	router := NewRouter(Handlers{
		Pizzas:  controllers.NewPizzaController(pizzaService),
		Orders:  controllers.NewOrderController(services.NewOrderService(repository.NewOrderRepository(db), pizzaService)),
		Auth:    controllers.NewAuthController(userService),
		Clients: controllers.NewClientController(services.NewClientService(clientRepo)),
		OAuth:   auth.NewOAuthService(db, userRepo, clientRepo, testSecret),
	}, []byte(testSecret), []string{"*"})

	return &testApp{router: router, db: db, admin: adminToken}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (a *testApp) register(t *testing.T, email string) string {
	w := a.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Customer", "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (a *testApp) createMargherita(t *testing.T) uint {
	w := a.do(t, http.MethodPost, "/api/pizzas", a.admin, gin.H{
		"name":         "Margherita",
		"description":  "Tomato, mozzarella, basil",
		"image":        "/images/margherita.jpg",
		"price":        gin.H{"Small": 10.00, "Medium": 13.00},
		"category":     "Vegetarian",
		"toppings":     []string{"mozzarella", "basil"},
		"sizes":        []string{"Small", "Medium"},
		"isVegetarian": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var pizza models.Pizza
	decode(t, w, &pizza)
	return pizza.ID
}

func checkout(pizzaID uint, size string, quantity int, price float64) gin.H {
	return gin.H{
		"items": []gin.H{{"pizzaId": pizzaID, "selectedSize": size, "quantity": quantity, "price": price}},
		"shippingAddress": gin.H{
			"name": "Ada", "email": "ada@example.com", "address": "1 Loop St",
			"city": "Turin", "zip": "10100", "phone": "555-0100",
		},
		"paymentMethod": "card",
		"totalAmount":   1.00,
	}
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCheckoutUsesServerPrices(t *testing.T) {
	app := setupApp(t)
	pizzaID := app.createMargherita(t)
	token := app.register(t, "ada@example.com")

	w := app.do(t, http.MethodPost, "/api/orders", token, checkout(pizzaID, "Medium", 2, 99.00))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order map[string]interface{}
	decode(t, w, &order)
	assert.Equal(t, 33.08, order["totalAmount"])
	assert.Equal(t, 26.0, order["subtotal"])
	assert.Equal(t, 5.0, order["deliveryFee"])
	assert.Equal(t, 2.08, order["tax"])
	assert.Equal(t, "Pending", order["status"])
	assert.NotContains(t, order, "deliveredAt")

	items := order["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, 13.0, items[0].(map[string]interface{})["price"])
}

func TestCheckoutRejectsBadLines(t *testing.T) {
	app := setupApp(t)
	pizzaID := app.createMargherita(t)
	token := app.register(t, "ada@example.com")

	w := app.do(t, http.MethodPost, "/api/orders", token, checkout(pizzaID+100, "Small", 1, 10))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrPizzaNotFound)

	w = app.do(t, http.MethodPost, "/api/orders", token, checkout(pizzaID, "Large", 1, 10))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrInvalidSize)

	body := checkout(pizzaID, "Small", 1, 10)
	delete(body, "shippingAddress")
	w = app.do(t, http.MethodPost, "/api/orders", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, countOrders(t, app.db))
}

func TestCheckoutRequiresAuthentication(t *testing.T) {
	app := setupApp(t)
	pizzaID := app.createMargherita(t)

	w := app.do(t, http.MethodPost, "/api/orders", "", checkout(pizzaID, "Small", 1, 10))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, countOrders(t, app.db))
}

func TestOrderVisibility(t *testing.T) {
	app := setupApp(t)
	pizzaID := app.createMargherita(t)
	owner := app.register(t, "owner@example.com")
	other := app.register(t, "other@example.com")

	w := app.do(t, http.MethodPost, "/api/orders", owner, checkout(pizzaID, "Small", 1, 10))
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	decode(t, w, &order)
	path := fmt.Sprintf("/api/orders/%d", order.ID)

	w = app.do(t, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "shippingAddress")

	w = app.do(t, http.MethodGet, path, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, path, app.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/orders/myorders", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/orders", owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/orders", app.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Order
	decode(t, w, &all)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "owner@example.com", all[0].User.Email)
}

func TestStatusLifecycleOverHTTP(t *testing.T) {
	app := setupApp(t)
	pizzaID := app.createMargherita(t)
	token := app.register(t, "ada@example.com")

	w := app.do(t, http.MethodPost, "/api/orders", token, checkout(pizzaID, "Small", 1, 10))
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	decode(t, w, &order)
	path := fmt.Sprintf("/api/orders/%d/status", order.ID)

	w = app.do(t, http.MethodPut, path, token, gin.H{"status": "Delivered"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, path, app.admin, gin.H{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, path, app.admin, gin.H{"status": "Delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &order)
	assert.NotNil(t, order.DeliveredAt)

	w = app.do(t, http.MethodPut, path, app.admin, gin.H{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, w.Code)
	order.DeliveredAt = nil
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Nil(t, order.DeliveredAt)
}

func TestCatalogEndpoints(t *testing.T) {
	app := setupApp(t)
	pizzaID := app.createMargherita(t)
	token := app.register(t, "ada@example.com")

	w := app.do(t, http.MethodGet, "/api/pizzas?vegetarian=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pizzas []models.Pizza
	decode(t, w, &pizzas)
	assert.Len(t, pizzas, 1)

	w = app.do(t, http.MethodGet, "/api/pizzas?vegetarian=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/pizzas", token, gin.H{"name": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, fmt.Sprintf("/api/pizzas/%d", pizzaID), app.admin, gin.H{"description": "Updated"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Pizza
	decode(t, w, &updated)
	assert.Equal(t, "Updated", updated.Description)
	assert.Equal(t, "Margherita", updated.Name)

	w = app.do(t, http.MethodGet, "/api/pizzas/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/pizzas/%d", pizzaID), app.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/pizzas/%d", pizzaID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	app := setupApp(t)
	token := app.register(t, "ada@example.com")

	w := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = app.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = app.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceClientCanManageOrders(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/api/clients", app.admin, gin.H{"name": "Kitchen display", "scopes": "orders"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created services.CreatedClient
	decode(t, w, &created)

	form := fmt.Sprintf("grant_type=client_credentials&client_id=%s&client_secret=%s", created.Client.ID, created.Secret)
	req := httptest.NewRequest(http.MethodPost, "/api/oauth/token", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tw := httptest.NewRecorder()
	app.router.ServeHTTP(tw, req)
	require.Equal(t, http.StatusOK, tw.Code, tw.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, tw, &token)

	w = app.do(t, http.MethodGet, "/api/orders", token.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	w := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	app := setupApp(t)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	documented := 0
	for _, route := range app.router.Routes() {
		if strings.HasPrefix(route.Path, "/swagger") {
			continue
		}
		path := route.Path
		for _, part := range strings.Split(route.Path, "/") {
			if strings.HasPrefix(part, ":") {
				path = strings.Replace(path, part, "{"+part[1:]+"}", 1)
			}
		}

		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "%s is not documented", path) {
			_, ok = ops[strings.ToLower(route.Method)]
			assert.True(t, ok, "%s %s is not documented", route.Method, path)
		}
		documented++
	}
	assert.Len(t, doc.Paths, 13)
	assert.Equal(t, 18, documented)
}
