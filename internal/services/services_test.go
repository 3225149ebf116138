package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/cache"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Pizza{}, &models.Order{}, &models.OrderItem{}, &models.OAuthClient{})
	require.NoError(t, err)
	return db
}

// memoryCache records writes so tests can observe invalidation
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memoryCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

type fixture struct {
	db     *gorm.DB
	pizzas PizzaService
	orders OrderService
	users  UserService
	cache  *memoryCache
}

func setup(t *testing.T) *fixture {
	db := setupTestDB(t)
	mc := newMemoryCache()
	pizzas := NewPizzaService(repository.NewPizzaRepository(db), mc, time.Minute)
	return &fixture{
		db:     db,
		pizzas: pizzas,
		orders: NewOrderService(repository.NewOrderRepository(db), pizzas),
		users:  NewUserService(repository.NewUserRepository(db), auth.NewTokenIssuer("test-secret", time.Hour)),
		cache:  mc,
	}
}

func margherita() models.PizzaRequest {
	return models.PizzaRequest{
		Name:        "Margherita",
		Description: "Tomato, mozzarella, basil",
		Image:       "/images/margherita.jpg",
		Price: map[string]decimal.Decimal{
			"Small":  decimal.RequireFromString("10.00"),
			"Medium": decimal.RequireFromString("13.00"),
		},
		Category:     models.CategoryVegetarian,
		Toppings:     []string{"mozzarella", "basil"},
		Sizes:        []string{"Small", "Medium"},
		IsVegetarian: true,
	}
}

func address() *models.ShippingAddress {
	return &models.ShippingAddress{
		Name:    "Ada",
		Email:   "ada@example.com",
		Address: "1 Loop St",
		City:    "Turin",
		Zip:     "10100",
		Phone:   "555-0100",
	}
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

var (
	customer = auth.Principal{UserID: 7, Role: models.RoleUser}
	stranger = auth.Principal{UserID: 8, Role: models.RoleUser}
	admin    = auth.Principal{UserID: 1, Role: models.RoleAdmin}
)

func TestCreateOrderUsesCatalogPrices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pizza, err := f.pizzas.CreatePizza(ctx, margherita())
	require.NoError(t, err)

	clientTotal := decimal.RequireFromString("1.00")
	order, err := f.orders.CreateOrder(ctx, customer, models.CreateOrderRequest{
		Items: []models.OrderLineRequest{{
			PizzaID:      pizza.ID,
			SelectedSize: "Medium",
			Quantity:     2,
			Price:        decimal.RequireFromString("99.00"),
		}},
		ShippingAddress: address(),
		PaymentMethod:   models.PaymentCard,
		TotalAmount:     &clientTotal,
	})
	require.NoError(t, err)

	stored, err := f.orders.GetOrder(ctx, customer, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].Price.Equal(decimal.RequireFromString("13.00")))
	assert.Equal(t, "Margherita", stored.Items[0].Name)
	assert.True(t, stored.Subtotal.Equal(decimal.RequireFromString("26.00")))
	assert.True(t, stored.DeliveryFee.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, stored.Tax.Equal(decimal.RequireFromString("2.08")))
	assert.Equal(t, "33.08", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Nil(t, stored.DeliveredAt)
	assert.True(t, stored.OwnedBy(customer.UserID))
}

func TestCreateOrderFailuresPersistNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pizza, err := f.pizzas.CreatePizza(ctx, margherita())
	require.NoError(t, err)

	testCases := []struct {
		name string
		req  models.CreateOrderRequest
		want error
	}{
		{
			name: "unknown pizza",
			req: models.CreateOrderRequest{
				Items: []models.OrderLineRequest{
					{PizzaID: pizza.ID, SelectedSize: "Small", Quantity: 1},
					{PizzaID: 9999, SelectedSize: "Small", Quantity: 1},
				},
				ShippingAddress: address(),
				PaymentMethod:   models.PaymentCash,
			},
			want: ErrPizzaNotFound,
		},
		{
			name: "size not priced",
			req: models.CreateOrderRequest{
				Items:           []models.OrderLineRequest{{PizzaID: pizza.ID, SelectedSize: "Large", Quantity: 1}},
				ShippingAddress: address(),
				PaymentMethod:   models.PaymentCash,
			},
			want: ErrInvalidSize,
		},
		{
			name: "missing shipping address",
			req: models.CreateOrderRequest{
				Items:         []models.OrderLineRequest{{PizzaID: pizza.ID, SelectedSize: "Small", Quantity: 1}},
				PaymentMethod: models.PaymentCash,
			},
			want: ErrValidation,
		},
		{
			name: "no items",
			req: models.CreateOrderRequest{
				ShippingAddress: address(),
				PaymentMethod:   models.PaymentCash,
			},
			want: ErrValidation,
		},
		{
			name: "unknown payment method",
			req: models.CreateOrderRequest{
				Items:           []models.OrderLineRequest{{PizzaID: pizza.ID, SelectedSize: "Small", Quantity: 1}},
				ShippingAddress: address(),
				PaymentMethod:   "bitcoin",
			},
			want: ErrValidation,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(ctx, customer, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, countOrders(t, f.db))
		})
	}
}

func TestCreateOrderRequiresAuthentication(t *testing.T) {
	f := setup(t)
	_, err := f.orders.CreateOrder(context.Background(), auth.Principal{}, models.CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func placeOrder(t *testing.T, f *fixture, p auth.Principal) *models.Order {
	ctx := context.Background()
	pizza, err := f.pizzas.FindPizza(ctx, 1)
	if err != nil {
		pizza, err = f.pizzas.CreatePizza(ctx, margherita())
		require.NoError(t, err)
	}
	order, err := f.orders.CreateOrder(ctx, p, models.CreateOrderRequest{
		Items:           []models.OrderLineRequest{{PizzaID: pizza.ID, SelectedSize: "Small", Quantity: 1}},
		ShippingAddress: address(),
		PaymentMethod:   models.PaymentCash,
	})
	require.NoError(t, err)
	return order
}

func TestGetOrderAuthorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := placeOrder(t, f, customer)

	got, err := f.orders.GetOrder(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, got)

	got, err = f.orders.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.orders.GetOrder(ctx, customer, order.ID+100)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := placeOrder(t, f, customer)
	second := placeOrder(t, f, customer)
	placeOrder(t, f, stranger)

	mine, err := f.orders.ListMyOrders(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, err = f.orders.ListAllOrders(ctx, customer)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := f.orders.ListAllOrders(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateStatusTracksDelivery(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := placeOrder(t, f, customer)

	_, err := f.orders.UpdateStatus(ctx, customer, order.ID, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders.UpdateStatus(ctx, admin, order.ID, "Teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	delivered, err := f.orders.UpdateStatus(ctx, admin, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)

	stored, err := f.orders.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, stored.Status)
	assert.NotNil(t, stored.DeliveredAt)

	cancelled, err := f.orders.UpdateStatus(ctx, admin, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Nil(t, cancelled.DeliveredAt)

	stored, err = f.orders.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)
	assert.Nil(t, stored.DeliveredAt)

	_, err = f.orders.UpdateStatus(ctx, admin, 9999, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPizzaServiceCachesAndInvalidates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pizza, err := f.pizzas.CreatePizza(ctx, margherita())
	require.NoError(t, err)

	list, err := f.pizzas.ListPizzas(ctx, repository.PizzaFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = f.pizzas.GetPizza(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.len())

	cached, err := f.pizzas.GetPizza(ctx, pizza.ID)
	require.NoError(t, err)
	assert.True(t, cached.Price["Medium"].Equal(decimal.RequireFromString("13.00")))

	name := "Margherita DOP"
	updated, err := f.pizzas.UpdatePizza(ctx, pizza.ID, models.PizzaUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, []string{"Small", "Medium"}, []string(updated.Sizes))
	assert.Zero(t, f.cache.len())

	got, err := f.pizzas.GetPizza(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
}

func TestPizzaServiceErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pizza, err := f.pizzas.CreatePizza(ctx, margherita())
	require.NoError(t, err)

	_, err = f.pizzas.CreatePizza(ctx, margherita())
	assert.ErrorIs(t, err, ErrPizzaNameTaken)

	bad := margherita()
	bad.Name = "Half priced"
	bad.Sizes = []string{"Small", "Medium", "Large"}
	_, err = f.pizzas.CreatePizza(ctx, bad)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.pizzas.UpdatePizza(ctx, pizza.ID, models.PizzaUpdateRequest{Sizes: []string{"Family"}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.pizzas.GetPizza(ctx, 9999)
	assert.ErrorIs(t, err, ErrPizzaNotFound)

	_, err = f.pizzas.ListPizzas(ctx, repository.PizzaFilter{Category: "Dessert"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.pizzas.DeletePizza(ctx, pizza.ID))
	assert.ErrorIs(t, f.pizzas.DeletePizza(ctx, pizza.ID), ErrPizzaNotFound)
}

func TestSeedCatalogSkipsExisting(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	pepperoni := margherita()
	pepperoni.Name = "Pepperoni"
	pepperoni.Category = models.CategoryNonVegetarian
	pepperoni.IsVegetarian = false

	n, err := f.pizzas.SeedCatalog(ctx, []models.PizzaRequest{margherita(), pepperoni})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.pizzas.SeedCatalog(ctx, []models.PizzaRequest{margherita(), pepperoni})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegisterAndLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	registered, err := f.users.Register(ctx, models.RegisterRequest{Name: "Ada", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.Equal(t, models.RoleUser, registered.User.Role)
	assert.NotEqual(t, "secret1", registered.User.Password)

	_, err = f.users.Register(ctx, models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)

	loggedIn, err := f.users.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.Equal(t, int64(3600), loggedIn.ExpiresIn)

	_, err = f.users.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	profile, err := f.users.Profile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)

	_, err = f.users.Profile(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.users.EnsureAdmin(ctx, "Admin", "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin())

	second, err := f.users.EnsureAdmin(ctx, "Admin", "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestClientService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientService(repository.NewClientRepository(db))
	ctx := context.Background()

	created, err := svc.CreateClient(ctx, 1, models.ClientRequest{Name: "Kitchen display", Scopes: "orders"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Secret)
	assert.True(t, created.Client.VerifyPassword(created.Secret))
	_, err = uuid.Parse(created.Client.ID)
	assert.NoError(t, err)
	_, err = uuid.Parse(created.Secret)
	assert.NoError(t, err)

	_, err = svc.CreateClient(ctx, 1, models.ClientRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	clients, err := svc.ListClients(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	assert.ErrorIs(t, svc.DeleteClient(ctx, created.Client.ID, 2), ErrClientNotFound)
	require.NoError(t, svc.DeleteClient(ctx, created.Client.ID, 1))

	clients, err = svc.ListClients(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, clients)
}
