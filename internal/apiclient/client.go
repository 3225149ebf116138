// Package apiclient is a thin HTTP client for the pizza shop API
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
)

// Error is a non 2xx response
type Error struct {
	Status int
	models.APIError
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New points a client at baseURL, e.g. http://localhost:8080
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &Error{Status: res.StatusCode}
		_ = json.NewDecoder(res.Body).Decode(&apiErr.APIError)
		return apiErr
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// PizzaQuery filters ListPizzas
type PizzaQuery struct {
	Category   string
	Search     string
	Vegetarian *bool
}

func (c *Client) ListPizzas(ctx context.Context, q PizzaQuery) ([]models.Pizza, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Vegetarian != nil {
		params.Set("vegetarian", strconv.FormatBool(*q.Vegetarian))
	}
	path := "/api/pizzas"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var pizzas []models.Pizza
	err := c.do(ctx, http.MethodGet, path, nil, &pizzas)
	return pizzas, err
}

func (c *Client) GetPizza(ctx context.Context, id uint) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pizzas/%d", id), nil, &pizza); err != nil {
		return nil, err
	}
	return &pizza, nil
}

type authEnvelope struct {
	Message string             `json:"message"`
	Data    models.AuthPayload `json:"data"`
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthPayload, error) {
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthPayload, error) {
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := c.do(ctx, http.MethodGet, "/api/orders/myorders", nil, &orders)
	return orders, err
}

func (c *Client) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders)
	return orders, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	body := models.UpdateStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", id), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
