package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/plateadmin/plateadmin/internal/models"
)

// Client talks to the PlateAdmin JSON API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates an API client for serverURL. token may be empty for login.
func New(serverURL, token string) *Client {
	return &Client{
		baseURL: serverURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the account returned by login and /api/auth/me
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// do sends a request and decodes a JSON response into out when out is non-nil
func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var errBody struct {
			Error string `json:"error"`
		}
		message := string(raw)
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func withSearch(path, search string) string {
	if search == "" {
		return path
	}
	return path + "?" + url.Values{"q": {search}}.Encode()
}

// Login authenticates and returns the session token
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

// Me returns the signed-in user as the server sees the token
func (c *Client) Me() (*User, error) {
	var user User
	if err := c.do(http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListProducts returns products matching search
func (c *Client) ListProducts(search string) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(http.MethodGet, withSearch("/api/products", search), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return resp.Products, nil
}

// ListOrders returns orders matching search, newest first
func (c *Client) ListOrders(search string) ([]models.Order, error) {
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(http.MethodGet, withSearch("/api/orders", search), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return resp.Orders, nil
}

// ListCustomers returns customers matching search
func (c *Client) ListCustomers(search string) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.do(http.MethodGet, withSearch("/api/customers", search), nil, &customers); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// ListCategories returns categories matching search
func (c *Client) ListCategories(search string) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(http.MethodGet, withSearch("/api/categories", search), nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
