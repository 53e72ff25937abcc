package client

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

	"github.com/google/uuid"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// Client is a Go SDK for the Unicorn Emporium storefront API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	requestID  func() string
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRequestIDs sets the generator for X-Request-ID headers
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		c.requestID = next
	}
}

// NewClient creates a new storefront client. apiKey may be empty for the
// public routes.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		requestID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (HTTP %d): %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// envelope is the response wrapper used by every API route
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Catalog ---

// GetProducts returns the whole catalog
func (c *Client) GetProducts(ctx context.Context) ([]models.Product, error) {
	var result struct {
		Products []models.Product `json:"products"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/products", nil, &result); err != nil {
		return nil, err
	}
	return result.Products, nil
}

// GetProduct retrieves a product by ID
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := c.call(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByCategory returns the products of one category
func (c *Client) GetProductsByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	var result struct {
		Products []models.Product `json:"products"`
	}
	path := "/api/products/category/" + url.PathEscape(string(category))
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Products, nil
}

// CreateProduct adds a product to the catalog. Requires products:write.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var created models.Product
	if err := c.call(ctx, http.MethodPost, "/api/products", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// --- Orders ---

// CreateOrder submits an order
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.OrderResponse, error) {
	var resp models.OrderResponse
	if err := c.call(ctx, http.MethodPost, "/api/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrder retrieves an order with its items
func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := c.call(ctx, http.MethodGet, "/api/orders/"+strconv.FormatInt(id, 10), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns orders newest first. Requires orders:read.
func (c *Client) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/orders"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result struct {
		Orders []*models.Order `json:"orders"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Orders, nil
}

// GetOrdersByEmail returns a customer's orders. Requires orders:read.
func (c *Client) GetOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error) {
	var result struct {
		Orders []*models.Order `json:"orders"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/orders/email/"+url.PathEscape(email), nil, &result); err != nil {
		return nil, err
	}
	return result.Orders, nil
}

// --- Academy ---

// ListModules returns the academy modules without their content
func (c *Client) ListModules(ctx context.Context) ([]models.Module, error) {
	var result struct {
		Modules []models.Module `json:"modules"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/academy/modules", nil, &result); err != nil {
		return nil, err
	}
	return result.Modules, nil
}

// GetModule returns one module with its content
func (c *Client) GetModule(ctx context.Context, id int) (*models.Module, error) {
	var m models.Module
	if err := c.call(ctx, http.MethodGet, "/api/academy/modules/"+strconv.Itoa(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetQuiz returns the quiz questions without the answer key
func (c *Client) GetQuiz(ctx context.Context) ([]models.PublicQuestion, error) {
	var result struct {
		Questions []models.PublicQuestion `json:"questions"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/academy/quiz", nil, &result); err != nil {
		return nil, err
	}
	return result.Questions, nil
}

// ScoreQuiz submits answers, one option index per question in order
func (c *Client) ScoreQuiz(ctx context.Context, answers []int) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := c.call(ctx, http.MethodPost, "/api/academy/quiz/score", models.ScoreQuizRequest{Answers: answers}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

// call sends in as the JSON body (when non-nil) and decodes the envelope
// data into out
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var result envelope
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		apiErr := &APIError{StatusCode: http.StatusOK, Body: string(resp)}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return apiErr
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.requestID != nil {
		req.Header.Set("X-Request-ID", c.requestID())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}

	return respBody, nil
}
