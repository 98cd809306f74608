// Package client is the NoPaper API client. It talks the bookshop's
// REST contract with bearer-token auth and maps failures onto a small
// error taxonomy.
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
	"sync"
	"time"
)

// Book is a catalog entry as served by the shop. IsPurchased is only
// meaningful on authenticated listings.
type Book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	CoverURL    string  `json:"cover_url,omitempty"`
	IsPurchased bool    `json:"is_purchased"`
}

// AdminBook is a catalog entry with its paid purchase count.
type AdminBook struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         float64 `json:"price"`
	Description   string  `json:"description,omitempty"`
	PurchaseCount int64   `json:"purchase_count"`
}

// Order is an order as seen on the admin dashboard.
type Order struct {
	OrderID   int64       `json:"order_id"`
	UserEmail string      `json:"user_email"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Books     []OrderBook `json:"books"`
}

// OrderBook is a book line inside an order.
type OrderBook struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// Stats aggregates the admin dashboard totals.
type Stats struct {
	TotalBooks   int64   `json:"total_books"`
	TotalUsers   int64   `json:"total_users"`
	TotalOrders  int64   `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
}

// AuthResult is the outcome of login or registration.
type AuthResult struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	Token   string `json:"token"`
}

// PaymentRequest is what /buy returns to drive the UPI payment step.
type PaymentRequest struct {
	OrderID    int64   `json:"order_id"`
	Amount     float64 `json:"amount"`
	UPIID      string  `json:"upi_id"`
	UPIURL     string  `json:"upi_url"`
	Status     string  `json:"status"`
	PaymentRef string  `json:"payment_ref"`
}

// VerifyResult is the server's authoritative settlement answer.
type VerifyResult struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// CreateBookInput is the admin catalog creation payload.
type CreateBookInput struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	PDFURL      string  `json:"pdf_url"`
	CoverURL    string  `json:"cover_url,omitempty"`
}

// Client is a NoPaper API client. It is safe for concurrent use; the
// bearer token can be swapped at any time by the session layer.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// New creates an API client for the shop at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token used on subsequent requests. An
// empty token makes requests anonymous.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently installed bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token. The client does not install
// the token itself; the session manager owns that.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/register", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBooks fetches the catalog. With a token installed each book
// carries its is_purchased flag.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var out []Book
	if err := c.do(ctx, http.MethodGet, "/books", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Buy creates a pending order for the book.
func (c *Client) Buy(ctx context.Context, bookID int64) (*PaymentRequest, error) {
	var out PaymentRequest
	err := c.do(ctx, http.MethodPost, "/buy", map[string]int64{"book_id": bookID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment asks the server to settle the order. Any transport or
// server failure is a verification error; the order stays pending
// server-side.
func (c *Client) VerifyPayment(ctx context.Context, orderID int64, status string) (*VerifyResult, error) {
	q := url.Values{}
	q.Set("order_id", strconv.FormatInt(orderID, 10))
	q.Set("status", status)

	var out VerifyResult
	if err := c.do(ctx, http.MethodPost, "/payment/verify?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerification, err)
	}
	return &out, nil
}

// Download streams the book's PDF into w. Entitlement is checked by the
// server on every call.
func (c *Client) Download(ctx context.Context, bookID int64, w io.Writer) error {
	path := fmt.Sprintf("/books/%d/download", bookID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readAPIError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return nil
}

// AdminListBooks fetches the catalog with purchase counts.
func (c *Client) AdminListBooks(ctx context.Context) ([]AdminBook, error) {
	var out []AdminBook
	if err := c.do(ctx, http.MethodGet, "/admin/books", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminCreateBook adds a book to the catalog.
func (c *Client) AdminCreateBook(ctx context.Context, in CreateBookInput) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/books", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// AdminDeleteBook removes a book from the catalog.
func (c *Client) AdminDeleteBook(ctx context.Context, bookID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/books/%d", bookID), nil, nil)
}

// AdminOrders fetches all orders, newest first.
func (c *Client) AdminOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/admin/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminStats fetches the dashboard totals.
func (c *Client) AdminStats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &payload)
	return newAPIError(resp.StatusCode, payload.Detail)
}
