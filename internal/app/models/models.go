package models

import "time"

// Order status values. The server is the sole authority on transitions;
// clients only ever observe these.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserAuth carries the fields the auth domain needs. Password holds the
// bcrypt hash and is never serialized.
type UserAuth struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is a catalog entry. IsPurchased is derived per-request for the
// authenticated caller and is never stored.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	PDFURL      string    `json:"pdf_url,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	IsPurchased bool      `json:"is_purchased"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// AdminBook is a catalog entry as seen on the admin dashboard, with the
// paid purchase count per title.
type AdminBook struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Price         float64   `json:"price"`
	Description   string    `json:"description,omitempty"`
	CoverURL      string    `json:"cover_url,omitempty"`
	PurchaseCount int64     `json:"purchase_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Order is a purchase record. Books lists the titles bought in this order.
type Order struct {
	OrderID   int64       `json:"order_id"`
	UserID    int64       `json:"user_id"`
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

// PaymentRequest is what /buy hands back to the client so it can drive
// the out-of-band UPI payment step.
type PaymentRequest struct {
	OrderID    int64   `json:"order_id"`
	Amount     float64 `json:"amount"`
	UPIID      string  `json:"upi_id"`
	UPIURL     string  `json:"upi_url"`
	Status     string  `json:"status"`
	PaymentRef string  `json:"payment_ref"`
}

// AdminStats aggregates the admin dashboard totals.
type AdminStats struct {
	TotalBooks   int64   `json:"total_books"`
	TotalUsers   int64   `json:"total_users"`
	TotalOrders  int64   `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
}
