package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	database "github.com/lijoraj-p-r/NoPaper/internal/db"
)

var _ Repository = (*PostgresCheckoutRepo)(nil)

// OrderRecord is the slim order view the checkout flow works with.
type OrderRecord struct {
	ID         int64
	UserID     int64
	UserEmail  string
	Total      float64
	Status     string
	PaymentRef string
	CreatedAt  time.Time
}

// Repository is the checkout data access contract.
type Repository interface {
	// CreateOrder creates a pending order with a single book line,
	// atomically. Returns the new order id.
	CreateOrder(ctx context.Context, userID int64, book *models.Book, paymentRef string) (int64, error)
	// GetOrderForUser fetches an order owned by the given user.
	GetOrderForUser(ctx context.Context, orderID, userID int64) (*OrderRecord, error)
	// SetOrderStatus transitions the order status.
	SetOrderStatus(ctx context.Context, orderID int64, status string) error
	// FirstBookTitle returns the title of the first book line of the
	// order, for the payment notification mail.
	FirstBookTitle(ctx context.Context, orderID int64) (string, error)
}

type PostgresCheckoutRepo struct {
	logger *zap.Logger
	pgpool database.PGXPool
}

func NewPostgresCheckoutRepo(pgpool database.PGXPool, logger *zap.Logger) *PostgresCheckoutRepo {
	return &PostgresCheckoutRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// CreateOrder implements checkout.Repository.
func (r *PostgresCheckoutRepo) CreateOrder(ctx context.Context, userID int64, book *models.Book, paymentRef string) (int64, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("database error starting order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID int64
	orderQuery := `INSERT INTO orders (user_id, total, status, payment_ref, created_at)
	               VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = tx.QueryRow(ctx, orderQuery, userID, book.Price, models.OrderStatusPending, paymentRef, time.Now()).Scan(&orderID)
	if err != nil {
		r.logger.Error("Error inserting order", zap.Error(err), zap.Int64("userID", userID))
		return 0, fmt.Errorf("database error creating order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, book_id, quantity, price_each)
	              VALUES ($1, $2, 1, $3)`
	if _, err := tx.Exec(ctx, itemQuery, orderID, book.ID, book.Price); err != nil {
		r.logger.Error("Error inserting order item", zap.Error(err), zap.Int64("orderID", orderID))
		return 0, fmt.Errorf("database error creating order item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("database error committing order: %w", err)
	}
	return orderID, nil
}

// GetOrderForUser implements checkout.Repository.
func (r *PostgresCheckoutRepo) GetOrderForUser(ctx context.Context, orderID, userID int64) (*OrderRecord, error) {
	var o OrderRecord
	query := `SELECT o.id, o.user_id, u.email, o.total, o.status, o.payment_ref, o.created_at
	          FROM orders o JOIN users u ON o.user_id = u.id
	          WHERE o.id = $1 AND o.user_id = $2`
	err := r.pgpool.QueryRow(ctx, query, orderID, userID).Scan(&o.ID, &o.UserID, &o.UserEmail, &o.Total, &o.Status, &o.PaymentRef, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found: %w", orderID, models.ErrNotFound)
		}
		r.logger.Error("Error fetching order", zap.Error(err), zap.Int64("orderID", orderID))
		return nil, fmt.Errorf("database error fetching order: %w", err)
	}
	return &o, nil
}

// SetOrderStatus implements checkout.Repository.
func (r *PostgresCheckoutRepo) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := r.pgpool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		r.logger.Error("Error updating order status", zap.Error(err), zap.Int64("orderID", orderID))
		return fmt.Errorf("database error updating order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found: %w", orderID, models.ErrNotFound)
	}
	return nil
}

// FirstBookTitle implements checkout.Repository.
func (r *PostgresCheckoutRepo) FirstBookTitle(ctx context.Context, orderID int64) (string, error) {
	var title string
	query := `SELECT b.title FROM order_items oi
	          JOIN books b ON oi.book_id = b.id
	          WHERE oi.order_id = $1
	          ORDER BY oi.id LIMIT 1`
	err := r.pgpool.QueryRow(ctx, query, orderID).Scan(&title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("order %d has no items: %w", orderID, models.ErrNotFound)
		}
		return "", fmt.Errorf("database error fetching order book: %w", err)
	}
	return title, nil
}
