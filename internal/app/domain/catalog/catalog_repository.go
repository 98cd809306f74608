package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	database "github.com/lijoraj-p-r/NoPaper/internal/db"
)

var _ Repository = (*PostgresCatalogRepo)(nil)

// Repository is the catalog data access contract.
type Repository interface {
	// ListBooks returns the whole catalog, oldest first.
	ListBooks(ctx context.Context) ([]models.Book, error)
	// GetBook fetches a single book by id.
	GetBook(ctx context.Context, bookID int64) (*models.Book, error)
	// PurchasedBookIDs returns the set of book ids the user holds a paid
	// order for.
	PurchasedBookIDs(ctx context.Context, userID int64) (map[int64]bool, error)
	// UserHasBook reports whether the user holds a paid order containing
	// the book.
	UserHasBook(ctx context.Context, userID, bookID int64) (bool, error)
}

type PostgresCatalogRepo struct {
	logger *zap.Logger
	pgpool database.PGXPool
}

func NewPostgresCatalogRepo(pgpool database.PGXPool, logger *zap.Logger) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// ListBooks implements catalog.Repository.
func (r *PostgresCatalogRepo) ListBooks(ctx context.Context) ([]models.Book, error) {
	query := `SELECT id, title, author, price, COALESCE(description, ''), COALESCE(cover_url, ''), pdf_url, created_at
	          FROM books ORDER BY id`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.Error("Error listing books", zap.Error(err))
		return nil, fmt.Errorf("database error listing books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Description, &b.CoverURL, &b.PDFURL, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading books: %w", err)
	}
	return books, nil
}

// GetBook implements catalog.Repository.
func (r *PostgresCatalogRepo) GetBook(ctx context.Context, bookID int64) (*models.Book, error) {
	var b models.Book
	query := `SELECT id, title, author, price, COALESCE(description, ''), COALESCE(cover_url, ''), pdf_url, created_at
	          FROM books WHERE id = $1`
	err := r.pgpool.QueryRow(ctx, query, bookID).Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Description, &b.CoverURL, &b.PDFURL, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d not found: %w", bookID, models.ErrNotFound)
		}
		r.logger.Error("Error fetching book", zap.Error(err), zap.Int64("bookID", bookID))
		return nil, fmt.Errorf("database error fetching book: %w", err)
	}
	return &b, nil
}

// PurchasedBookIDs implements catalog.Repository.
func (r *PostgresCatalogRepo) PurchasedBookIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	query := `SELECT DISTINCT oi.book_id
	          FROM order_items oi
	          JOIN orders o ON oi.order_id = o.id
	          WHERE o.user_id = $1 AND o.status = $2`
	rows, err := r.pgpool.Query(ctx, query, userID, models.OrderStatusPaid)
	if err != nil {
		r.logger.Error("Error listing purchased books", zap.Error(err), zap.Int64("userID", userID))
		return nil, fmt.Errorf("database error listing purchases: %w", err)
	}
	defer rows.Close()

	purchased := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("database error scanning purchase: %w", err)
		}
		purchased[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading purchases: %w", err)
	}
	return purchased, nil
}

// UserHasBook implements catalog.Repository.
func (r *PostgresCatalogRepo) UserHasBook(ctx context.Context, userID, bookID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
	            SELECT 1 FROM order_items oi
	            JOIN orders o ON oi.order_id = o.id
	            WHERE o.user_id = $1 AND oi.book_id = $2 AND o.status = $3
	          )`
	err := r.pgpool.QueryRow(ctx, query, userID, bookID, models.OrderStatusPaid).Scan(&exists)
	if err != nil {
		r.logger.Error("Error checking purchase", zap.Error(err), zap.Int64("userID", userID), zap.Int64("bookID", bookID))
		return false, fmt.Errorf("database error checking purchase: %w", err)
	}
	return exists, nil
}
