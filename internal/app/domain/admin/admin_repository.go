package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	database "github.com/lijoraj-p-r/NoPaper/internal/db"
)

var _ Repository = (*PostgresAdminRepo)(nil)

// BookInput is the payload for creating a catalog entry.
type BookInput struct {
	Title       string
	Author      string
	Price       float64
	Description string
	PDFURL      string
	CoverURL    string
}

// Repository is the admin data access contract.
type Repository interface {
	CreateBook(ctx context.Context, in BookInput) (int64, error)
	// DeleteBook removes the book and its order lines. Returns the number
	// of paid purchases that existed for it.
	DeleteBook(ctx context.Context, bookID int64) (int64, error)
	// ListBooksWithCounts returns the catalog with paid purchase counts.
	ListBooksWithCounts(ctx context.Context) ([]models.AdminBook, error)
	// ListOrders returns all orders, newest first, with their book lines.
	ListOrders(ctx context.Context) ([]models.Order, error)

	// Stats components. Each is a single aggregate so they can run
	// concurrently.
	CountBooks(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role string) (int64, error)
	CountOrdersByStatus(ctx context.Context, status string) (int64, error)
	RevenueByStatus(ctx context.Context, status string) (float64, error)
}

type PostgresAdminRepo struct {
	logger *zap.Logger
	pgpool database.PGXPool
	sb     sq.StatementBuilderType
}

func NewPostgresAdminRepo(pgpool database.PGXPool, logger *zap.Logger) *PostgresAdminRepo {
	return &PostgresAdminRepo{
		logger: logger,
		pgpool: pgpool,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateBook implements admin.Repository.
func (r *PostgresAdminRepo) CreateBook(ctx context.Context, in BookInput) (int64, error) {
	query, args, err := r.sb.Insert("books").
		Columns("title", "author", "price", "description", "cover_url", "pdf_url", "created_at").
		Values(in.Title, in.Author, in.Price, in.Description, in.CoverURL, in.PDFURL, time.Now()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building insert: %w", err)
	}

	var bookID int64
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&bookID); err != nil {
		r.logger.Error("Error inserting book", zap.Error(err), zap.String("title", in.Title))
		return 0, fmt.Errorf("database error creating book: %w", err)
	}
	return bookID, nil
}

// DeleteBook implements admin.Repository. Order lines referencing the book
// go first; users who bought it have already downloaded their copy.
func (r *PostgresAdminRepo) DeleteBook(ctx context.Context, bookID int64) (int64, error) {
	purchases, err := r.purchaseCount(ctx, bookID)
	if err != nil {
		return 0, err
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("database error starting delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE book_id = $1`, bookID); err != nil {
		r.logger.Error("Error deleting order items", zap.Error(err), zap.Int64("bookID", bookID))
		return 0, fmt.Errorf("database error deleting order items: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, bookID)
	if err != nil {
		r.logger.Error("Error deleting book", zap.Error(err), zap.Int64("bookID", bookID))
		return 0, fmt.Errorf("database error deleting book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("book %d not found: %w", bookID, models.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("database error committing delete: %w", err)
	}
	return purchases, nil
}

func (r *PostgresAdminRepo) purchaseCount(ctx context.Context, bookID int64) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("order_items oi").
		Join("orders o ON oi.order_id = o.id").
		Where(sq.Eq{"oi.book_id": bookID, "o.status": models.OrderStatusPaid}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building count: %w", err)
	}

	var count int64
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("database error counting purchases: %w", err)
	}
	return count, nil
}

// ListBooksWithCounts implements admin.Repository.
func (r *PostgresAdminRepo) ListBooksWithCounts(ctx context.Context) ([]models.AdminBook, error) {
	query, args, err := r.sb.Select(
		"b.id", "b.title", "b.author", "b.price",
		"COALESCE(b.description, '')", "COALESCE(b.cover_url, '')", "b.created_at").
		Column(sq.Expr("COUNT(oi.id) FILTER (WHERE o.status = ?) AS purchase_count", models.OrderStatusPaid)).
		From("books b").
		LeftJoin("order_items oi ON oi.book_id = b.id").
		LeftJoin("orders o ON oi.order_id = o.id").
		GroupBy("b.id").
		OrderBy("b.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building book list: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Error listing admin books", zap.Error(err))
		return nil, fmt.Errorf("database error listing books: %w", err)
	}
	defer rows.Close()

	var books []models.AdminBook
	for rows.Next() {
		var b models.AdminBook
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Description, &b.CoverURL, &b.CreatedAt, &b.PurchaseCount); err != nil {
			return nil, fmt.Errorf("database error scanning admin book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading admin books: %w", err)
	}
	return books, nil
}

// ListOrders implements admin.Repository.
func (r *PostgresAdminRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	query := `SELECT o.id, o.user_id, u.email, o.total, o.status, o.created_at
	          FROM orders o JOIN users u ON o.user_id = u.id
	          ORDER BY o.created_at DESC`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.Error("Error listing orders", zap.Error(err))
		return nil, fmt.Errorf("database error listing orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	index := make(map[int64]int)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.UserEmail, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning order: %w", err)
		}
		o.Books = []models.OrderBook{}
		index[o.OrderID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemQuery := `SELECT oi.order_id, b.id, b.title, b.author, oi.price_each
	              FROM order_items oi JOIN books b ON oi.book_id = b.id
	              ORDER BY oi.id`
	itemRows, err := r.pgpool.Query(ctx, itemQuery)
	if err != nil {
		return nil, fmt.Errorf("database error listing order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var ob models.OrderBook
		if err := itemRows.Scan(&orderID, &ob.ID, &ob.Title, &ob.Author, &ob.Price); err != nil {
			return nil, fmt.Errorf("database error scanning order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Books = append(orders[i].Books, ob)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading order items: %w", err)
	}
	return orders, nil
}

// CountBooks implements admin.Repository.
func (r *PostgresAdminRepo) CountBooks(ctx context.Context) (int64, error) {
	return r.scalarCount(ctx, r.sb.Select("COUNT(*)").From("books"))
}

// CountUsersByRole implements admin.Repository.
func (r *PostgresAdminRepo) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return r.scalarCount(ctx, r.sb.Select("COUNT(*)").From("users").Where(sq.Eq{"role": role}))
}

// CountOrdersByStatus implements admin.Repository.
func (r *PostgresAdminRepo) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	return r.scalarCount(ctx, r.sb.Select("COUNT(*)").From("orders").Where(sq.Eq{"status": status}))
}

// RevenueByStatus implements admin.Repository.
func (r *PostgresAdminRepo) RevenueByStatus(ctx context.Context, status string) (float64, error) {
	query, args, err := r.sb.Select("COALESCE(SUM(total), 0)").
		From("orders").
		Where(sq.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building revenue query: %w", err)
	}

	var revenue float64
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&revenue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("database error computing revenue: %w", err)
	}
	return revenue, nil
}

func (r *PostgresAdminRepo) scalarCount(ctx context.Context, builder sq.SelectBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building count query: %w", err)
	}

	var count int64
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("database error counting: %w", err)
	}
	return count, nil
}
