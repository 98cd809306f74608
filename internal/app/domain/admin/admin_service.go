package admin

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the admin business logic contract.
type Service interface {
	CreateBook(ctx context.Context, in BookInput) (int64, error)
	DeleteBook(ctx context.Context, bookID int64) (purchases int64, err error)
	ListBooks(ctx context.Context) ([]models.AdminBook, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

// NewService creates a new admin service instance.
func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

// CreateBook implements admin.Service. PDF and cover links must be
// http(s) URLs; the PDF is delivered by redirect, so a bad link would
// only surface at download time otherwise.
func (s *ServiceImpl) CreateBook(ctx context.Context, in BookInput) (int64, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return 0, fmt.Errorf("title and author are required: %w", models.ErrValidation)
	}
	if in.Price <= 0 {
		return 0, fmt.Errorf("price must be positive: %w", models.ErrValidation)
	}
	if !isHTTPURL(in.PDFURL) {
		return 0, fmt.Errorf("PDF URL must be a valid HTTP/HTTPS URL: %w", models.ErrValidation)
	}
	if in.CoverURL != "" && !isHTTPURL(in.CoverURL) {
		return 0, fmt.Errorf("cover image URL must be a valid HTTP/HTTPS URL: %w", models.ErrValidation)
	}

	bookID, err := s.repo.CreateBook(ctx, in)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Book created", zap.Int64("bookID", bookID), zap.String("title", in.Title))
	return bookID, nil
}

// DeleteBook implements admin.Service.
func (s *ServiceImpl) DeleteBook(ctx context.Context, bookID int64) (int64, error) {
	purchases, err := s.repo.DeleteBook(ctx, bookID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Book deleted", zap.Int64("bookID", bookID), zap.Int64("purchases", purchases))
	return purchases, nil
}

// ListBooks implements admin.Service.
func (s *ServiceImpl) ListBooks(ctx context.Context) ([]models.AdminBook, error) {
	return s.repo.ListBooksWithCounts(ctx)
}

// ListOrders implements admin.Service.
func (s *ServiceImpl) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.repo.ListOrders(ctx)
}

// Stats implements admin.Service. The aggregates are independent, so
// they fan out concurrently.
func (s *ServiceImpl) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountBooks(ctx)
		stats.TotalBooks = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUsersByRole(ctx, models.RoleUser)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountOrdersByStatus(ctx, models.OrderStatusPaid)
		stats.TotalOrders = n
		return err
	})
	g.Go(func() error {
		revenue, err := s.repo.RevenueByStatus(ctx, models.OrderStatusPaid)
		stats.TotalRevenue = revenue
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func isHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
