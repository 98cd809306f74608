package catalog

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	"github.com/lijoraj-p-r/NoPaper/internal/observability/metrics"
)

const anonListCacheKey = "books:anonymous"

var _ Service = (*ServiceImpl)(nil)

// Service is the catalog business logic contract.
type Service interface {
	// ListBooks returns the catalog. For an authenticated caller
	// (userID > 0) each book carries its is_purchased flag, computed
	// fresh on every call.
	ListBooks(ctx context.Context, userID int64) ([]models.Book, error)
	// DownloadURL authorizes a download and returns the PDF URL to
	// redirect to. Entitlement is checked per-request against paid
	// orders, never cached.
	DownloadURL(ctx context.Context, userID, bookID int64) (string, error)
	// InvalidateListCache drops the anonymous list cache, used after
	// admin catalog mutations.
	InvalidateListCache()
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	cache  *gocache.Cache
}

// NewService creates a new catalog service instance. The cache only ever
// holds the anonymous book list; authenticated responses depend on the
// caller and are always recomputed.
func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  gocache.New(30*time.Second, time.Minute),
	}
}

// ListBooks implements catalog.Service.
func (s *ServiceImpl) ListBooks(ctx context.Context, userID int64) ([]models.Book, error) {
	ctx, span := otel.Tracer("nopaper").Start(ctx, "CatalogService.ListBooks")
	defer span.End()

	if userID <= 0 {
		if cached, found := s.cache.Get(anonListCacheKey); found {
			return cached.([]models.Book), nil
		}
		books, err := s.repo.ListBooks(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(anonListCacheKey, books, gocache.DefaultExpiration)
		return books, nil
	}

	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	purchased, err := s.repo.PurchasedBookIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].IsPurchased = purchased[books[i].ID]
	}
	return books, nil
}

// DownloadURL implements catalog.Service.
func (s *ServiceImpl) DownloadURL(ctx context.Context, userID, bookID int64) (string, error) {
	l := s.logger.With(zap.String("method", "DownloadURL"),
		zap.Int64("userID", userID), zap.Int64("bookID", bookID))

	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return "", err
	}

	owned, err := s.repo.UserHasBook(ctx, userID, bookID)
	if err != nil {
		return "", err
	}
	if !owned {
		l.Warn("Download attempt without entitlement")
		metrics.Get().DownloadDenials.Add(ctx, 1)
		return "", fmt.Errorf("you must buy this book to download it: %w", models.ErrNotPurchased)
	}

	metrics.Get().Downloads.Add(ctx, 1)
	return book.PDFURL, nil
}

// InvalidateListCache implements catalog.Service.
func (s *ServiceImpl) InvalidateListCache() {
	s.cache.Delete(anonListCacheKey)
}
