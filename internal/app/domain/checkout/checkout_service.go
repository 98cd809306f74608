package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/catalog"
	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	"github.com/lijoraj-p-r/NoPaper/internal/notify"
	"github.com/lijoraj-p-r/NoPaper/internal/observability/metrics"
	"github.com/lijoraj-p-r/NoPaper/internal/pkg/config"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the checkout business logic contract.
type Service interface {
	// Buy creates a pending order for the book and returns the UPI
	// payment request the client drives the out-of-band payment with.
	Buy(ctx context.Context, userID, bookID int64) (*models.PaymentRequest, error)
	// VerifyPayment settles the order based on the user-asserted status.
	// The returned status is authoritative: "paid" only when the server
	// accepted the confirmation.
	VerifyPayment(ctx context.Context, userID, orderID int64, status string) (string, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *zap.Logger
	repo     Repository
	books    catalog.Repository
	notifier notify.Notifier
	cfg      *config.Config
}

// NewService creates a new checkout service instance.
func NewService(repo Repository, books catalog.Repository, notifier notify.Notifier, cfg *config.Config, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		books:    books,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Buy implements checkout.Service.
func (s *ServiceImpl) Buy(ctx context.Context, userID, bookID int64) (*models.PaymentRequest, error) {
	l := s.logger.With(zap.String("method", "Buy"),
		zap.Int64("userID", userID), zap.Int64("bookID", bookID))

	tracer := otel.Tracer("nopaper")
	ctx, span := tracer.Start(ctx, "CheckoutService.Buy", trace.WithAttributes(
		attribute.Int64("book_id", bookID),
	))
	defer span.End()

	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		span.SetStatus(codes.Error, "Book lookup failed")
		return nil, err
	}

	owned, err := s.books.UserHasBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if owned {
		l.Info("Rejecting purchase of already owned book")
		return nil, fmt.Errorf("book already purchased: %w", models.ErrConflict)
	}

	paymentRef := uuid.NewString()
	orderID, err := s.repo.CreateOrder(ctx, userID, book, paymentRef)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Order creation failed")
		return nil, err
	}

	l.Info("Pending order created", zap.Int64("orderID", orderID))
	metrics.Get().OrdersCreated.Add(ctx, 1)
	span.SetStatus(codes.Ok, "Order created")

	return &models.PaymentRequest{
		OrderID:    orderID,
		Amount:     book.Price,
		UPIID:      s.cfg.UPI.PayeeVPA,
		UPIURL:     BuildUPIURL(s.cfg.UPI.PayeeVPA, s.cfg.UPI.PayeeName, book.Price, orderID, paymentRef),
		Status:     models.OrderStatusPending,
		PaymentRef: paymentRef,
	}, nil
}

// VerifyPayment implements checkout.Service.
func (s *ServiceImpl) VerifyPayment(ctx context.Context, userID, orderID int64, status string) (string, error) {
	l := s.logger.With(zap.String("method", "VerifyPayment"),
		zap.Int64("userID", userID), zap.Int64("orderID", orderID))

	order, err := s.repo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return "", err
	}

	// Re-verifying an already settled order is a no-op; the stored
	// status stays authoritative.
	if order.Status == models.OrderStatusPaid {
		return models.OrderStatusPaid, nil
	}

	if !strings.EqualFold(status, "success") {
		if err := s.repo.SetOrderStatus(ctx, orderID, models.OrderStatusFailed); err != nil {
			return "", err
		}
		l.Info("Payment reported as failed")
		metrics.Get().PaymentsFailed.Add(ctx, 1)
		return models.OrderStatusFailed, nil
	}

	if err := s.repo.SetOrderStatus(ctx, orderID, models.OrderStatusPaid); err != nil {
		return "", err
	}

	l.Info("Payment verified", zap.Float64("amount", order.Total))
	metrics.Get().PaymentsVerified.Add(ctx, 1)
	s.sendPaymentNotice(ctx, order)

	return models.OrderStatusPaid, nil
}

// sendPaymentNotice mails the shop admin about a settled order. Failures
// degrade to a log line; the payment itself is already settled.
func (s *ServiceImpl) sendPaymentNotice(ctx context.Context, order *OrderRecord) {
	if s.notifier == nil {
		return
	}

	title, err := s.repo.FirstBookTitle(ctx, order.ID)
	if err != nil {
		s.logger.Warn("Could not resolve book title for payment notice", zap.Error(err))
		title = "Unknown"
	}

	notice := notify.PaymentNotice{
		OrderID:    order.ID,
		UserEmail:  order.UserEmail,
		BookTitle:  title,
		Amount:     order.Total,
		Status:     models.OrderStatusPaid,
		PaymentRef: order.PaymentRef,
		PaidAt:     time.Now(),
	}
	if err := s.notifier.PaymentReceived(ctx, notice); err != nil {
		s.logger.Warn("Payment notification failed", zap.Error(err), zap.Int64("orderID", order.ID))
	}
}
