package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	"github.com/lijoraj-p-r/NoPaper/internal/notify"
	"github.com/lijoraj-p-r/NoPaper/internal/pkg/config"
)

// --- Mocks for Dependencies ---

type MockCheckoutRepo struct {
	mock.Mock
}

func (m *MockCheckoutRepo) CreateOrder(ctx context.Context, userID int64, book *models.Book, paymentRef string) (int64, error) {
	args := m.Called(ctx, userID, book, paymentRef)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCheckoutRepo) GetOrderForUser(ctx context.Context, orderID, userID int64) (*OrderRecord, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrderRecord), args.Error(1)
}

func (m *MockCheckoutRepo) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockCheckoutRepo) FirstBookTitle(ctx context.Context, orderID int64) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

type MockBooksRepo struct {
	mock.Mock
}

func (m *MockBooksRepo) ListBooks(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBooksRepo) GetBook(ctx context.Context, bookID int64) (*models.Book, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBooksRepo) PurchasedBookIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockBooksRepo) UserHasBook(ctx context.Context, userID, bookID int64) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentReceived(ctx context.Context, notice notify.PaymentNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func setupCheckoutServiceTest() (*ServiceImpl, *MockCheckoutRepo, *MockBooksRepo, *MockNotifier) {
	mockRepo := new(MockCheckoutRepo)
	mockBooks := new(MockBooksRepo)
	mockNotifier := new(MockNotifier)
	cfg := &config.Config{}
	cfg.UPI.PayeeVPA = "shop@upi"
	cfg.UPI.PayeeName = "NoPaper Books"
	service := NewService(mockRepo, mockBooks, mockNotifier, cfg, zap.NewNop())
	return service, mockRepo, mockBooks, mockNotifier
}

func TestCheckoutServiceImpl_Buy(t *testing.T) {
	ctx := context.Background()
	book := &models.Book{ID: 1, Title: "Learning Go", Price: 380}

	t.Run("success creates a pending order", func(t *testing.T) {
		service, mockRepo, mockBooks, _ := setupCheckoutServiceTest()
		mockBooks.On("GetBook", mock.Anything, int64(1)).Return(book, nil).Once()
		mockBooks.On("UserHasBook", mock.Anything, int64(42), int64(1)).Return(false, nil).Once()
		mockRepo.On("CreateOrder", mock.Anything, int64(42), book, mock.AnythingOfType("string")).
			Return(int64(17), nil).Once()

		payment, err := service.Buy(ctx, 42, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(17), payment.OrderID)
		assert.Equal(t, 380.0, payment.Amount)
		assert.Equal(t, "shop@upi", payment.UPIID)
		assert.Equal(t, models.OrderStatusPending, payment.Status)
		assert.NotEmpty(t, payment.PaymentRef)
		assert.Contains(t, payment.UPIURL, "upi://pay?")
		assert.Contains(t, payment.UPIURL, "am=380.00")
		mockRepo.AssertExpectations(t)
		mockBooks.AssertExpectations(t)
	})

	t.Run("already owned book is rejected", func(t *testing.T) {
		service, mockRepo, mockBooks, _ := setupCheckoutServiceTest()
		mockBooks.On("GetBook", mock.Anything, int64(1)).Return(book, nil).Once()
		mockBooks.On("UserHasBook", mock.Anything, int64(42), int64(1)).Return(true, nil).Once()

		_, err := service.Buy(ctx, 42, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrConflict))
		mockRepo.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("unknown book", func(t *testing.T) {
		service, _, mockBooks, _ := setupCheckoutServiceTest()
		mockBooks.On("GetBook", mock.Anything, int64(99)).Return(nil, models.ErrNotFound).Once()

		_, err := service.Buy(ctx, 42, 99)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestCheckoutServiceImpl_VerifyPayment(t *testing.T) {
	ctx := context.Background()
	pending := &OrderRecord{ID: 17, UserID: 42, UserEmail: "reader@example.com",
		Total: 380, Status: models.OrderStatusPending, PaymentRef: "ref-1234"}

	t.Run("success settles the order and notifies", func(t *testing.T) {
		service, mockRepo, _, mockNotifier := setupCheckoutServiceTest()
		mockRepo.On("GetOrderForUser", mock.Anything, int64(17), int64(42)).Return(pending, nil).Once()
		mockRepo.On("SetOrderStatus", mock.Anything, int64(17), models.OrderStatusPaid).Return(nil).Once()
		mockRepo.On("FirstBookTitle", mock.Anything, int64(17)).Return("Learning Go", nil).Once()
		mockNotifier.On("PaymentReceived", mock.Anything, mock.MatchedBy(func(n notify.PaymentNotice) bool {
			return n.OrderID == 17 && n.UserEmail == "reader@example.com" && n.BookTitle == "Learning Go"
		})).Return(nil).Once()

		status, err := service.VerifyPayment(ctx, 42, 17, "success")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, status)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("failed payment marks the order failed", func(t *testing.T) {
		service, mockRepo, _, mockNotifier := setupCheckoutServiceTest()
		mockRepo.On("GetOrderForUser", mock.Anything, int64(17), int64(42)).Return(pending, nil).Once()
		mockRepo.On("SetOrderStatus", mock.Anything, int64(17), models.OrderStatusFailed).Return(nil).Once()

		status, err := service.VerifyPayment(ctx, 42, 17, "failed")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusFailed, status)
		mockNotifier.AssertNotCalled(t, "PaymentReceived")
	})

	t.Run("re-verifying a paid order is a no-op", func(t *testing.T) {
		service, mockRepo, _, mockNotifier := setupCheckoutServiceTest()
		paid := *pending
		paid.Status = models.OrderStatusPaid
		mockRepo.On("GetOrderForUser", mock.Anything, int64(17), int64(42)).Return(&paid, nil).Once()

		status, err := service.VerifyPayment(ctx, 42, 17, "success")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, status)
		mockRepo.AssertNotCalled(t, "SetOrderStatus")
		mockNotifier.AssertNotCalled(t, "PaymentReceived")
	})

	t.Run("order of another user is not settled", func(t *testing.T) {
		service, mockRepo, _, _ := setupCheckoutServiceTest()
		mockRepo.On("GetOrderForUser", mock.Anything, int64(17), int64(7)).
			Return(nil, models.ErrNotFound).Once()

		_, err := service.VerifyPayment(ctx, 7, 17, "success")
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrNotFound))
		mockRepo.AssertNotCalled(t, "SetOrderStatus")
	})

	t.Run("notifier failure does not fail the verification", func(t *testing.T) {
		service, mockRepo, _, mockNotifier := setupCheckoutServiceTest()
		mockRepo.On("GetOrderForUser", mock.Anything, int64(17), int64(42)).Return(pending, nil).Once()
		mockRepo.On("SetOrderStatus", mock.Anything, int64(17), models.OrderStatusPaid).Return(nil).Once()
		mockRepo.On("FirstBookTitle", mock.Anything, int64(17)).Return("Learning Go", nil).Once()
		mockNotifier.On("PaymentReceived", mock.Anything, mock.Anything).
			Return(errors.New("smtp timeout")).Once()

		status, err := service.VerifyPayment(ctx, 42, 17, "success")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, status)
	})
}
