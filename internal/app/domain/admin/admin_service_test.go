package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
)

// --- Mocks for Dependencies ---

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) CreateBook(ctx context.Context, in BookInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepo) DeleteBook(ctx context.Context, bookID int64) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepo) ListBooksWithCounts(ctx context.Context) ([]models.AdminBook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminBook), args.Error(1)
}

func (m *MockAdminRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockAdminRepo) CountBooks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepo) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepo) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepo) RevenueByStatus(ctx context.Context, status string) (float64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(float64), args.Error(1)
}

func setupAdminServiceTest() (*ServiceImpl, *MockAdminRepo) {
	mockRepo := new(MockAdminRepo)
	service := NewService(mockRepo, zap.NewNop())
	return service, mockRepo
}

func validBookInput() BookInput {
	return BookInput{
		Title:  "Learning Go",
		Author: "Jon Bodner",
		Price:  380,
		PDFURL: "https://cdn.example.com/lg.pdf",
	}
}

func TestAdminServiceImpl_CreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service, mockRepo := setupAdminServiceTest()
		in := validBookInput()
		mockRepo.On("CreateBook", mock.Anything, in).Return(int64(5), nil).Once()

		id, err := service.CreateBook(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		mockRepo.AssertExpectations(t)
	})

	t.Run("validation failures", func(t *testing.T) {
		service, mockRepo := setupAdminServiceTest()

		cases := []struct {
			name   string
			mutate func(*BookInput)
		}{
			{"missing title", func(in *BookInput) { in.Title = "  " }},
			{"missing author", func(in *BookInput) { in.Author = "" }},
			{"zero price", func(in *BookInput) { in.Price = 0 }},
			{"negative price", func(in *BookInput) { in.Price = -10 }},
			{"bad pdf url", func(in *BookInput) { in.PDFURL = "ftp://cdn.example.com/lg.pdf" }},
			{"bad cover url", func(in *BookInput) { in.CoverURL = "not-a-url" }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := validBookInput()
				tc.mutate(&in)

				_, err := service.CreateBook(ctx, in)
				require.Error(t, err)
				assert.True(t, errors.Is(err, models.ErrValidation))
			})
		}
		mockRepo.AssertNotCalled(t, "CreateBook")
	})
}

func TestAdminServiceImpl_DeleteBook(t *testing.T) {
	t.Run("reports prior purchases", func(t *testing.T) {
		service, mockRepo := setupAdminServiceTest()
		mockRepo.On("DeleteBook", mock.Anything, int64(5)).Return(int64(3), nil).Once()

		purchases, err := service.DeleteBook(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(3), purchases)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown book", func(t *testing.T) {
		service, mockRepo := setupAdminServiceTest()
		mockRepo.On("DeleteBook", mock.Anything, int64(99)).Return(int64(0), models.ErrNotFound).Once()

		_, err := service.DeleteBook(context.Background(), 99)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestAdminServiceImpl_Stats(t *testing.T) {
	t.Run("aggregates all four counters", func(t *testing.T) {
		service, mockRepo := setupAdminServiceTest()
		mockRepo.On("CountBooks", mock.Anything).Return(int64(12), nil).Once()
		mockRepo.On("CountUsersByRole", mock.Anything, models.RoleUser).Return(int64(40), nil).Once()
		mockRepo.On("CountOrdersByStatus", mock.Anything, models.OrderStatusPaid).Return(int64(25), nil).Once()
		mockRepo.On("RevenueByStatus", mock.Anything, models.OrderStatusPaid).Return(9500.0, nil).Once()

		stats, err := service.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(12), stats.TotalBooks)
		assert.Equal(t, int64(40), stats.TotalUsers)
		assert.Equal(t, int64(25), stats.TotalOrders)
		assert.Equal(t, 9500.0, stats.TotalRevenue)
		mockRepo.AssertExpectations(t)
	})

	t.Run("any aggregate failure fails the whole call", func(t *testing.T) {
		service, mockRepo := setupAdminServiceTest()
		repoErr := errors.New("db down")
		mockRepo.On("CountBooks", mock.Anything).Return(int64(0), repoErr).Once()
		mockRepo.On("CountUsersByRole", mock.Anything, models.RoleUser).Return(int64(40), nil).Maybe()
		mockRepo.On("CountOrdersByStatus", mock.Anything, models.OrderStatusPaid).Return(int64(25), nil).Maybe()
		mockRepo.On("RevenueByStatus", mock.Anything, models.OrderStatusPaid).Return(9500.0, nil).Maybe()

		_, err := service.Stats(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
	})
}
