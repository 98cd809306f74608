package checkout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/auth"
	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
)

type BuyRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

type VerifyResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type Handlers struct {
	service Service
	logger  *zap.Logger
}

func NewHandlers(service Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// BuyHandler handles POST /buy. Requires auth.
func (h *Handlers) BuyHandler(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "book_id is required"})
		return
	}

	payment, err := h.service.Buy(c.Request.Context(), userID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Book not found"})
		case errors.Is(err, models.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"detail": "Book already purchased"})
		default:
			h.logger.Error("Buy failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not create order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Redirecting to payment",
		"order_id":    payment.OrderID,
		"amount":      payment.Amount,
		"upi_id":      payment.UPIID,
		"upi_url":     payment.UPIURL,
		"status":      payment.Status,
		"payment_ref": payment.PaymentRef,
	})
}

// VerifyPaymentHandler handles POST /payment/verify?order_id=&status=.
// Requires auth; only the order's owner can settle it.
func (h *Handlers) VerifyPaymentHandler(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	orderID, err := strconv.ParseInt(c.Query("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid order_id"})
		return
	}
	status := c.DefaultQuery("status", "success")

	finalStatus, err := h.service.VerifyPayment(c.Request.Context(), userID, orderID, status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
		default:
			h.logger.Error("Payment verification failed", zap.Error(err), zap.Int64("orderID", orderID))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Payment verification failed"})
		}
		return
	}

	message := "Payment successful"
	if finalStatus != models.OrderStatusPaid {
		message = "Payment failed"
	}
	c.JSON(http.StatusOK, VerifyResponse{
		Message: message,
		OrderID: orderID,
		Status:  finalStatus,
	})
}
