package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/catalog"
	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
)

type CreateBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Description string  `json:"description"`
	PDFURL      string  `json:"pdf_url" binding:"required"`
	CoverURL    string  `json:"cover_url"`
}

// Handlers serves the admin dashboard endpoints. All routes sit behind
// the JWT middleware plus the admin role gate.
type Handlers struct {
	service Service
	catalog catalog.Service
	logger  *zap.Logger
}

func NewHandlers(service Service, catalogService catalog.Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		service: service,
		catalog: catalogService,
		logger:  logger,
	}
}

// CreateBookHandler handles POST /admin/books.
func (h *Handlers) CreateBookHandler(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "title, author, price, and pdf_url are required"})
		return
	}

	bookID, err := h.service.CreateBook(c.Request.Context(), BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Price:       req.Price,
		Description: req.Description,
		PDFURL:      req.PDFURL,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		h.logger.Error("Create book failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create book"})
		return
	}

	h.catalog.InvalidateListCache()
	c.JSON(http.StatusCreated, gin.H{"id": bookID, "message": "Book created successfully"})
}

// DeleteBookHandler handles DELETE /admin/books/:id.
func (h *Handlers) DeleteBookHandler(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid book id"})
		return
	}

	purchases, err := h.service.DeleteBook(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Book not found"})
			return
		}
		h.logger.Error("Delete book failed", zap.Error(err), zap.Int64("bookID", bookID))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to delete book"})
		return
	}

	h.catalog.InvalidateListCache()
	message := "Book deleted successfully"
	if purchases > 0 {
		message = fmt.Sprintf("Book deleted successfully (%d purchase(s) were associated with it)", purchases)
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"book_id":        bookID,
		"had_purchases":  purchases > 0,
		"purchase_count": purchases,
	})
}

// ListBooksHandler handles GET /admin/books.
func (h *Handlers) ListBooksHandler(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context())
	if err != nil {
		h.logger.Error("List admin books failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list books"})
		return
	}
	if books == nil {
		books = []models.AdminBook{}
	}
	c.JSON(http.StatusOK, books)
}

// ListOrdersHandler handles GET /admin/orders.
func (h *Handlers) ListOrdersHandler(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("List orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// StatsHandler handles GET /admin/stats.
func (h *Handlers) StatsHandler(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
