package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/auth"
	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
)

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

// ListBooksHandler handles GET /books. Runs behind the optional JWT
// middleware: anonymous callers get the plain catalog, authenticated
// ones additionally get per-book purchase flags.
func (h *Handlers) ListBooksHandler(c *gin.Context) {
	var userID int64
	if c.GetBool("authenticated") {
		userID, _ = auth.UserIDFromContext(c)
	}

	books, err := h.service.ListBooks(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list books", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list books"})
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	c.JSON(http.StatusOK, books)
}

// DownloadHandler handles GET /books/:id/download. Requires auth; the
// service re-checks entitlement on every request.
func (h *Handlers) DownloadHandler(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid book id"})
		return
	}

	url, err := h.service.DownloadURL(c.Request.Context(), userID, bookID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Book not found"})
		case errors.Is(err, models.ErrNotPurchased):
			c.JSON(http.StatusForbidden, gin.H{"detail": "You must buy this book to download it"})
		default:
			h.logger.Error("Download failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Download failed"})
		}
		return
	}

	c.Redirect(http.StatusFound, url)
}
