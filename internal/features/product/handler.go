package product

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/view"
	"github.com/mo-amir99/coursetrack-server-go/internal/middleware"
	"github.com/mo-amir99/coursetrack-server-go/internal/services/statscache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursetrack-server-go/pkg/metrics"
	"github.com/mo-amir99/coursetrack-server-go/pkg/response"
)

// Handler processes product HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	stats  *statscache.Service
	now    func() time.Time
}

// NewHandler constructs a product handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, stats *statscache.Service) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		stats:  stats,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the products the caller has access to.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	products, err := ListForUser(c.Request.Context(), h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list products", err)
		return
	}

	summaries, err := Summaries(c.Request.Context(), h.db, products, c.Request.URL.Path)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list products", err)
		return
	}

	response.OK(c, summaries)
}

// GetByID returns a product with the caller's progress on its lessons.
func (h *Handler) GetByID(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.AppError(h.logger, c, apperrors.Validation("Invalid product id.", err))
		return
	}

	detail, err := DetailForUser(c.Request.Context(), h.db, usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load product")
		return
	}

	response.OK(c, detail)
}

// Create inserts a product owned by the caller with its lessons and access grants.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req struct {
		Title  string `json:"title" binding:"required,max=100"`
		Access []struct {
			Username string `json:"username" binding:"required"`
		} `json:"access" binding:"dive"`
		Lessons []struct {
			Title string `json:"title" binding:"required"`
		} `json:"lessons" binding:"dive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid product payload", err)
		return
	}

	input := CreateInput{Title: req.Title}
	for _, a := range req.Access {
		input.Usernames = append(input.Usernames, a.Username)
	}
	for _, l := range req.Lessons {
		input.LessonTitles = append(input.LessonTitles, l.Title)
	}

	p, err := Create(c.Request.Context(), h.db, usr.ID, input, h.now())
	if err != nil {
		h.respondError(c, err, "failed to create product")
		return
	}

	metrics.ProductCreated()
	h.stats.Invalidate(c.Request.Context())

	summaries, err := Summaries(c.Request.Context(), h.db, []Product{p}, c.Request.URL.Path)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load product", err)
		return
	}

	response.Created(c, summaries[0], "")
}

// Delete removes a product owned by the caller.
func (h *Handler) Delete(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.AppError(h.logger, c, apperrors.Validation("Invalid product id.", err))
		return
	}

	if err := Delete(c.Request.Context(), h.db, usr.ID, id); err != nil {
		h.respondError(c, err, "failed to delete product")
		return
	}

	h.stats.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// Statistics returns engagement figures for every product.
func (h *Handler) Statistics(c *gin.Context) {
	ctx := c.Request.Context()

	var rows []Aggregate
	if !h.stats.Load(ctx, &rows) {
		var err error
		if rows, err = Aggregates(ctx, h.db); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute statistics", err)
			return
		}
		h.stats.Store(ctx, rows)
	}

	stats, err := WithCoefficients(ctx, h.db, rows)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to compute statistics", err)
		return
	}

	response.OK(c, stats)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var (
		missingUser   *user.MissingError
		missingLesson *lesson.MissingError
	)

	switch {
	case errors.As(err, &missingUser):
		appErr := apperrors.NotFound("User \""+missingUser.Username+"\" not found.", err)
		response.AppError(h.logger, c, appErr.WithFields(map[string]string{"access": missingUser.Username}))
		return
	case errors.As(err, &missingLesson):
		appErr := apperrors.NotFound("Lesson \""+missingLesson.Title+"\" not found.", err)
		response.AppError(h.logger, c, appErr.WithFields(map[string]string{"lessons": missingLesson.Title}))
		return
	case errors.Is(err, ErrProductNotFound):
		status = http.StatusNotFound
		message = "Product not found."
	case errors.Is(err, view.ErrViewNotFound):
		status = http.StatusNotFound
		message = "No viewing record for a lesson of this product."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Product title is required."
	case errors.Is(err, ErrTitleLength):
		status = http.StatusBadRequest
		message = "Product title cannot exceed 100 characters."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
