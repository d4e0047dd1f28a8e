package lesson

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/view"
	"github.com/mo-amir99/coursetrack-server-go/internal/middleware"
	"github.com/mo-amir99/coursetrack-server-go/internal/services/statscache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursetrack-server-go/pkg/metrics"
	"github.com/mo-amir99/coursetrack-server-go/pkg/request"
	"github.com/mo-amir99/coursetrack-server-go/pkg/response"
)

// Handler processes lesson HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	stats  *statscache.Service
	now    func() time.Time
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, stats *statscache.Service) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		stats:  stats,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the lessons visible to the caller with the caller's progress.
func (h *Handler) List(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	items, err := ListForUser(c.Request.Context(), h.db, usr.ID)
	if err != nil {
		h.respondError(c, err, "failed to list lessons")
		return
	}

	response.OK(c, items)
}

// GetByID returns one lesson with the caller's progress.
func (h *Handler) GetByID(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.AppError(h.logger, c, apperrors.Validation("Invalid lesson id.", err))
		return
	}

	detail, err := DetailForUser(c.Request.Context(), h.db, usr.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	response.OK(c, detail)
}

// Create inserts a new lesson and starts the caller's view of it.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req struct {
		Title     string          `json:"title" binding:"required,max=100"`
		VideoLink string          `json:"video_link" binding:"required,video_url"`
		Duration  request.Seconds `json:"duration" binding:"required,gt=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	detail, err := CreateForUser(c.Request.Context(), h.db, usr.ID, CreateInput{
		Title:     req.Title,
		VideoLink: req.VideoLink,
		Duration:  int(req.Duration),
	}, h.now())
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	metrics.LessonCreated()
	h.stats.Invalidate(c.Request.Context())

	response.Created(c, detail, "")
}

// Update modifies lesson fields and records the caller's viewing time.
// The title is immutable and silently ignored when sent.
func (h *Handler) Update(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.AppError(h.logger, c, apperrors.Validation("Invalid lesson id.", err))
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	input, err := parseUpdate(payload)
	if err != nil {
		h.respondError(c, err, "invalid lesson payload")
		return
	}

	detail, completed, err := Update(c.Request.Context(), h.db, usr.ID, id, input, h.now())
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	if completed {
		metrics.ViewCompleted()
	}
	h.stats.Invalidate(c.Request.Context())

	response.OK(c, detail)
}

func parseUpdate(payload map[string]interface{}) (UpdateInput, error) {
	var input UpdateInput

	if raw, exists := payload["video_link"]; exists {
		link, err := request.ReadString(raw)
		if err != nil {
			return input, ErrVideoLinkInvalid
		}
		input.VideoLink = &link
	}

	if raw, exists := payload["duration"]; exists {
		seconds, err := request.ReadDuration(raw)
		if err != nil {
			return input, ErrDurationInvalid
		}
		input.Duration = &seconds
	}

	if raw, exists := payload["viewing_time"]; exists {
		seconds, err := request.ReadNonNegativeInt(raw)
		if err != nil {
			return input, ErrViewingTimeInvalid
		}
		input.ViewingTime = &seconds
	}

	return input, nil
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var missing *MissingError

	switch {
	case errors.As(err, &missing):
		status = http.StatusNotFound
		message = "Lesson \"" + missing.Title + "\" not found."
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, view.ErrViewNotFound):
		status = http.StatusNotFound
		message = "No viewing record for this lesson."
	case errors.Is(err, ErrTitleTaken):
		response.AppError(h.logger, c, apperrors.Conflict("A lesson with this title already exists.", err))
		return
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Lesson title is required."
	case errors.Is(err, ErrTitleLength):
		status = http.StatusBadRequest
		message = "Lesson title cannot exceed 100 characters."
	case errors.Is(err, ErrVideoLinkInvalid):
		status = http.StatusBadRequest
		message = "Video link must be an absolute http or https URL."
	case errors.Is(err, ErrDurationInvalid):
		status = http.StatusBadRequest
		message = "Lesson duration must be a positive number of seconds or HH:MM:SS."
	case errors.Is(err, ErrViewingTimeInvalid), errors.Is(err, view.ErrViewingTimeInvalid):
		status = http.StatusBadRequest
		message = "Viewing time must be a non-negative integer number of seconds."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
