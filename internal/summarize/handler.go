package summarize

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/apperr"
	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/pkg/response"
)

// Handler handles the summarization HTTP endpoint.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a summarize handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Summarize handles POST /summarize.
func (h *Handler) Summarize(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	record, err := h.service.Summarize(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("summarization failed",
			zap.Error(err), zap.String("user_id", userID.String()))
		respondError(c, err)
		return
	}

	response.OK(c, record)
}

func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.Upstream:
		response.BadRequest(c, apperr.MessageOf(err))
	default:
		response.Internal(c, apperr.MessageOf(err))
	}
}
