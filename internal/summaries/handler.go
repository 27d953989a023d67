package summaries

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/internal/models"
	"github.com/echoscribe/backend/pkg/response"
	"github.com/echoscribe/backend/pkg/storage"
)

// CreateRequest is the body for POST /summaries: the union of the two stage
// outputs plus the optional archive key from the transcription response.
type CreateRequest struct {
	Transcript   string   `json:"transcript" binding:"required"`
	SourceType   string   `json:"sourceType" binding:"required,oneof=audio youtube"`
	Title        string   `json:"title"`
	Duration     *float64 `json:"duration"`
	Summary      string   `json:"summary" binding:"required"`
	BulletPoints []string `json:"bulletPoints"`
	ActionItems  []string `json:"actionItems"`
	AudioKey     string   `json:"audioKey"`
}

// validate enforces what binding tags cannot: bulletPoints must be present
// but may be empty (a valid summarization output), and a missing actionItems
// defaults to the empty list.
func (r *CreateRequest) validate() error {
	if r.BulletPoints == nil {
		return errors.New("bulletPoints is required")
	}
	if r.ActionItems == nil {
		r.ActionItems = []string{}
	}
	return nil
}

// Handler handles summary persistence and browsing endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3 // optional: presigned audio downloads
	logger *zap.Logger
}

// NewHandler creates a summaries handler.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// Create handles POST /summaries.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	s := &models.Summary{
		UserID:       userID,
		SourceType:   req.SourceType,
		Title:        req.Title,
		Transcript:   req.Transcript,
		Duration:     req.Duration,
		Summary:      req.Summary,
		BulletPoints: req.BulletPoints,
		ActionItems:  req.ActionItems,
		AudioKey:     req.AudioKey,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		h.logger.Error("create summary failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to save summary")
		return
	}
	response.Created(c, s)
}

// List handles GET /summaries.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list summaries failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to list summaries")
		return
	}
	if list == nil {
		list = []models.Summary{}
	}
	response.OK(c, list)
}

// GetByID handles GET /summaries/:id. Foreign-owned records read as missing.
func (h *Handler) GetByID(c *gin.Context) {
	s, ok := h.ownedSummary(c)
	if !ok {
		return
	}
	response.OK(c, s)
}

// Delete handles DELETE /summaries/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid summary id")
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), id, userID)
	if err != nil {
		h.logger.Error("delete summary failed", zap.Error(err), zap.String("summary_id", id.String()))
		response.Internal(c, "failed to delete summary")
		return
	}
	if !deleted {
		response.NotFound(c, "summary not found")
		return
	}
	response.NoContent(c)
}

// Stats handles GET /summaries/stats for the dashboard.
func (h *Handler) Stats(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	st, err := h.repo.StatsByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("summary stats failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load stats")
		return
	}
	response.OK(c, st)
}

// AudioURL handles GET /summaries/:id/audio-url. Returns a presigned download
// for the archived upload when one exists.
func (h *Handler) AudioURL(c *gin.Context) {
	s, ok := h.ownedSummary(c)
	if !ok {
		return
	}
	if s.AudioKey == "" {
		response.NotFound(c, "no archived audio for this summary")
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "audio archive not configured")
		return
	}

	url, err := h.s3.PresignDownload(c.Request.Context(), s.AudioKey)
	if err != nil {
		h.logger.Error("presign audio download failed", zap.Error(err), zap.String("summary_id", s.ID.String()))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"download_url": url, "expires_in": int(h.s3.PresignExpire().Seconds())})
}

// ownedSummary loads the :id summary and enforces ownership, writing the
// error response itself when the record is unavailable.
func (h *Handler) ownedSummary(c *gin.Context) (*models.Summary, bool) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid summary id")
		return nil, false
	}

	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get summary failed", zap.Error(err), zap.String("summary_id", id.String()))
		response.Internal(c, "failed to load summary")
		return nil, false
	}
	if s == nil || s.UserID != userID {
		response.NotFound(c, "summary not found")
		return nil, false
	}
	return s, true
}
