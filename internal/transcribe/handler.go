package transcribe

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/apperr"
	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/pkg/response"
)

// Spooler hands a successful audio upload to the background archive pipeline
// and returns the S3 key the worker will write. Optional; nil disables
// archiving.
type Spooler interface {
	Spool(ctx context.Context, userID uuid.UUID, audio *AudioInput) (key string, err error)
}

// Handler handles the transcription HTTP endpoint.
type Handler struct {
	service *Service
	spooler Spooler
	logger  *zap.Logger
}

// NewHandler creates a transcribe handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// SetSpooler sets the optional audio archive spooler.
func (h *Handler) SetSpooler(s Spooler) { h.spooler = s }

// Transcribe handles POST /transcribe. The multipart form carries either an
// audio "file" or a "youtubeUrl" field.
func (h *Handler) Transcribe(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	in, err := h.parseInput(c)
	if err != nil {
		respondError(c, err)
		return
	}

	record, err := h.service.Transcribe(c.Request.Context(), in)
	if err != nil {
		h.logger.Warn("transcription failed",
			zap.Error(err), zap.String("user_id", userID.String()))
		respondError(c, err)
		return
	}

	if record.SourceType == "audio" && h.spooler != nil {
		// Archiving never affects the pipeline response.
		key, err := h.spooler.Spool(c.Request.Context(), userID, in.Audio)
		if err != nil {
			h.logger.Warn("audio archive spool failed", zap.Error(err))
		} else {
			record.AudioKey = key
		}
	}

	response.OK(c, record)
}

// parseInput builds the tagged stage input from the multipart form. An
// uploaded file takes precedence over a pasted URL.
func (h *Handler) parseInput(c *gin.Context) (Input, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		// Not a usable upload; the URL field may still carry the request.
		file = nil
	}
	youtubeURL := c.PostForm("youtubeUrl")

	if file == nil || header == nil || header.Size == 0 {
		if file != nil {
			file.Close()
		}
		return Input{YouTubeURL: youtubeURL}, nil
	}
	defer file.Close()

	// Reject oversized uploads before buffering them.
	if header.Size > h.service.maxBytes {
		return Input{}, apperr.New(apperr.Validation, "file is too large, please upload an audio file smaller than 100MB")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return Input{}, apperr.Wrap(err, apperr.Validation, "failed to read the uploaded file")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return Input{Audio: &AudioInput{
		Bytes:    data,
		Filename: header.Filename,
		MimeType: mimeType,
	}}, nil
}

func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.Upstream:
		response.BadRequest(c, apperr.MessageOf(err))
	case apperr.NotFound:
		response.NotFound(c, apperr.MessageOf(err))
	default:
		response.Internal(c, apperr.MessageOf(err))
	}
}
