package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/transcribe"
	"github.com/echoscribe/backend/pkg/queue"
	"github.com/echoscribe/backend/pkg/storage"
)

// Spooler writes a successful upload to a local spool file and enqueues an
// archive job for it. Implements transcribe.Spooler.
type Spooler struct {
	queue    *queue.Queue
	spoolDir string // empty = os.TempDir()
	logger   *zap.Logger
}

// NewSpooler creates an archive spooler.
func NewSpooler(q *queue.Queue, spoolDir string, logger *zap.Logger) *Spooler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spooler{queue: q, spoolDir: spoolDir, logger: logger}
}

// Spool persists the audio bytes to disk and enqueues the archive job. The
// returned key is where the worker will place the object.
func (s *Spooler) Spool(ctx context.Context, userID uuid.UUID, audio *transcribe.AudioInput) (string, error) {
	dir := s.spoolDir
	if dir == "" {
		dir = os.TempDir()
	}

	jobID := uuid.New()
	path := filepath.Join(dir, "echoscribe-"+jobID.String()+filepath.Ext(audio.Filename))
	if err := os.WriteFile(path, audio.Bytes, 0o600); err != nil {
		return "", fmt.Errorf("write spool file: %w", err)
	}

	key := storage.AudioKey(userID.String(), jobID.String(), audio.Filename)
	err := s.queue.EnqueueAudioArchive(ctx, queue.AudioArchivePayload{
		SpoolPath:   path,
		Key:         key,
		ContentType: audio.MimeType,
		Size:        int64(len(audio.Bytes)),
	})
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("enqueue archive job: %w", err)
	}

	s.logger.Debug("audio upload spooled",
		zap.String("key", key), zap.Int("size", len(audio.Bytes)))
	return key, nil
}
