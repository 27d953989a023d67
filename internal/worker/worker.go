package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/echoscribe/backend/pkg/queue"
	"github.com/echoscribe/backend/pkg/storage"
)

// ArchiveProcessor drains audio archive jobs: upload the spool file to S3,
// then remove it.
type ArchiveProcessor struct {
	s3     *storage.S3
	queue  *queue.Queue
	logger *zap.Logger
}

// NewArchiveProcessor creates an audio archive processor.
func NewArchiveProcessor(s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *ArchiveProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveProcessor{s3: s3, queue: q, logger: logger}
}

// Process executes one archive job.
func (p *ArchiveProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeAudioArchive {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.AudioArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	f, err := os.Open(payload.SpoolPath)
	if err != nil {
		// A missing spool file is unrecoverable; retrying cannot restore it.
		p.logger.Warn("spool file missing, dropping job",
			zap.String("job_id", job.ID), zap.String("spool_path", payload.SpoolPath))
		return nil
	}
	defer f.Close()

	if _, err := p.s3.Upload(ctx, payload.Key, payload.ContentType, f); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := os.Remove(payload.SpoolPath); err != nil {
		p.logger.Warn("remove spool file failed", zap.Error(err), zap.String("spool_path", payload.SpoolPath))
	}

	p.logger.Info("audio archive completed",
		zap.String("job_id", job.ID), zap.String("key", payload.Key), zap.Int64("size", payload.Size))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ArchiveProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("archive worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			// Cancellation surfaces through the blocking pop as an error.
			if ctx.Err() != nil {
				p.logger.Info("archive worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			sleep(ctx, queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			sleep(ctx, queue.RetryBackoff)
			continue
		}
	}
}

// sleep waits for d or until ctx ends, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
