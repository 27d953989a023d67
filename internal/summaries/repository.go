package summaries

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/echoscribe/backend/internal/models"
)

// Repository handles summary persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a summaries repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a persisted summary for a user.
func (r *Repository) Create(ctx context.Context, s *models.Summary) error {
	const q = `INSERT INTO summaries (user_id, source_type, title, transcript, duration, summary, bullet_points, action_items, audio_key)
		VALUES ($1, $2, NULLIF($3,''), $4, $5, $6, $7, $8, NULLIF($9,''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		s.UserID, s.SourceType, s.Title, s.Transcript, s.Duration,
		s.Summary, s.BulletPoints, s.ActionItems, s.AudioKey,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID returns a summary by ID, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Summary, error) {
	const q = `SELECT id, user_id, source_type, COALESCE(title,''), transcript, duration, summary, bullet_points, action_items, COALESCE(audio_key,''), created_at
		FROM summaries WHERE id = $1`
	var s models.Summary
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.UserID, &s.SourceType, &s.Title, &s.Transcript, &s.Duration,
		&s.Summary, &s.BulletPoints, &s.ActionItems, &s.AudioKey, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListByUser returns a user's summaries newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Summary, error) {
	const q = `SELECT id, user_id, source_type, COALESCE(title,''), transcript, duration, summary, bullet_points, action_items, COALESCE(audio_key,''), created_at
		FROM summaries WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Summary
	for rows.Next() {
		var s models.Summary
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.SourceType, &s.Title, &s.Transcript, &s.Duration,
			&s.Summary, &s.BulletPoints, &s.ActionItems, &s.AudioKey, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Delete removes a user's summary. Returns false when no owned row matched.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM summaries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Stats aggregates a user's summaries for the dashboard.
type Stats struct {
	Total         int     `json:"total"`
	TotalDuration float64 `json:"total_duration"`
	AudioCount    int     `json:"audio_count"`
	YoutubeCount  int     `json:"youtube_count"`
}

// StatsByUser returns aggregate counts for a user.
func (r *Repository) StatsByUser(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(duration), 0),
		COUNT(*) FILTER (WHERE source_type = 'audio'),
		COUNT(*) FILTER (WHERE source_type = 'youtube')
		FROM summaries WHERE user_id = $1`
	var st Stats
	err := r.pool.QueryRow(ctx, q, userID).
		Scan(&st.Total, &st.TotalDuration, &st.AudioCount, &st.YoutubeCount)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
