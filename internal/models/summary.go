package models

import (
	"time"

	"github.com/google/uuid"
)

// Source types for a persisted summary.
const (
	SourceAudio   = "audio"
	SourceYouTube = "youtube"
)

// Summary is a persisted transcript + summary record owned by a user.
// AudioKey is set by the archive worker once the original upload reaches S3.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	SourceType   string    `json:"sourceType"`
	Title        string    `json:"title,omitempty"`
	Transcript   string    `json:"transcript"`
	Duration     *float64  `json:"duration"`
	Summary      string    `json:"summary"`
	BulletPoints []string  `json:"bulletPoints"`
	ActionItems  []string  `json:"actionItems"`
	AudioKey     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
