// Package captions wraps YouTube caption retrieval and the noembed title
// lookup used by the URL ingestion path.
package captions

import (
	"context"
	"fmt"

	youtube "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

// Fragment is one timed caption entry. Offset and Duration are seconds.
type Fragment struct {
	Text     string
	Offset   float64
	Duration float64
}

// Client fetches caption tracks for a video URL.
type Client struct {
	yt     youtube.Client
	logger *zap.Logger
}

// NewClient creates a caption client.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{logger: logger}
}

// Fetch returns the video's caption fragments in chronological order for the
// given language. It fails when the video has no caption track.
func (c *Client) Fetch(ctx context.Context, url, lang string) ([]Fragment, error) {
	video, err := c.yt.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("resolve video: %w", err)
	}

	transcript, err := c.yt.GetTranscriptCtx(ctx, video, lang)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}

	fragments := make([]Fragment, 0, len(transcript))
	for _, seg := range transcript {
		fragments = append(fragments, Fragment{
			Text:     seg.Text,
			Offset:   float64(seg.StartMs) / 1000,
			Duration: float64(seg.Duration) / 1000,
		})
	}
	return fragments, nil
}
