// Package speech wraps the OpenAI API as the transcription and
// structured-completion collaborators.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrMissingAPIKey reports absent or placeholder OpenAI credentials.
var ErrMissingAPIKey = errors.New("missing OpenAI configuration: set OPENAI_API_KEY in your environment")

// Config holds client settings.
type Config struct {
	APIKey          string
	TranscribeModel string
	SummaryModel    string
}

// Segment is one timed slice of a transcription.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// TranscriptionResult is the normalized transcription collaborator output.
// Duration is nil when the service did not report one.
type TranscriptionResult struct {
	Text     string
	Duration *float64
	Segments []Segment
}

// Client calls OpenAI for audio transcription and chat completion.
type Client struct {
	api    *openai.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Client. Missing or placeholder credentials are a hard error:
// the client is constructed once at process start and injected into both
// stages, so the failure surfaces before any request is served.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.APIKey == "your_openai_api_key" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: openai.NewClient(cfg.APIKey), cfg: cfg, logger: logger}, nil
}

// Transcribe sends raw audio bytes for transcription, requesting verbose JSON
// so segment timings come back when the model supports them.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (*TranscriptionResult, error) {
	if filename == "" {
		filename = "audio-file"
	}
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:       c.cfg.TranscribeModel,
		FilePath:    filename,
		Reader:      bytes.NewReader(audio),
		Format:      openai.AudioResponseFormatVerboseJSON,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	result := &TranscriptionResult{Text: resp.Text}
	if resp.Duration > 0 {
		d := resp.Duration
		result.Duration = &d
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return result, nil
}

// Complete sends a system instruction and user message to the summary model
// and returns the raw reply text.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.SummaryModel,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
