// Package summarize implements the summarization stage: it turns a transcript
// plus optional context into a validated structured summary.
package summarize

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/apperr"
)

// Request is the stage input. Only Transcript is required.
type Request struct {
	Transcript string   `json:"transcript"`
	Title      string   `json:"title,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
	SourceType string   `json:"sourceType,omitempty"`
}

// Record is the validated structured summary.
type Record struct {
	Summary      string   `json:"summary"`
	BulletPoints []string `json:"bulletPoints"`
	ActionItems  []string `json:"actionItems"`
}

// Completer is the structured-completion collaborator: it returns raw text
// expected, but not guaranteed, to be JSON.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}

// Service runs the summarization stage.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// NewService creates the summarization stage with an injected completer.
func NewService(completer Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, logger: logger}
}

// Summarize builds the prompt, calls the model and validates its reply. The
// validated record is returned unchanged: no truncation or sanitization of
// model-authored text.
func (s *Service) Summarize(ctx context.Context, req Request) (*Record, error) {
	req.Transcript = strings.TrimSpace(req.Transcript)
	if req.Transcript == "" {
		return nil, apperr.New(apperr.Validation, "transcript is required for summarization")
	}

	raw, err := s.completer.Complete(ctx, systemPrompt, buildUserMessage(req), Temperature)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "failed to generate summary, please try again")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, apperr.New(apperr.ModelResponse, "unable to parse summary response, please try again")
	}

	return parseRecord(raw)
}

// parseRecord parses and structurally validates the model's reply. The model
// is prompted for, but not guaranteed to emit, well-formed JSON; malformed or
// partially-typed data must never reach storage or the UI.
func parseRecord(raw string) (*Record, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, apperr.Wrap(err, apperr.ModelResponse, "model response was not valid JSON, please try again")
	}

	summary, ok := parsed["summary"].(string)
	bullets, bulletsOK := stringSlice(parsed["bulletPoints"])
	actions, actionsOK := stringSlice(parsed["actionItems"])
	if !ok || !bulletsOK || !actionsOK {
		return nil, apperr.New(apperr.ModelResponse, "model response did not match the required structure, please try again")
	}

	return &Record{Summary: summary, BulletPoints: bullets, ActionItems: actions}, nil
}

// stringSlice converts a decoded JSON value to []string, rejecting anything
// that is not an array of strings. A missing key fails here too.
func stringSlice(v interface{}) ([]string, bool) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
