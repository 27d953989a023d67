// Package transcribe implements the ingestion and transcription stage: it
// turns an uploaded audio file or a YouTube URL into a normalized transcript
// record.
package transcribe

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/apperr"
	"github.com/echoscribe/backend/pkg/captions"
	"github.com/echoscribe/backend/pkg/speech"
)

// CaptionLanguage is the language hint sent to the caption collaborator.
const CaptionLanguage = "en"

// FallbackTitle is used when the remote title lookup fails.
const FallbackTitle = "YouTube Video"

// AudioInput is an uploaded audio payload.
type AudioInput struct {
	Bytes    []byte
	Filename string
	MimeType string
}

// Input is the tagged request variant: exactly one of Audio or YouTubeURL is
// set. The handler resolves precedence before the stage runs.
type Input struct {
	Audio      *AudioInput
	YouTubeURL string
}

// Record is the normalized transcription output.
type Record struct {
	Transcript string   `json:"transcript"`
	Duration   *float64 `json:"duration"`
	Title      string   `json:"title"`
	SourceType string   `json:"sourceType"`
	// AudioKey names the archive object assigned to an audio upload, when
	// archiving is enabled. Empty otherwise.
	AudioKey string `json:"audioKey,omitempty"`
}

// Transcriber is the speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (*speech.TranscriptionResult, error)
}

// CaptionFetcher is the caption-retrieval collaborator.
type CaptionFetcher interface {
	Fetch(ctx context.Context, url, lang string) ([]captions.Fragment, error)
}

// TitleLookup is the best-effort embed-metadata collaborator.
type TitleLookup interface {
	Lookup(ctx context.Context, url string) (string, error)
}

// DurationProbe reads duration from the audio container's own metadata.
// Best-effort: ok is false when the bytes are unreadable.
type DurationProbe func(audio []byte) (duration float64, ok bool)

// Service runs the ingestion stage. It holds no request state; every call is
// a self-contained sequence of at most two outbound calls.
type Service struct {
	transcriber Transcriber
	captions    CaptionFetcher
	titles      TitleLookup
	probe       DurationProbe
	maxBytes    int64
	logger      *zap.Logger
}

// NewService creates the ingestion stage with injected collaborators.
func NewService(transcriber Transcriber, captionFetcher CaptionFetcher, titles TitleLookup, probe DurationProbe, maxBytes int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		transcriber: transcriber,
		captions:    captionFetcher,
		titles:      titles,
		probe:       probe,
		maxBytes:    maxBytes,
		logger:      logger,
	}
}

// Transcribe converts the input into a Record. On failure no partial record
// is returned.
func (s *Service) Transcribe(ctx context.Context, in Input) (*Record, error) {
	hasAudio := in.Audio != nil && len(in.Audio.Bytes) > 0
	url := strings.TrimSpace(in.YouTubeURL)

	switch {
	case hasAudio:
		return s.transcribeAudio(ctx, in.Audio)
	case url != "":
		return s.transcribeURL(ctx, url)
	default:
		return nil, apperr.New(apperr.Validation, "please upload an audio file or provide a YouTube link")
	}
}

func (s *Service) transcribeAudio(ctx context.Context, audio *AudioInput) (*Record, error) {
	if int64(len(audio.Bytes)) > s.maxBytes {
		return nil, apperr.New(apperr.Validation, "file is too large, please upload an audio file smaller than 100MB")
	}

	result, err := s.transcriber.Transcribe(ctx, audio.Bytes, audio.Filename, audio.MimeType)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, upstreamMessage(err, "failed to transcribe the audio file, please try again"))
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, apperr.New(apperr.Upstream, "the transcription service returned no text for this file")
	}

	duration := firstDuration(
		func() *float64 { return result.Duration },
		func() *float64 { return lastSegmentEnd(result.Segments) },
		func() *float64 { return s.probeDuration(audio.Bytes) },
	)

	title := audio.Filename
	if title == "" {
		title = "audio-file"
	}

	return &Record{
		Transcript: result.Text,
		Duration:   duration,
		Title:      title,
		SourceType: "audio",
	}, nil
}

func (s *Service) transcribeURL(ctx context.Context, url string) (*Record, error) {
	fragments, err := s.captions.Fetch(ctx, url, CaptionLanguage)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream,
			upstreamMessage(err, "unable to fetch the video transcript, make sure the video has captions enabled"))
	}
	if len(fragments) == 0 {
		return nil, apperr.New(apperr.Upstream, "no transcript data was found for this video, try another link")
	}

	transcript := joinFragments(fragments)
	last := fragments[len(fragments)-1]
	duration := last.Offset + last.Duration

	// Title retrieval is non-critical: any lookup failure degrades to the
	// placeholder instead of failing the request.
	title, err := s.titles.Lookup(ctx, url)
	if err != nil || strings.TrimSpace(title) == "" {
		if err != nil {
			s.logger.Debug("title lookup failed", zap.Error(err))
		}
		title = FallbackTitle
	}

	return &Record{
		Transcript: transcript,
		Duration:   &duration,
		Title:      title,
		SourceType: "youtube",
	}, nil
}

func (s *Service) probeDuration(audio []byte) *float64 {
	if s.probe == nil {
		return nil
	}
	d, ok := s.probe(audio)
	if !ok {
		return nil
	}
	return &d
}

// joinFragments concatenates caption texts in order, collapsing all internal
// whitespace runs to single spaces.
func joinFragments(fragments []captions.Fragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, f.Text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// upstreamMessage forwards the collaborator's message when present, else the
// generic fallback.
func upstreamMessage(err error, fallback string) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return fallback
	}
	return err.Error()
}
