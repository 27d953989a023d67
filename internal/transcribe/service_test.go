package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoscribe/backend/internal/apperr"
	"github.com/echoscribe/backend/pkg/captions"
	"github.com/echoscribe/backend/pkg/speech"
)

type fakeTranscriber struct {
	result *speech.TranscriptionResult
	err    error
	calls  int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _, _ string) (*speech.TranscriptionResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeCaptions struct {
	fragments []captions.Fragment
	err       error
	calls     int
}

func (f *fakeCaptions) Fetch(_ context.Context, _, _ string) ([]captions.Fragment, error) {
	f.calls++
	return f.fragments, f.err
}

type fakeTitles struct {
	title string
	err   error
}

func (f *fakeTitles) Lookup(_ context.Context, _ string) (string, error) {
	return f.title, f.err
}

func newTestService(t *fakeTranscriber, c *fakeCaptions, titles *fakeTitles, probe DurationProbe) *Service {
	return NewService(t, c, titles, probe, 100*1024*1024, nil)
}

func floatPtr(v float64) *float64 { return &v }

func TestTranscribeRequiresInput(t *testing.T) {
	transcriber := &fakeTranscriber{}
	captionFetcher := &fakeCaptions{}
	svc := newTestService(transcriber, captionFetcher, &fakeTitles{}, nil)

	_, err := svc.Transcribe(context.Background(), Input{})

	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, 0, transcriber.calls, "no outbound call on missing input")
	assert.Equal(t, 0, captionFetcher.calls)
}

func TestTranscribeRejectsOversizedUpload(t *testing.T) {
	transcriber := &fakeTranscriber{}
	svc := NewService(transcriber, &fakeCaptions{}, &fakeTitles{}, nil, 10, nil)

	_, err := svc.Transcribe(context.Background(), Input{
		Audio: &AudioInput{Bytes: make([]byte, 11), Filename: "big.mp3"},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, 0, transcriber.calls, "size ceiling must trip before the upstream call")
}

func TestAudioDurationPrecedence(t *testing.T) {
	segments := []speech.Segment{{Start: 0, End: 4.5}, {Start: 4.5, End: 8}}

	tests := []struct {
		name     string
		result   *speech.TranscriptionResult
		probe    DurationProbe
		expected *float64
	}{
		{
			name:     "explicit duration wins over segments and probe",
			result:   &speech.TranscriptionResult{Text: "hi", Duration: floatPtr(12.5), Segments: segments},
			probe:    func([]byte) (float64, bool) { return 99, true },
			expected: floatPtr(12.5),
		},
		{
			name:     "last segment end when no explicit duration",
			result:   &speech.TranscriptionResult{Text: "hi", Segments: segments},
			probe:    func([]byte) (float64, bool) { return 99, true },
			expected: floatPtr(8),
		},
		{
			name:     "container probe when no duration and no segments",
			result:   &speech.TranscriptionResult{Text: "hi"},
			probe:    func([]byte) (float64, bool) { return 42, true },
			expected: floatPtr(42),
		},
		{
			name:     "null when nothing reports a duration",
			result:   &speech.TranscriptionResult{Text: "hi"},
			probe:    func([]byte) (float64, bool) { return 0, false },
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakeTranscriber{result: tt.result}, &fakeCaptions{}, &fakeTitles{}, tt.probe)

			record, err := svc.Transcribe(context.Background(), Input{
				Audio: &AudioInput{Bytes: []byte("audio"), Filename: "talk.mp3"},
			})

			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, record.Duration)
			} else {
				require.NotNil(t, record.Duration)
				assert.Equal(t, *tt.expected, *record.Duration)
			}
		})
	}
}

func TestAudioRecordShape(t *testing.T) {
	svc := newTestService(&fakeTranscriber{
		result: &speech.TranscriptionResult{Text: "full transcript"},
	}, &fakeCaptions{}, &fakeTitles{}, nil)

	record, err := svc.Transcribe(context.Background(), Input{
		Audio: &AudioInput{Bytes: []byte("audio"), Filename: "standup.m4a", MimeType: "audio/mp4"},
	})

	require.NoError(t, err)
	assert.Equal(t, "full transcript", record.Transcript)
	assert.Equal(t, "standup.m4a", record.Title)
	assert.Equal(t, "audio", record.SourceType)
}

func TestAudioEmptyTranscriptIsUpstreamFailure(t *testing.T) {
	svc := newTestService(&fakeTranscriber{
		result: &speech.TranscriptionResult{Text: "   "},
	}, &fakeCaptions{}, &fakeTitles{}, nil)

	_, err := svc.Transcribe(context.Background(), Input{
		Audio: &AudioInput{Bytes: []byte("audio"), Filename: "silent.mp3"},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
}

func TestURLDurationIsLastFragmentEnd(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{
		fragments: []captions.Fragment{
			{Text: "a", Offset: 0, Duration: 5},
			{Text: "b", Offset: 10, Duration: 3},
		},
	}, &fakeTitles{title: "Some Talk"}, nil)

	record, err := svc.Transcribe(context.Background(), Input{YouTubeURL: "https://youtu.be/abc"})

	require.NoError(t, err)
	require.NotNil(t, record.Duration)
	assert.Equal(t, float64(13), *record.Duration)
}

func TestURLJoinCollapsesWhitespace(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{
		fragments: []captions.Fragment{
			{Text: "Hello", Duration: 1},
			{Text: "  world\n", Offset: 1, Duration: 1},
		},
	}, &fakeTitles{title: "t"}, nil)

	record, err := svc.Transcribe(context.Background(), Input{YouTubeURL: "https://youtu.be/abc"})

	require.NoError(t, err)
	assert.Equal(t, "Hello world", record.Transcript)
}

func TestURLTitleLookupFailureFallsBack(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{
		fragments: []captions.Fragment{{Text: "Test talk", Offset: 0, Duration: 42}},
	}, &fakeTitles{err: errors.New("noembed down")}, nil)

	record, err := svc.Transcribe(context.Background(), Input{YouTubeURL: "https://youtu.be/abc"})

	require.NoError(t, err)
	assert.Equal(t, "Test talk", record.Transcript)
	require.NotNil(t, record.Duration)
	assert.Equal(t, float64(42), *record.Duration)
	assert.Equal(t, "YouTube Video", record.Title)
	assert.Equal(t, "youtube", record.SourceType)
}

func TestURLNoFragmentsIsUpstreamFailure(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{}, &fakeTitles{}, nil)

	_, err := svc.Transcribe(context.Background(), Input{YouTubeURL: "https://youtu.be/abc"})

	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
}

func TestURLFetchErrorForwardsCollaboratorMessage(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{
		err: errors.New("video has no caption tracks"),
	}, &fakeTitles{}, nil)

	_, err := svc.Transcribe(context.Background(), Input{YouTubeURL: "https://youtu.be/abc"})

	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "no caption tracks")
}
