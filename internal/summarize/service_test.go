package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoscribe/backend/internal/apperr"
)

type fakeCompleter struct {
	reply     string
	err       error
	calls     int
	gotSystem string
	gotUser   string
	gotTemp   float32
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, temperature float32) (string, error) {
	f.calls++
	f.gotSystem = system
	f.gotUser = user
	f.gotTemp = temperature
	return f.reply, f.err
}

const validReply = `{"summary":"You discussed the Q3 launch.","bulletPoints":["Scope locked","Dates agreed"],"actionItems":["Your team should draft the announcement"]}`

func TestSummarizeHappyPath(t *testing.T) {
	completer := &fakeCompleter{reply: validReply}
	svc := NewService(completer, nil)

	record, err := svc.Summarize(context.Background(), Request{Transcript: "we talked about the launch"})

	require.NoError(t, err)
	assert.Equal(t, "You discussed the Q3 launch.", record.Summary)
	assert.Equal(t, []string{"Scope locked", "Dates agreed"}, record.BulletPoints)
	assert.Equal(t, []string{"Your team should draft the announcement"}, record.ActionItems)
	assert.Equal(t, float32(0.4), completer.gotTemp)
}

func TestSummarizeRequiresTranscript(t *testing.T) {
	completer := &fakeCompleter{reply: validReply}
	svc := NewService(completer, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "   \n "})

	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, 0, completer.calls, "no model call on empty transcript")
}

func TestSummarizeInvalidJSONIsModelResponseError(t *testing.T) {
	svc := NewService(&fakeCompleter{reply: "Here is your summary: the talk went well."}, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "transcript"})

	require.Error(t, err)
	assert.Equal(t, apperr.ModelResponse, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "not valid JSON")
}

func TestSummarizeMissingActionItemsIsRejected(t *testing.T) {
	svc := NewService(&fakeCompleter{
		reply: `{"summary":"s","bulletPoints":["a"]}`,
	}, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "transcript"})

	require.Error(t, err)
	assert.Equal(t, apperr.ModelResponse, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "required structure")
}

func TestSummarizeNonStringElementsAreRejected(t *testing.T) {
	svc := NewService(&fakeCompleter{
		reply: `{"summary":"s","bulletPoints":["a",2],"actionItems":[]}`,
	}, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "transcript"})

	require.Error(t, err)
	assert.Equal(t, apperr.ModelResponse, apperr.KindOf(err))
}

func TestSummarizeEmptyActionItemsAreAllowed(t *testing.T) {
	svc := NewService(&fakeCompleter{
		reply: `{"summary":"s","bulletPoints":["a","b","c"],"actionItems":[]}`,
	}, nil)

	record, err := svc.Summarize(context.Background(), Request{Transcript: "transcript"})

	require.NoError(t, err)
	assert.Empty(t, record.ActionItems)
	assert.Len(t, record.BulletPoints, 3)
}

func TestSummarizeCompleterFailure(t *testing.T) {
	svc := NewService(&fakeCompleter{err: errors.New("rate limited")}, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "transcript"})

	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.NotContains(t, apperr.MessageOf(err), "rate limited", "raw collaborator detail stays internal")
}

func TestSummarizeEmptyReplyIsModelResponseError(t *testing.T) {
	svc := NewService(&fakeCompleter{reply: "  "}, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "transcript"})

	require.Error(t, err)
	assert.Equal(t, apperr.ModelResponse, apperr.KindOf(err))
}

func TestSummarizePromptCarriesContextPreamble(t *testing.T) {
	completer := &fakeCompleter{reply: validReply}
	svc := NewService(completer, nil)

	duration := 90.0
	_, err := svc.Summarize(context.Background(), Request{
		Transcript: "transcript body",
		Title:      "Weekly Sync",
		Duration:   &duration,
		SourceType: "audio",
	})

	require.NoError(t, err)
	assert.Contains(t, completer.gotUser, "Title: Weekly Sync")
	assert.Contains(t, completer.gotUser, "Source: audio")
	assert.Contains(t, completer.gotUser, "Duration (seconds): 90")
	assert.Contains(t, completer.gotUser, "Transcript:\ntranscript body")
	assert.Contains(t, completer.gotSystem, "second person plural")
}

func TestSummarizePromptOmitsAbsentContext(t *testing.T) {
	completer := &fakeCompleter{reply: validReply}
	svc := NewService(completer, nil)

	_, err := svc.Summarize(context.Background(), Request{Transcript: "bare transcript"})

	require.NoError(t, err)
	assert.Equal(t, "Transcript:\nbare transcript", completer.gotUser)
	assert.NotContains(t, completer.gotUser, "Title:")
	assert.NotContains(t, completer.gotUser, "Source:")
}
