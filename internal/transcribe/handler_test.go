package transcribe

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/pkg/captions"
	"github.com/echoscribe/backend/pkg/response"
)

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserID, uuid.New())
		c.Next()
	})
	router.POST("/transcribe", h.Transcribe)
	return router
}

func postForm(t *testing.T, router *gin.Engine, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTranscribeEndpointRejectsEmptyForm(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{}, &fakeTitles{}, nil)
	router := newTestRouter(NewHandler(svc, nil))

	rec := postForm(t, router, map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "audio file")
}

func TestTranscribeEndpointYouTubeURL(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{
		fragments: []captions.Fragment{{Text: "Test talk", Offset: 0, Duration: 42}},
	}, &fakeTitles{title: "Launch Review"}, nil)
	router := newTestRouter(NewHandler(svc, nil))

	rec := postForm(t, router, map[string]string{"youtubeUrl": "https://youtu.be/abc"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Data    Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Test talk", body.Data.Transcript)
	assert.Equal(t, "Launch Review", body.Data.Title)
	assert.Equal(t, "youtube", body.Data.SourceType)
	require.NotNil(t, body.Data.Duration)
	assert.Equal(t, float64(42), *body.Data.Duration)
}

func TestTranscribeEndpointUpstreamFailureIs400(t *testing.T) {
	svc := newTestService(&fakeTranscriber{}, &fakeCaptions{}, &fakeTitles{}, nil)
	router := newTestRouter(NewHandler(svc, nil))

	rec := postForm(t, router, map[string]string{"youtubeUrl": "https://youtu.be/abc"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "no transcript data")
}
