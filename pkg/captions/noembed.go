package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const noembedEndpoint = "https://noembed.com/embed"

// TitleLookup resolves a video title via the noembed oEmbed proxy. Callers
// treat any failure as non-critical and fall back to a placeholder.
type TitleLookup struct {
	http *http.Client
}

// NewTitleLookup creates a title lookup with a bounded request timeout so a
// slow metadata host cannot stall the whole transcription request.
func NewTitleLookup() *TitleLookup {
	return &TitleLookup{http: &http.Client{Timeout: 10 * time.Second}}
}

// Lookup returns the remote page's embed title.
func (t *TitleLookup) Lookup(ctx context.Context, videoURL string) (string, error) {
	endpoint := noembedEndpoint + "?url=" + url.QueryEscape(videoURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("noembed status: %d", resp.StatusCode)
	}

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Title, nil
}
