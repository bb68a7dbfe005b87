package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultListenURL = "https://api.deepgram.com/v1/listen"

// Transcriber runs one-shot speech recognition on an uploaded clip.
type Transcriber struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewTranscriber(apiKey string) *Transcriber {
	return &Transcriber{
		APIKey:     apiKey,
		Model:      "nova-2",
		BaseURL:    defaultListenURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends audio with the given MIME type and returns the top
// transcript. A clip with no recognizable speech yields an empty string.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if t.APIKey == "" {
		return "", fmt.Errorf("speech: deepgram api key missing")
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("speech: empty audio")
	}

	base := t.BaseURL
	if base == "" {
		base = defaultListenURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("speech: listen url: %w", err)
	}
	q := u.Query()
	q.Set("model", t.Model)
	q.Set("smart_format", "true")
	q.Set("detect_language", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+t.APIKey)
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	req.Header.Set("Content-Type", mimeType)

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: listen request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("speech: listen status=%d body=%s", resp.StatusCode, string(b))
	}

	var decoded listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("speech: decode response: %w", err)
	}
	if len(decoded.Results.Channels) == 0 || len(decoded.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return decoded.Results.Channels[0].Alternatives[0].Transcript, nil
}
