package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client mints short-lived realtime session tokens from the provider.
// The server-held API key never leaves this process; the browser only
// ever sees the ephemeral key.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	BaseURL    string
}

type clientSecretRequest struct {
	Session sessionSpec `json:"session"`
}

type sessionSpec struct {
	Type  string `json:"type"`
	Model string `json:"model"`
}

type clientSecretResponse struct {
	Value string `json:"value"`
}

// Result carries the upstream response so the HTTP handler can forward
// provider errors verbatim (status and body unchanged).
type Result struct {
	Key            string
	UpstreamStatus int
	UpstreamBody   []byte
}

func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    baseURL,
	}
}

// MintEphemeralKey requests a fresh ephemeral key. Each call mints a new
// token; there is no caching or retrying. A non-nil error means the
// outbound call itself failed (network, DNS); upstream HTTP errors are
// reported through Result with a nil error.
func (c *Client) MintEphemeralKey(ctx context.Context) (Result, error) {
	if c.APIKey == "" {
		return Result{}, fmt.Errorf("relay: provider api key missing")
	}
	endpoint := c.BaseURL + "/v1/realtime/client_secrets"

	reqBody, _ := json.Marshal(clientSecretRequest{
		Session: sessionSpec{Type: "realtime", Model: c.Model},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("relay: client secret request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("relay: read client secret response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{UpstreamStatus: resp.StatusCode, UpstreamBody: body}, nil
	}

	var cs clientSecretResponse
	if err := json.Unmarshal(body, &cs); err != nil {
		return Result{}, fmt.Errorf("relay: decode client secret response: %w", err)
	}
	if cs.Value == "" {
		return Result{}, fmt.Errorf("relay: empty client secret in response")
	}
	return Result{Key: cs.Value, UpstreamStatus: resp.StatusCode, UpstreamBody: body}, nil
}

// EphemeralKey implements the bridge's token source: it hides the
// passthrough plumbing and returns only the minted key.
func (c *Client) EphemeralKey(ctx context.Context) (string, error) {
	res, err := c.MintEphemeralKey(ctx)
	if err != nil {
		return "", err
	}
	if res.Key == "" {
		return "", fmt.Errorf("relay: upstream error: status=%d body=%s", res.UpstreamStatus, string(res.UpstreamBody))
	}
	return res.Key, nil
}
