// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relabel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/transcript-screen/internal/httputil"
)

const defaultRemoteTimeout = 30 * time.Second

// RemoteClassifier posts segment text to an HTTP endpoint.
//
// Request:  POST {url} {"text": "..."}
// Response: 200 {"ai": 0.2, "student": 0.8}
//
// Throttled responses (429, 503) are retried with backoff.
type RemoteClassifier struct {
	url        string
	apiKey     string
	maxRetries int
	client     *http.Client
}

// NewRemote returns a RemoteClassifier. An empty apiKey sends no
// Authorization header. A zero timeout means 30s.
func NewRemote(url, apiKey string, timeout time.Duration, maxRetries int) *RemoteClassifier {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteClassifier{
		url:        url,
		apiKey:     apiKey,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

type remoteRequest struct {
	Text string `json:"text"`
}

// Predict implements Classifier.
func (c *RemoteClassifier) Predict(ctx context.Context, text string) (Prediction, error) {
	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return Prediction{}, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries)
	if err != nil {
		return Prediction{}, fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Prediction{}, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var raw struct {
		AI      *float64 `json:"ai"`
		Student *float64 `json:"student"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Prediction{}, fmt.Errorf("decoding classifier response: %w", err)
	}
	if raw.AI == nil || raw.Student == nil {
		return Prediction{}, fmt.Errorf("classifier response missing ai or student probability")
	}
	return Prediction{AI: *raw.AI, Student: *raw.Student}, nil
}
