package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/hacknao/echotower/internal/types"
)

// DefaultTimeout bounds one scorer request. The round pipeline makes exactly
// one attempt per utterance, so this is the longest a round can wait on the
// remote service.
const DefaultTimeout = 15000 * time.Millisecond

// maxResponseBytes bounds how much of a scorer response is read.
const maxResponseBytes = 1 << 20

// Config holds the connection settings for the remote scoring service.
// ClientID/ClientSecret/TokenURL enable OAuth2 client-credentials auth;
// leave them empty for an unauthenticated endpoint.
type Config struct {
	URL          string `json:"url"`
	TimeoutMs    int64  `json:"timeout_ms,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	TokenURL     string `json:"token_url,omitempty"`
}

// IsConfigured returns true if a scorer endpoint is set.
func (c *Config) IsConfigured() bool {
	return c.URL != ""
}

// HTTPScorer calls the remote pronunciation service over HTTP. The utterance
// is posted as multipart/form-data with the target word alongside it.
type HTTPScorer struct {
	url    string
	client *http.Client
}

// NewHTTPScorer creates a scorer for the given configuration. When OAuth2
// credentials are present the client transparently fetches and refreshes
// access tokens.
func NewHTTPScorer(cfg Config) (*HTTPScorer, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("scorer URL is not configured")
	}

	timeout := DefaultTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}

	client := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		oauth := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = oauth.Client(context.Background())
		client.Timeout = timeout
	}

	return &HTTPScorer{url: cfg.URL, client: client}, nil
}

// Score posts the utterance and decodes the response. Network failures and
// timeouts come back wrapped in ErrScorerUnavailable or ErrScorerTimeout so
// the caller can degrade to a zero score.
func (s *HTTPScorer) Score(ctx context.Context, word string, wav []byte) (Score, error) {
	if len(wav) == 0 {
		return Score{}, types.ErrNoAudioCaptured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return Score{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return Score{}, fmt.Errorf("write wav data: %w", err)
	}
	if err := mw.WriteField("text_refs", word); err != nil {
		return Score{}, fmt.Errorf("write word field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Score{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &body)
	if err != nil {
		return Score{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return Score{}, fmt.Errorf("%w: %v", types.ErrScorerTimeout, err)
		}
		return Score{}, fmt.Errorf("%w: %v", types.ErrScorerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Score{}, fmt.Errorf("%w: HTTP %d", types.ErrScorerUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Score{}, fmt.Errorf("%w: read response: %v", types.ErrScorerUnavailable, err)
	}

	var decoded Score
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Score{}, fmt.Errorf("%w: parse response: %v", types.ErrScorerUnavailable, err)
	}

	return normalize(decoded)
}

// isTimeout reports whether err carries a network timeout.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
