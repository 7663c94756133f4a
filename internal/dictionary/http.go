package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSource fetches dictionaries from the remote dictionary service.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// NewHTTPSource creates a dictionary source backed by the remote service.
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("dictionary service URL is required (LESSON_DICTIONARY_URL)")
	}
	s := &HTTPSource{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPSource) Lookup(ctx context.Context, t Type) ([]Entry, error) {
	if !Known(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/dictionaries/"+string(t), nil)
	if err != nil {
		return nil, fmt.Errorf("create dictionary request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dictionary %s: %w", t, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dictionary response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary service error (status %d): %s", resp.StatusCode, string(body))
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal dictionary %s: %w", t, err)
	}
	return entries, nil
}
