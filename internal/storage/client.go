// Package storage talks to the external media store: binary uploads in,
// object keys and viewable URLs out.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// UploadResult is the media store's answer to a successful upload. ObjectKey
// is the canonical reference; URL is immediately viewable.
type UploadResult struct {
	ObjectKey string `json:"objectKey"`
	URL       string `json:"url"`
}

// Uploader is the slice of the media store the editor depends on.
type Uploader interface {
	Upload(ctx context.Context, name, mimeType string, data []byte) (UploadResult, error)
	PreviewURL(key string) string
}

// Client is an HTTP media store client.
type Client struct {
	baseURL    string
	publicBase string
	token      string
	client     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithPublicBase sets the base address used to compose preview URLs when the
// store returns a relative one.
func WithPublicBase(base string) Option {
	return func(c *Client) {
		c.publicBase = strings.TrimRight(base, "/")
	}
}

// WithToken sets a bearer token for the media store.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a media store client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("media store URL is required (LESSON_MEDIA_STORE_URL)")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicBase: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upload sends one file and returns the resolved reference. The URL in the
// result is always absolute: relative store answers are composed with the
// configured public base.
func (c *Client) Upload(ctx context.Context, name, mimeType string, data []byte) (UploadResult, error) {
	if len(data) == 0 {
		return UploadResult{}, fmt.Errorf("upload payload is empty")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	hdr.Set("Content-Type", mimeType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("write multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("send upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return UploadResult{}, fmt.Errorf("media store error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var res UploadResult
	if err := json.Unmarshal(respBody, &res); err != nil {
		return UploadResult{}, fmt.Errorf("unmarshal upload response: %w", err)
	}
	if res.ObjectKey == "" {
		return UploadResult{}, fmt.Errorf("media store returned no object key")
	}

	if res.URL != "" && !isAbsoluteURL(res.URL) {
		res.URL = c.publicBase + "/" + strings.TrimLeft(res.URL, "/")
	}
	if res.URL == "" {
		res.URL = c.PreviewURL(res.ObjectKey)
	}
	return res, nil
}

// PreviewURL composes a viewable URL for a bare object key.
func (c *Client) PreviewURL(key string) string {
	if key == "" {
		return ""
	}
	return c.publicBase + "/view?objectKey=" + key
}

// HealthCheck verifies the media store answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("media store health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media store health check returned status %d", resp.StatusCode)
	}
	return nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
