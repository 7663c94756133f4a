package storage

import (
	"context"
	"sync"
)

// MockUploader is a test double for the media store.
type MockUploader struct {
	Result UploadResult
	Err    error

	mu       sync.Mutex
	calls    int
	lastName string
	lastMIME string
	lastData []byte
}

// NewMockUploader creates a MockUploader that resolves every upload to the
// given key.
func NewMockUploader(objectKey, url string) *MockUploader {
	return &MockUploader{Result: UploadResult{ObjectKey: objectKey, URL: url}}
}

func (m *MockUploader) Upload(_ context.Context, name, mimeType string, data []byte) (UploadResult, error) {
	m.mu.Lock()
	m.calls++
	m.lastName = name
	m.lastMIME = mimeType
	m.lastData = data
	m.mu.Unlock()

	if m.Err != nil {
		return UploadResult{}, m.Err
	}
	return m.Result, nil
}

func (m *MockUploader) PreviewURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://media.test/view?objectKey=" + key
}

// Calls returns how many uploads were attempted.
func (m *MockUploader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastUpload returns the most recent upload arguments.
func (m *MockUploader) LastUpload() (name, mimeType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastName, m.lastMIME, m.lastData
}
