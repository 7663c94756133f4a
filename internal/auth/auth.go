// Package auth holds the admin session state as one explicit object with a
// single init/teardown lifecycle, instead of ambient token storage read ad
// hoc by call sites.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

const defaultTokenTTL = 12 * time.Hour

// Manager verifies the admin password and issues opaque bearer tokens.
type Manager struct {
	hash []byte
	ttl  time.Duration

	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
}

// NewManager creates a session manager from a bcrypt password hash. A zero
// ttl uses the default.
func NewManager(passwordHash string, ttl time.Duration) (*Manager, error) {
	if passwordHash == "" {
		return nil, fmt.Errorf("admin password hash is required (LESSON_AUTH_PASSWORD_HASH)")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Manager{
		hash:   []byte(passwordHash),
		ttl:    ttl,
		tokens: make(map[string]time.Time),
	}, nil
}

// Login checks the password and returns a fresh session token.
func (m *Manager) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(m.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := generateToken()
	m.mu.Lock()
	m.tokens[token] = time.Now().Add(m.ttl)
	m.mu.Unlock()
	return token, nil
}

// Verify reports whether a token names a live session. Expired tokens are
// pruned as they are seen.
func (m *Manager) Verify(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(m.tokens, token)
		return false
	}
	return true
}

// Logout invalidates one token.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.tokens, token)
	m.mu.Unlock()
}

// Close drops every live session; part of server teardown.
func (m *Manager) Close() {
	m.mu.Lock()
	m.tokens = make(map[string]time.Time)
	m.mu.Unlock()
}

// Middleware rejects requests without a live bearer token.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || !m.Verify(token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func generateToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
