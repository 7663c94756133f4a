package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/p-n-ai/lesson-admin/internal/auth"
)

func newManager(t *testing.T, password string, ttl time.Duration) *auth.Manager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	m, err := auth.NewManager(string(hash), ttl)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestManager_LoginAndVerify(t *testing.T) {
	m := newManager(t, "s3cret", 0)

	token, err := m.Login("s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned an empty token")
	}
	if !m.Verify(token) {
		t.Error("Verify() = false for a fresh token")
	}
}

func TestManager_WrongPassword(t *testing.T) {
	m := newManager(t, "s3cret", 0)

	if _, err := m.Login("wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestManager_ExpiredToken(t *testing.T) {
	m := newManager(t, "s3cret", time.Nanosecond)

	token, err := m.Login("s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	if m.Verify(token) {
		t.Error("Verify() = true for an expired token")
	}
}

func TestManager_Logout(t *testing.T) {
	m := newManager(t, "s3cret", 0)
	token, _ := m.Login("s3cret")

	m.Logout(token)
	if m.Verify(token) {
		t.Error("Verify() = true after logout")
	}
}

func TestManager_Close(t *testing.T) {
	m := newManager(t, "s3cret", 0)
	t1, _ := m.Login("s3cret")
	t2, _ := m.Login("s3cret")

	m.Close()
	if m.Verify(t1) || m.Verify(t2) {
		t.Error("Verify() = true after Close()")
	}
}

func TestNewManager_RequiresHash(t *testing.T) {
	if _, err := auth.NewManager("", 0); err == nil {
		t.Error("NewManager(\"\") error = nil, want error")
	}
}

func TestMiddleware(t *testing.T) {
	m := newManager(t, "s3cret", 0)
	token, _ := m.Login("s3cret")

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"garbage-token", "Bearer nope", http.StatusUnauthorized},
		{"no-bearer-prefix", token, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/lessons", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
