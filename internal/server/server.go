// Package server exposes the editing engine over HTTP. Handlers stay thin:
// every route maps onto one engine, store or dictionary call.
package server

import (
	"context"
	"net/http"

	"github.com/p-n-ai/lesson-admin/internal/auth"
	"github.com/p-n-ai/lesson-admin/internal/dictionary"
	"github.com/p-n-ai/lesson-admin/internal/editor"
	"github.com/p-n-ai/lesson-admin/internal/lesson"
)

// Config holds dependencies for the HTTP server.
type Config struct {
	Engine *editor.Engine
	Store  lesson.Store
	Topics lesson.TopicStore
	Dict   dictionary.Source
	Auth   *auth.Manager // nil disables authentication (tests)
	Ready  []func(context.Context) error
}

// Server routes admin requests to the editing engine.
type Server struct {
	engine *editor.Engine
	store  lesson.Store
	topics lesson.TopicStore
	dict   dictionary.Source
	auth   *auth.Manager
	ready  []func(context.Context) error
}

// New creates a Server.
func New(cfg Config) *Server {
	return &Server{
		engine: cfg.Engine,
		store:  cfg.Store,
		topics: cfg.Topics,
		dict:   cfg.Dict,
		auth:   cfg.Auth,
		ready:  cfg.Ready,
	}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("POST /login", s.handleLogin)

	api := http.NewServeMux()
	api.HandleFunc("GET /dictionaries/{type}", s.handleDictionary)

	api.HandleFunc("GET /lessons", s.handleListLessons)
	api.HandleFunc("GET /lessons/export", s.handleExportLessons)
	api.HandleFunc("GET /lessons/{id}", s.handleGetLesson)
	api.HandleFunc("DELETE /lessons/{id}", s.handleDeleteLesson)

	api.HandleFunc("POST /sessions", s.handleOpenSession)
	api.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	api.HandleFunc("DELETE /sessions/{id}", s.handleCloseSession)
	api.HandleFunc("GET /sessions/{id}/events", s.handleSessionEvents)
	api.HandleFunc("POST /sessions/{id}/save", s.handleSave)
	api.HandleFunc("PATCH /sessions/{id}/meta", s.handleSetMeta)
	api.HandleFunc("PUT /sessions/{id}/translations", s.handleUpsertTranslation)
	api.HandleFunc("DELETE /sessions/{id}/translations/{lang}", s.handleDeleteTranslation)

	api.HandleFunc("POST /sessions/{id}/blocks", s.handleAddBlock)
	api.HandleFunc("POST /sessions/{id}/blocks/move", s.handleMoveBlock)
	api.HandleFunc("DELETE /sessions/{id}/blocks/{blockID}", s.handleDeleteBlock)

	api.HandleFunc("POST /sessions/{id}/blocks/{blockID}/items", s.handleAddItem)
	api.HandleFunc("POST /sessions/{id}/blocks/{blockID}/items/move", s.handleMoveItem)
	api.HandleFunc("PATCH /sessions/{id}/blocks/{blockID}/items/{itemID}", s.handleUpdateItem)
	api.HandleFunc("DELETE /sessions/{id}/blocks/{blockID}/items/{itemID}", s.handleDeleteItem)

	api.HandleFunc("POST /sessions/{id}/blocks/{blockID}/questions", s.handleAddQuestion)
	api.HandleFunc("PATCH /sessions/{id}/blocks/{blockID}/questions/{questionID}", s.handleUpdateQuestion)
	api.HandleFunc("DELETE /sessions/{id}/blocks/{blockID}/questions/{questionID}", s.handleDeleteQuestion)
	api.HandleFunc("POST /sessions/{id}/blocks/{blockID}/questions/{questionID}/answers", s.handleAddAnswer)
	api.HandleFunc("PATCH /sessions/{id}/blocks/{blockID}/questions/{questionID}/answers/{index}", s.handleUpdateAnswer)
	api.HandleFunc("DELETE /sessions/{id}/blocks/{blockID}/questions/{questionID}/answers/{index}", s.handleDeleteAnswer)
	api.HandleFunc("POST /sessions/{id}/blocks/{blockID}/questions/{questionID}/correct", s.handleSetCorrect)

	api.HandleFunc("POST /sessions/{id}/images/stage", s.handleStageImage)
	api.HandleFunc("POST /sessions/{id}/images/upload", s.handleUploadImage)
	api.HandleFunc("POST /sessions/{id}/images/remove", s.handleRemoveImage)

	api.HandleFunc("POST /topics/{id}/reorder", s.handleReorderTopic)
	api.HandleFunc("GET /topics/{id}/children", s.handleTopicChildren)

	if s.auth != nil {
		mux.Handle("/", s.auth.Middleware(api))
	} else {
		mux.Handle("/", api)
	}
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.ready {
		if err := check(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not ready: "+err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeError(w, http.StatusNotFound, "authentication is not configured")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.auth.Login(req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
