// Package editor hosts server-held lesson editing sessions: one exclusively
// owned document tree per session, mutated through the lesson package and
// persisted on explicit save.
package editor

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"

	"github.com/p-n-ai/lesson-admin/internal/lesson"
	"github.com/p-n-ai/lesson-admin/internal/storage"
)

// EngineConfig holds dependencies for the editing engine.
type EngineConfig struct {
	Store    lesson.Store
	Uploader storage.Uploader
	Events   EventLogger
	Feed     *Feed
	TextMode lesson.TextMode // single-language or translation-array text storage
}

// Engine owns the set of live editing sessions.
type Engine struct {
	store    lesson.Store
	uploader storage.Uploader
	events   EventLogger
	feed     *Feed
	mode     lesson.TextMode

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewEngine creates an editing engine.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = lesson.NewMemoryStore()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	feed := cfg.Feed
	if feed == nil {
		feed = NewFeed()
	}
	mode := cfg.TextMode
	if mode == "" {
		mode = lesson.TextModeSingle
	}
	return &Engine{
		store:    store,
		uploader: cfg.Uploader,
		events:   events,
		feed:     feed,
		mode:     mode,
		sessions: make(map[string]*Session),
	}
}

// Open starts an editing session. With a lesson id the tree is hydrated from
// the stored document and image previews are resolved; with an empty id the
// session starts from an empty skeleton (create flow). A failed load opens
// nothing: no partial tree is ever shown.
func (e *Engine) Open(ctx context.Context, lessonID string) (*Session, error) {
	var l lesson.Lesson
	if lessonID == "" {
		l = lesson.New()
	} else {
		p, err := e.store.Get(ctx, lessonID)
		if err != nil {
			return nil, fmt.Errorf("loading lesson %s: %w", lessonID, err)
		}
		l = lesson.FromPayload(p)
		if e.uploader != nil {
			l = l.ResolvePreviews(e.uploader.PreviewURL)
		}
	}

	s := &Session{
		ID:     generateSessionID(),
		engine: e,
		lesson: l,
	}

	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()

	e.publish(Event{
		SessionID: s.ID,
		LessonID:  l.ID,
		Type:      EventSessionOpened,
	})
	return s, nil
}

// Get returns a live session by id.
func (e *Engine) Get(id string) (*Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	return s, ok
}

// Close discards a session. Unsaved edits are dropped; a pending upload
// response, if one ever arrives, finds no session and is discarded.
func (e *Engine) Close(id string) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()

	if ok {
		e.publish(Event{
			SessionID: id,
			LessonID:  s.LessonID(),
			Type:      EventSessionClosed,
		})
	}
}

// Subscribe attaches a live event listener to one session.
func (e *Engine) Subscribe(sessionID string) (<-chan Event, func()) {
	return e.feed.Subscribe(sessionID)
}

func (e *Engine) publish(event Event) {
	if err := e.events.LogEvent(event); err != nil {
		slog.Warn("failed to log edit event", "type", event.Type, "error", err)
	}
	e.feed.Publish(event)
}

func generateSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
