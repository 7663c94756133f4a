package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Edit event types.
const (
	EventSessionOpened   = "session_opened"
	EventSessionClosed   = "session_closed"
	EventBlockAdded      = "block_added"
	EventBlockMoved      = "block_moved"
	EventBlockDeleted    = "block_deleted"
	EventItemAdded       = "item_added"
	EventItemUpdated     = "item_updated"
	EventItemDeleted     = "item_deleted"
	EventQuestionAdded   = "question_added"
	EventQuestionUpdated = "question_updated"
	EventQuestionDeleted = "question_deleted"
	EventImageStaged     = "image_staged"
	EventImageUploaded   = "image_uploaded"
	EventLessonSaved     = "lesson_saved"
)

// Event records one editing action for analytics and for the live session
// feed.
type Event struct {
	SessionID string         `json:"sessionId"`
	LessonID  string         `json:"lessonId,omitempty"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the edit_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

// Migrate creates the edit_events table if it does not exist.
func (l *PostgresEventLogger) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS edit_events (
			id bigserial PRIMARY KEY,
			session_id text NOT NULL,
			lesson_id uuid,
			event_type text NOT NULL,
			data jsonb NOT NULL DEFAULT '{}'::jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
	)
	if err != nil {
		return fmt.Errorf("running event migration: %w", err)
	}
	return nil
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO edit_events (session_id, lesson_id, event_type, data, created_at)
		 VALUES ($1, NULLIF($2, '')::uuid, $3, $4::jsonb, $5)`,
		event.SessionID,
		event.LessonID,
		event.Type,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("edit event logged",
		"type", event.Type,
		"session_id", event.SessionID,
		"lesson_id", event.LessonID,
	)
	return nil
}
