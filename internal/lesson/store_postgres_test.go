package lesson_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/p-n-ai/lesson-admin/internal/lesson"
)

// startPostgres runs a throwaway PostgreSQL container and returns a connected
// pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("lessons"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := startPostgres(t)

	store, err := lesson.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var topicID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO topics (name) VALUES ('Animals') RETURNING id::text`,
	).Scan(&topicID); err != nil {
		t.Fatalf("creating topic: %v", err)
	}

	p := lesson.Normalize(sampleLesson())
	p.TopicRefs = []string{topicID}

	created, err := store.Create(ctx, p)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() returned no id")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != p.Title {
		t.Errorf("Title = %q, want %q", got.Title, p.Title)
	}
	if len(got.Blocks) != len(p.Blocks) {
		t.Errorf("blocks = %d, want %d", len(got.Blocks), len(p.Blocks))
	}

	got.Title = "Colors v2"
	if err := store.Update(ctx, created.ID, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err = store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if got.Title != "Colors v2" {
		t.Errorf("Title after update = %q, want %q", got.Title, "Colors v2")
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() = %d lessons, want 1", len(all))
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, lesson.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPostgresTopicStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := startPostgres(t)

	store, err := lesson.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	topics, err := lesson.NewPostgresTopicStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresTopicStore() error = %v", err)
	}

	var topicID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO topics (name) VALUES ('Grammar') RETURNING id::text`,
	).Scan(&topicID); err != nil {
		t.Fatalf("creating topic: %v", err)
	}

	// Three lessons joined to the topic in creation order.
	var lessonIDs []string
	for range 3 {
		p := lesson.Normalize(sampleLesson())
		p.TopicRefs = []string{topicID}
		created, err := store.Create(ctx, p)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		lessonIDs = append(lessonIDs, created.ID)
	}

	moved, err := topics.Reorder(ctx, topicID, lessonIDs[2], 0)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if !moved {
		t.Fatal("Reorder() = false, want true")
	}

	children, err := topics.Children(ctx, topicID)
	if err != nil {
		t.Fatalf("Children() error = %v", err)
	}
	wantOrder := []string{lessonIDs[2], lessonIDs[0], lessonIDs[1]}
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	for i, c := range children {
		if c.LessonID != wantOrder[i] {
			t.Errorf("children[%d] = %s, want %s", i, c.LessonID, wantOrder[i])
		}
		if c.OrderIndex != i+1 {
			t.Errorf("children[%d].OrderIndex = %d, want %d", i, c.OrderIndex, i+1)
		}
	}

	// Out-of-bounds target leaves the ordering untouched.
	moved, err = topics.Reorder(ctx, topicID, lessonIDs[0], 99)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if moved {
		t.Error("Reorder() = true for an out-of-bounds target, want false")
	}
}
