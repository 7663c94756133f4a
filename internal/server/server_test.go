package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/p-n-ai/lesson-admin/internal/auth"
	"github.com/p-n-ai/lesson-admin/internal/dictionary"
	"github.com/p-n-ai/lesson-admin/internal/editor"
	"github.com/p-n-ai/lesson-admin/internal/lesson"
	"github.com/p-n-ai/lesson-admin/internal/server"
	"github.com/p-n-ai/lesson-admin/internal/storage"
)

type stubDict struct{}

func (stubDict) Lookup(_ context.Context, t dictionary.Type) ([]dictionary.Entry, error) {
	if !dictionary.Known(t) {
		return nil, dictionary.ErrUnknownType
	}
	return []dictionary.Entry{{Code: "BEGINNER", Label: "Beginner"}}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *lesson.MemoryStore, *lesson.MemoryTopicStore) {
	t.Helper()
	store := lesson.NewMemoryStore()
	topics := lesson.NewMemoryTopicStore()
	engine := editor.NewEngine(editor.EngineConfig{
		Store:    store,
		Uploader: storage.NewMockUploader("images/pic.png", "https://media.test/view?objectKey=images/pic.png"),
	})
	srv := server.New(server.Config{
		Engine: engine,
		Store:  store,
		Topics: topics,
		Dict:   stubDict{},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store, topics
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

type sessionResp struct {
	SessionID string `json:"sessionId"`
	Dirty     bool   `json:"dirty"`
	Lesson    struct {
		ID     string `json:"id"`
		Blocks []struct {
			ID         string `json:"id"`
			Type       string `json:"type"`
			OrderIndex int    `json:"orderIndex"`
			Items      []struct {
				ID      string `json:"id"`
				Type    string `json:"itemType"`
				Content string `json:"content"`
				Image   *struct {
					State string `json:"state"`
				} `json:"image"`
			} `json:"items"`
		} `json:"blocks"`
	} `json:"lesson"`
}

func openSession(t *testing.T, base string) sessionResp {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/sessions", map[string]string{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open session status = %d: %s", resp.StatusCode, body)
	}
	var sv sessionResp
	if err := json.Unmarshal(body, &sv); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	return sv
}

func decodeSession(t *testing.T, body []byte) sessionResp {
	t.Helper()
	var sv sessionResp
	if err := json.Unmarshal(body, &sv); err != nil {
		t.Fatalf("unmarshal session view: %v", err)
	}
	return sv
}

func TestHealthEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("readyz status = %d", resp.StatusCode)
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	srv := server.New(server.Config{
		Engine: editor.NewEngine(editor.EngineConfig{}),
		Store:  lesson.NewMemoryStore(),
		Dict:   stubDict{},
		Ready: []func(context.Context) error{
			func(context.Context) error { return errors.New("db down") },
		},
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", resp.StatusCode)
	}
}

func TestDictionaryEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/dictionaries/LEVEL", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Type    string             `json:"type"`
		Entries []dictionary.Entry `json:"entries"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Entries) != 1 || out.Entries[0].Code != "BEGINNER" {
		t.Errorf("entries = %+v", out.Entries)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/dictionaries/FLAVOR", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown type status = %d, want 404", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts, store, _ := newTestServer(t)
	sv := openSession(t, ts.URL)
	base := ts.URL + "/sessions/" + sv.SessionID

	// Build a small lesson through the HTTP surface.
	resp, body := doJSON(t, http.MethodPatch, base+"/meta", map[string]string{
		"title": "Colors", "description": "Basic colors", "level": "BEGINNER",
		"status": "DRAFT", "category": "VOCABULARY", "ageGroup": "CHILD", "lang": "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("meta status = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, base+"/blocks", map[string]string{"type": "TEXT"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add block status = %d: %s", resp.StatusCode, body)
	}
	sv = decodeSession(t, body)
	if len(sv.Lesson.Blocks) != 1 || sv.Lesson.Blocks[0].OrderIndex != 1 {
		t.Fatalf("blocks = %+v", sv.Lesson.Blocks)
	}
	blockID := sv.Lesson.Blocks[0].ID

	resp, body = doJSON(t, http.MethodPost, base+"/blocks/"+blockID+"/items", map[string]string{"itemType": "TEXT"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item status = %d: %s", resp.StatusCode, body)
	}
	sv = decodeSession(t, body)
	itemID := sv.Lesson.Blocks[0].Items[0].ID

	resp, body = doJSON(t, http.MethodPatch, base+"/blocks/"+blockID+"/items/"+itemID, map[string]string{"content": "Hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update item status = %d: %s", resp.StatusCode, body)
	}
	sv = decodeSession(t, body)
	if sv.Lesson.Blocks[0].Items[0].Content != "Hello" {
		t.Errorf("content = %q", sv.Lesson.Blocks[0].Items[0].Content)
	}
	if !sv.Dirty {
		t.Error("session is not dirty after edits")
	}

	// Save, then confirm the stored document.
	resp, body = doJSON(t, http.MethodPost, base+"/save", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d: %s", resp.StatusCode, body)
	}
	var saved struct {
		LessonID string `json:"lessonId"`
	}
	if err := json.Unmarshal(body, &saved); err != nil {
		t.Fatalf("unmarshal save response: %v", err)
	}
	if saved.LessonID == "" {
		t.Fatal("save returned no lesson id")
	}

	p, err := store.Get(context.Background(), saved.LessonID)
	if err != nil {
		t.Fatalf("stored lesson missing: %v", err)
	}
	if p.Blocks[0].Items[0].Content != "Hello" {
		t.Errorf("stored content = %q", p.Blocks[0].Items[0].Content)
	}

	// Close, further access 404s.
	resp, _ = doJSON(t, http.MethodDelete, base, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, base, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after close status = %d, want 404", resp.StatusCode)
	}
}

func TestSaveInvalidLessonReturns422(t *testing.T) {
	ts, _, _ := newTestServer(t)
	sv := openSession(t, ts.URL)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+sv.SessionID+"/save", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("save status = %d, want 422: %s", resp.StatusCode, body)
	}
}

func TestImageStageAndUpload(t *testing.T) {
	ts, _, _ := newTestServer(t)
	sv := openSession(t, ts.URL)
	base := ts.URL + "/sessions/" + sv.SessionID

	_, body := doJSON(t, http.MethodPost, base+"/blocks", map[string]string{"type": "IMAGE"})
	sv = decodeSession(t, body)
	blockID := sv.Lesson.Blocks[0].ID
	_, body = doJSON(t, http.MethodPost, base+"/blocks/"+blockID+"/items", map[string]string{"itemType": "IMAGE"})
	sv = decodeSession(t, body)
	itemID := sv.Lesson.Blocks[0].Items[0].ID

	// Stage via multipart.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("blockId", blockID)
	w.WriteField("itemId", itemID)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="pic.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("png-bytes"))
	w.Close()

	req, err := http.NewRequest(http.MethodPost, base+"/images/stage", &buf)
	if err != nil {
		t.Fatalf("build stage request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stage request: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stage status = %d: %s", resp.StatusCode, body)
	}
	sv = decodeSession(t, body)
	if img := sv.Lesson.Blocks[0].Items[0].Image; img == nil || img.State != "staged" {
		t.Fatalf("image view after stage = %+v", img)
	}

	// Upload.
	resp2, body := doJSON(t, http.MethodPost, base+"/images/upload", map[string]string{
		"blockId": blockID, "itemId": itemID,
	})
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d: %s", resp2.StatusCode, body)
	}
	sv = decodeSession(t, body)
	if img := sv.Lesson.Blocks[0].Items[0].Image; img == nil || img.State != "attached" {
		t.Fatalf("image view after upload = %+v", img)
	}
}

func TestTopicReorder(t *testing.T) {
	ts, _, topics := newTestServer(t)
	topics.Add("topic-1", "a")
	topics.Add("topic-1", "b")
	topics.Add("topic-1", "c")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/topics/topic-1/reorder", map[string]any{
		"lessonId": "c", "newIndex": 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Moved bool `json:"moved"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Moved {
		t.Fatal("moved = false, want true")
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/topics/topic-1/children", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("children status = %d", resp.StatusCode)
	}
	var children struct {
		Children []lesson.TopicChild `json:"children"`
	}
	if err := json.Unmarshal(body, &children); err != nil {
		t.Fatalf("unmarshal children: %v", err)
	}
	if children.Children[0].LessonID != "c" {
		t.Errorf("first child = %s, want c", children.Children[0].LessonID)
	}
}

func TestLessonExportEndpoint(t *testing.T) {
	ts, store, _ := newTestServer(t)
	if _, err := store.Create(context.Background(), lesson.Payload{Title: "Colors", Blocks: []lesson.BlockPayload{}}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/lessons/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}
	if len(body) == 0 {
		t.Error("export body is empty")
	}
}

func TestAuthMiddlewareGuardsAPI(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	manager, err := auth.NewManager(string(hash), time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	srv := server.New(server.Config{
		Engine: editor.NewEngine(editor.EngineConfig{}),
		Store:  lesson.NewMemoryStore(),
		Dict:   stubDict{},
		Auth:   manager,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// API is locked, health is not.
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/lessons", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}

	// Login and retry with the token.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/login", map[string]string{"password": "s3cret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d: %s", resp.StatusCode, body)
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/lessons", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed request: %v", err)
	}
	authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", authed.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/login", map[string]string{"password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", resp.StatusCode)
	}
}

func TestLessonCRUDEndpoints(t *testing.T) {
	ts, store, _ := newTestServer(t)
	created, err := store.Create(context.Background(), lesson.Payload{Title: "Colors", Blocks: []lesson.BlockPayload{}})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/lessons/%s", ts.URL, created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var p lesson.Payload
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("unmarshal lesson: %v", err)
	}
	if p.Title != "Colors" {
		t.Errorf("Title = %q", p.Title)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/lessons/%s", ts.URL, created.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/lessons/%s", ts.URL, created.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}
