package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/p-n-ai/lesson-admin/internal/dictionary"
	"github.com/p-n-ai/lesson-admin/internal/editor"
	"github.com/p-n-ai/lesson-admin/internal/export"
	"github.com/p-n-ai/lesson-admin/internal/lesson"
)

// maxImageUpload caps staged image files at 10 MiB.
const maxImageUpload = 10 << 20

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	t := dictionary.Type(r.PathValue("type"))
	if !dictionary.Known(t) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown dictionary type: %s", t))
		return
	}
	entries, err := s.dict.Lookup(r.Context(), t)
	if err != nil {
		writeError(w, http.StatusBadGateway, "looking up dictionary: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": t, "entries": entries})
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.store.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lessons": lessons})
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.store.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	wb, err := export.Workbook(lessons)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "building workbook: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="lessons.xlsx"`)
	if err := wb.Write(w); err != nil {
		// Headers are already gone; nothing useful left to send.
		return
	}
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LessonID string `json:"lessonId"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	sess, err := s.engine.Open(r.Context(), req.LessonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	s.engine.Close(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"lessonId": sess.LessonID()})
}

func (s *Server) handleSetMeta(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Level       *string   `json:"level"`
		Status      *string   `json:"status"`
		Category    *string   `json:"category"`
		AgeGroup    *string   `json:"ageGroup"`
		Lang        *string   `json:"lang"`
		TopicRefs   *[]string `json:"topicRefs"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.SetMeta(editor.MetaPatch{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Status:      req.Status,
		Category:    req.Category,
		AgeGroup:    req.AgeGroup,
		Lang:        req.Lang,
		TopicRefs:   req.TopicRefs,
	})
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleUpsertTranslation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Language    string `json:"language"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}
	sess.UpsertTranslation(lesson.Translation{
		Language:    req.Language,
		Title:       req.Title,
		Description: req.Description,
	})
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleDeleteTranslation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.DeleteTranslation(r.PathValue("lang"))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.AddBlock(lesson.BlockType(req.Type))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.MoveBlock(req.From, req.To)
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.DeleteBlock(r.PathValue("blockID"))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		ItemType string `json:"itemType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.AddItem(r.PathValue("blockID"), lesson.ItemType(req.ItemType))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Content  *string `json:"content"`
		MediaURL *string `json:"mediaUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.UpdateItem(r.PathValue("blockID"), r.PathValue("itemID"), lesson.ItemPatch{
		Content:  req.Content,
		MediaURL: req.MediaURL,
	})
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.MoveItem(r.PathValue("blockID"), req.From, req.To)
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.DeleteItem(r.PathValue("blockID"), r.PathValue("itemID"))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.AddQuestion(r.PathValue("blockID"), lesson.QuestionType(req.Type))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Text *string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.UpdateQuestion(r.PathValue("blockID"), r.PathValue("questionID"), lesson.QuestionPatch{
		Text: req.Text,
	})
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.DeleteQuestion(r.PathValue("blockID"), r.PathValue("questionID"))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleAddAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.AddAnswerItem(r.PathValue("blockID"), r.PathValue("questionID"))
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

// answerIndex parses the 1-based {index} path value.
func answerIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "answer index must be a positive number")
		return 0, false
	}
	return n - 1, true
}

func (s *Server) handleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	idx, ok := answerIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Key   *string `json:"key"`
		Value *string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.UpdateAnswerItem(r.PathValue("blockID"), r.PathValue("questionID"), idx, lesson.AnswerPatch{
		Key:   req.Key,
		Value: req.Value,
	})
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	idx, ok := answerIndex(w, r)
	if !ok {
		return
	}
	sess.DeleteAnswerItem(r.PathValue("blockID"), r.PathValue("questionID"), idx)
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleSetCorrect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Index int `json:"index"` // 1-based
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Index < 1 {
		writeError(w, http.StatusBadRequest, "answer index must be a positive number")
		return
	}
	sess.SetCorrectAnswer(r.PathValue("blockID"), r.PathValue("questionID"), req.Index-1)
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

// imageTarget reads the leaf address from form values shared by the image
// endpoints.
func imageTarget(r *http.Request) editor.Target {
	return editor.Target{
		BlockID:    r.FormValue("blockId"),
		ItemID:     r.FormValue("itemId"),
		QuestionID: r.FormValue("questionId"),
	}
}

func (s *Server) handleStageImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		writeError(w, http.StatusBadRequest, "parsing upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}
	if len(data) > maxImageUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
		return
	}

	if err := sess.StageImage(imageTarget(r), header.Filename, header.Header.Get("Content-Type"), data); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		BlockID    string `json:"blockId"`
		ItemID     string `json:"itemId"`
		QuestionID string `json:"questionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target := editor.Target{BlockID: req.BlockID, ItemID: req.ItemID, QuestionID: req.QuestionID}
	if err := sess.UploadImage(r.Context(), target); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		BlockID    string `json:"blockId"`
		ItemID     string `json:"itemId"`
		QuestionID string `json:"questionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target := editor.Target{BlockID: req.BlockID, ItemID: req.ItemID, QuestionID: req.QuestionID}
	if err := sess.RemoveImage(target); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess.ID, sess.Dirty(), sess.Lesson()))
}

func (s *Server) handleReorderTopic(w http.ResponseWriter, r *http.Request) {
	if s.topics == nil {
		writeError(w, http.StatusNotFound, "topic ordering is not configured")
		return
	}
	var req struct {
		LessonID string `json:"lessonId"`
		NewIndex int    `json:"newIndex"` // 1-based
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	moved, err := s.topics.Reorder(r.Context(), r.PathValue("id"), req.LessonID, req.NewIndex-1)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

func (s *Server) handleTopicChildren(w http.ResponseWriter, r *http.Request) {
	if s.topics == nil {
		writeError(w, http.StatusNotFound, "topic ordering is not configured")
		return
	}
	children, err := s.topics.Children(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"children": children})
}
