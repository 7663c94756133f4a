package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/p-n-ai/lesson-admin/internal/lesson"
)

// Session is one live editing session. The lesson tree is exclusively owned
// here; every mutation goes through the lesson package's tree operations so
// order indices stay contiguous. Concurrent requests on the same session are
// serialized by the mutex, which stands in for the single-threaded event
// queue the tree model assumes.
type Session struct {
	ID     string
	engine *Engine

	mu     sync.Mutex
	lesson lesson.Lesson
	dirty  bool
}

// Lesson returns a snapshot of the current tree.
func (s *Session) Lesson() lesson.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lesson
}

// LessonID returns the server-assigned lesson id, empty before first save.
func (s *Session) LessonID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lesson.ID
}

// Dirty reports whether the tree has unsaved edits.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// apply swaps in the tree produced by fn and announces the event.
func (s *Session) apply(fn func(lesson.Lesson) lesson.Lesson, eventType string, data map[string]any) {
	s.mu.Lock()
	s.lesson = fn(s.lesson)
	s.dirty = true
	lessonID := s.lesson.ID
	s.mu.Unlock()

	s.engine.publish(Event{
		SessionID: s.ID,
		LessonID:  lessonID,
		Type:      eventType,
		Data:      data,
	})
}

// MetaPatch carries the updatable lesson header fields; nil means leave
// unchanged.
type MetaPatch struct {
	Title       *string
	Description *string
	Level       *string
	Status      *string
	Category    *string
	AgeGroup    *string
	Lang        *string
	TopicRefs   *[]string
}

// SetMeta patches the lesson header fields.
func (s *Session) SetMeta(patch MetaPatch) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		if patch.Title != nil {
			l.Title = *patch.Title
		}
		if patch.Description != nil {
			l.Description = *patch.Description
		}
		if patch.Level != nil {
			l.Level = *patch.Level
		}
		if patch.Status != nil {
			l.Status = *patch.Status
		}
		if patch.Category != nil {
			l.Category = *patch.Category
		}
		if patch.AgeGroup != nil {
			l.AgeGroup = *patch.AgeGroup
		}
		if patch.Lang != nil {
			l.Lang = *patch.Lang
		}
		if patch.TopicRefs != nil {
			l.TopicRefs = append([]string(nil), (*patch.TopicRefs)...)
		}
		return l
	}, EventItemUpdated, map[string]any{"target": "meta"})
}

// UpsertTranslation adds or replaces the translation for one language.
func (s *Session) UpsertTranslation(tr lesson.Translation) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		translations := append([]lesson.Translation(nil), l.Translations...)
		for i := range translations {
			if translations[i].Language == tr.Language {
				translations[i] = tr
				l.Translations = translations
				return l
			}
		}
		l.Translations = append(translations, tr)
		return l
	}, EventItemUpdated, map[string]any{"target": "translation", "language": tr.Language})
}

// DeleteTranslation removes the translation for one language.
func (s *Session) DeleteTranslation(languageCode string) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		translations := make([]lesson.Translation, 0, len(l.Translations))
		for _, tr := range l.Translations {
			if tr.Language != languageCode {
				translations = append(translations, tr)
			}
		}
		l.Translations = translations
		return l
	}, EventItemDeleted, map[string]any{"target": "translation", "language": languageCode})
}

// AddBlock appends a block of the given type.
func (s *Session) AddBlock(t lesson.BlockType) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.AddBlock(t)
	}, EventBlockAdded, map[string]any{"blockType": string(t)})
}

// MoveBlock relocates a block; out-of-bounds targets are no-ops.
func (s *Session) MoveBlock(from, to int) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.MoveBlock(from, to)
	}, EventBlockMoved, map[string]any{"from": from, "to": to})
}

// DeleteBlock removes a block and everything it owns.
func (s *Session) DeleteBlock(blockID string) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.DeleteBlock(blockID)
	}, EventBlockDeleted, nil)
}

// AddItem appends an item to a block.
func (s *Session) AddItem(blockID string, t lesson.ItemType) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.AddItem(blockID, t)
	}, EventItemAdded, map[string]any{"itemType": string(t)})
}

// UpdateItem patches an item.
func (s *Session) UpdateItem(blockID, itemID string, patch lesson.ItemPatch) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.UpdateItem(blockID, itemID, patch)
	}, EventItemUpdated, nil)
}

// MoveItem relocates an item within its block.
func (s *Session) MoveItem(blockID string, from, to int) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.MoveItem(blockID, from, to)
	}, EventItemUpdated, map[string]any{"from": from, "to": to})
}

// DeleteItem removes an item.
func (s *Session) DeleteItem(blockID, itemID string) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.DeleteItem(blockID, itemID)
	}, EventItemDeleted, nil)
}

// AddQuestion appends a question pre-filled with its answer template.
func (s *Session) AddQuestion(blockID string, t lesson.QuestionType) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.AddQuestion(blockID, t)
	}, EventQuestionAdded, map[string]any{"questionType": string(t)})
}

// UpdateQuestion patches a question.
func (s *Session) UpdateQuestion(blockID, questionID string, patch lesson.QuestionPatch) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.UpdateQuestion(blockID, questionID, patch)
	}, EventQuestionUpdated, nil)
}

// DeleteQuestion removes a question.
func (s *Session) DeleteQuestion(blockID, questionID string) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.DeleteQuestion(blockID, questionID)
	}, EventQuestionDeleted, nil)
}

// AddAnswerItem appends a blank answer pair.
func (s *Session) AddAnswerItem(blockID, questionID string) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.AddAnswerItem(blockID, questionID)
	}, EventQuestionUpdated, map[string]any{"target": "answer"})
}

// UpdateAnswerItem patches one answer.
func (s *Session) UpdateAnswerItem(blockID, questionID string, index int, patch lesson.AnswerPatch) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.UpdateAnswerItem(blockID, questionID, index, patch)
	}, EventQuestionUpdated, map[string]any{"target": "answer", "index": index})
}

// DeleteAnswerItem removes one answer.
func (s *Session) DeleteAnswerItem(blockID, questionID string, index int) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.DeleteAnswerItem(blockID, questionID, index)
	}, EventQuestionUpdated, map[string]any{"target": "answer", "index": index})
}

// SetCorrectAnswer marks exactly one answer correct on a choice question.
func (s *Session) SetCorrectAnswer(blockID, questionID string, index int) {
	s.apply(func(l lesson.Lesson) lesson.Lesson {
		return l.SetCorrectAnswer(blockID, questionID, index)
	}, EventQuestionUpdated, map[string]any{"target": "correct", "index": index})
}

// Target identifies an image-capable leaf: an IMAGE item or a question.
type Target struct {
	BlockID    string
	ItemID     string
	QuestionID string
}

// StageImage attaches a local file to a leaf without uploading it. Rejected
// files (wrong media type, empty) change nothing.
func (s *Session) StageImage(t Target, name, mimeType string, data []byte) error {
	s.mu.Lock()
	img, setter, err := s.imageLeaf(t)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	staged, err := stageImage(img, name, mimeType, data)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.lesson = setter(s.lesson, staged)
	s.dirty = true
	lessonID := s.lesson.ID
	s.mu.Unlock()

	s.engine.publish(Event{
		SessionID: s.ID,
		LessonID:  lessonID,
		Type:      EventImageStaged,
		Data:      map[string]any{"name": name},
	})
	return nil
}

// UploadImage pushes the staged file of one leaf to the media store. On
// success the leaf becomes Attached; on failure it stays Staged with the
// local file intact so the user can retry. If the leaf was deleted while the
// upload was in flight, the response is discarded.
func (s *Session) UploadImage(ctx context.Context, t Target) error {
	if s.engine.uploader == nil {
		return fmt.Errorf("no media store configured")
	}

	s.mu.Lock()
	img, setter, err := s.imageLeaf(t)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	uploading, err := beginUpload(img)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	name, mimeType, data := uploading.PendingName, uploading.PendingMIME, uploading.PendingFile
	s.lesson = setter(s.lesson, uploading)
	s.mu.Unlock()

	res, uploadErr := s.engine.uploader.Upload(ctx, name, mimeType, data)

	s.mu.Lock()
	current, setter, leafErr := s.imageLeaf(t)
	if leafErr != nil {
		// Leaf deleted mid-upload; nobody is left to receive the result.
		s.mu.Unlock()
		return nil
	}
	if uploadErr != nil {
		s.lesson = setter(s.lesson, failUpload(current))
		s.mu.Unlock()
		return fmt.Errorf("uploading image: %w", uploadErr)
	}
	s.lesson = setter(s.lesson, completeUpload(current, res))
	s.dirty = true
	lessonID := s.lesson.ID
	s.mu.Unlock()

	s.engine.publish(Event{
		SessionID: s.ID,
		LessonID:  lessonID,
		Type:      EventImageUploaded,
		Data:      map[string]any{"objectKey": res.ObjectKey},
	})
	return nil
}

// RemoveImage clears a leaf's attachment entirely.
func (s *Session) RemoveImage(t Target) error {
	s.mu.Lock()
	_, setter, err := s.imageLeaf(t)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.lesson = setter(s.lesson, lesson.Image{})
	s.dirty = true
	s.mu.Unlock()
	return nil
}

type imageSetter func(lesson.Lesson, lesson.Image) lesson.Lesson

// imageLeaf resolves a target to its current attachment state and a setter
// that writes it back. Callers must hold s.mu.
func (s *Session) imageLeaf(t Target) (lesson.Image, imageSetter, error) {
	switch {
	case t.ItemID != "":
		it, ok := s.lesson.FindItem(t.BlockID, t.ItemID)
		if !ok {
			return lesson.Image{}, nil, fmt.Errorf("item not found: %s", t.ItemID)
		}
		if it.Type != lesson.ItemTypeImage {
			return lesson.Image{}, nil, fmt.Errorf("item %s is not an image item", t.ItemID)
		}
		setter := func(l lesson.Lesson, img lesson.Image) lesson.Lesson {
			return l.SetItemImage(t.BlockID, t.ItemID, img)
		}
		return it.Image, setter, nil
	case t.QuestionID != "":
		q, ok := s.lesson.FindQuestion(t.BlockID, t.QuestionID)
		if !ok {
			return lesson.Image{}, nil, fmt.Errorf("question not found: %s", t.QuestionID)
		}
		setter := func(l lesson.Lesson, img lesson.Image) lesson.Lesson {
			return l.SetQuestionImage(t.BlockID, t.QuestionID, img)
		}
		return q.Image, setter, nil
	default:
		return lesson.Image{}, nil, fmt.Errorf("target needs an item or question id")
	}
}

// Save validates, normalizes and persists the tree. Validation and the wire
// schema gate run before any network call; a store failure leaves the tree
// exactly as it was so the user can retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	l := s.lesson
	s.mu.Unlock()

	if err := lesson.Validate(l, s.engine.mode); err != nil {
		return err
	}
	p := lesson.Normalize(l)
	if err := lesson.CheckPayload(p); err != nil {
		return fmt.Errorf("normalized payload rejected: %w", err)
	}

	if l.ID == "" {
		created, err := s.engine.store.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("creating lesson: %w", err)
		}
		// Adopt the server-assigned id; nothing else merges back.
		s.mu.Lock()
		s.lesson.ID = created.ID
		s.dirty = false
		s.mu.Unlock()
	} else {
		if err := s.engine.store.Update(ctx, l.ID, p); err != nil {
			return fmt.Errorf("updating lesson %s: %w", l.ID, err)
		}
		s.mu.Lock()
		s.dirty = false
		s.mu.Unlock()
	}

	s.engine.publish(Event{
		SessionID: s.ID,
		LessonID:  s.LessonID(),
		Type:      EventLessonSaved,
	})
	return nil
}
