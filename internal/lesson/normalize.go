package lesson

import "github.com/p-n-ai/lesson-admin/internal/storage"

// Outbound wire shapes. These are what the persistence layer accepts: no
// transient ids on children, no preview URLs, no staged bytes, order indices
// recomputed at serialization time.

// Payload is the persistable form of a lesson.
type Payload struct {
	ID           string               `json:"id,omitempty"`
	Title        string               `json:"title,omitempty"`
	Description  string               `json:"description,omitempty"`
	Level        string               `json:"level,omitempty"`
	Status       string               `json:"status,omitempty"`
	Category     string               `json:"category,omitempty"`
	AgeGroup     string               `json:"ageGroup,omitempty"`
	Lang         string               `json:"lang,omitempty"`
	TopicRefs    []string             `json:"topicRefs,omitempty"`
	Translations []TranslationPayload `json:"translations,omitempty"`
	Blocks       []BlockPayload       `json:"blocks"`
}

// TranslationPayload mirrors Translation on the wire.
type TranslationPayload struct {
	Language    string `json:"language"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BlockPayload is the persistable form of a block.
type BlockPayload struct {
	Type       BlockType         `json:"type"`
	OrderIndex int               `json:"orderIndex"`
	Items      []ItemPayload     `json:"items,omitempty"`
	Questions  []QuestionPayload `json:"questions,omitempty"`
}

// ItemPayload carries exactly the field matching its type: content for TEXT,
// mediaUrl for IMAGE and VIDEO.
type ItemPayload struct {
	ItemType   ItemType `json:"itemType"`
	OrderIndex int      `json:"orderIndex"`
	Content    string   `json:"content,omitempty"`
	MediaURL   string   `json:"mediaUrl,omitempty"`
}

// QuestionPayload is the persistable form of a question. MediaURL appears
// only when an image is attached.
type QuestionPayload struct {
	Text        string              `json:"text"`
	Type        QuestionType        `json:"type"`
	OrderIndex  int                 `json:"orderIndex"`
	MediaURL    string              `json:"mediaUrl,omitempty"`
	AnswerItems []AnswerItemPayload `json:"answerItems"`
}

// AnswerItemPayload is one candidate answer on the wire. IsCorrect is present
// only for choice questions.
type AnswerItemPayload struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

// Normalize projects the editable tree into its outbound shape. It is a pure
// function of the tree: no side effects, identical output on repeated calls.
// Order indices are recomputed from positions here regardless of what the
// in-memory nodes carry, as a safety net against index drift.
func Normalize(l Lesson) Payload {
	p := Payload{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Level:       l.Level,
		Status:      l.Status,
		Category:    l.Category,
		AgeGroup:    l.AgeGroup,
		Lang:        l.Lang,
		Blocks:      make([]BlockPayload, 0, len(l.Blocks)),
	}
	if len(l.TopicRefs) > 0 {
		p.TopicRefs = append([]string(nil), l.TopicRefs...)
	}
	for _, tr := range l.Translations {
		p.Translations = append(p.Translations, TranslationPayload(tr))
	}
	for bi, b := range l.Blocks {
		p.Blocks = append(p.Blocks, normalizeBlock(b, bi+1))
	}
	return p
}

func normalizeBlock(b Block, position int) BlockPayload {
	out := BlockPayload{
		Type:       b.Type,
		OrderIndex: position,
	}
	for i, it := range b.Items {
		out.Items = append(out.Items, normalizeItem(it, i+1))
	}
	for i, q := range b.Questions {
		out.Questions = append(out.Questions, normalizeQuestion(q, i+1))
	}
	return out
}

func normalizeItem(it Item, position int) ItemPayload {
	out := ItemPayload{
		ItemType:   it.Type,
		OrderIndex: position,
	}
	switch it.Type {
	case ItemTypeText:
		out.Content = it.Content
	case ItemTypeImage:
		out.MediaURL = storage.NormalizeKey(it.Image.ObjectKey)
	case ItemTypeVideo:
		out.MediaURL = it.MediaURL
	}
	return out
}

func normalizeQuestion(q Question, position int) QuestionPayload {
	out := QuestionPayload{
		Text:        q.Text,
		Type:        q.Type,
		OrderIndex:  position,
		MediaURL:    storage.NormalizeKey(q.Image.ObjectKey),
		AnswerItems: make([]AnswerItemPayload, 0, len(q.AnswerItems)),
	}
	choice := q.Type == QuestionSingleChoice || q.Type == QuestionTrueFalse
	for _, a := range q.AnswerItems {
		ap := AnswerItemPayload{Key: a.Key, Value: a.Value}
		if choice {
			v := a.IsCorrect
			ap.IsCorrect = &v
		}
		out.AnswerItems = append(out.AnswerItems, ap)
	}
	return out
}
