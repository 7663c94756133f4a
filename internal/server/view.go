package server

import "github.com/p-n-ai/lesson-admin/internal/lesson"

// View shapes for the admin UI. Unlike the persistence payload these carry the
// transient node ids (so the UI can address mutations) and the live image
// attachment state.

type sessionView struct {
	SessionID string     `json:"sessionId"`
	Dirty     bool       `json:"dirty"`
	Lesson    lessonView `json:"lesson"`
}

type lessonView struct {
	ID           string            `json:"id,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Level        string            `json:"level,omitempty"`
	Status       string            `json:"status,omitempty"`
	Category     string            `json:"category,omitempty"`
	AgeGroup     string            `json:"ageGroup,omitempty"`
	Lang         string            `json:"lang,omitempty"`
	TopicRefs    []string          `json:"topicRefs,omitempty"`
	Translations []translationView `json:"translations,omitempty"`
	Blocks       []blockView       `json:"blocks"`
}

type translationView struct {
	Language    string `json:"language"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type blockView struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OrderIndex int            `json:"orderIndex"`
	Items      []itemView     `json:"items"`
	Questions  []questionView `json:"questions,omitempty"`
}

type itemView struct {
	ID         string     `json:"id"`
	Type       string     `json:"itemType"`
	OrderIndex int        `json:"orderIndex"`
	Content    string     `json:"content,omitempty"`
	MediaURL   string     `json:"mediaUrl,omitempty"`
	Image      *imageView `json:"image,omitempty"`
}

type questionView struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Type        string       `json:"type"`
	OrderIndex  int          `json:"orderIndex"`
	Image       *imageView   `json:"image,omitempty"`
	AnswerItems []answerView `json:"answerItems"`
}

type answerView struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	OrderIndex int    `json:"orderIndex"`
	IsCorrect  bool   `json:"isCorrect"`
}

type imageView struct {
	State      string `json:"state"`
	ObjectKey  string `json:"objectKey,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	FileName   string `json:"fileName,omitempty"`
}

func viewSession(id string, dirty bool, l lesson.Lesson) sessionView {
	return sessionView{
		SessionID: id,
		Dirty:     dirty,
		Lesson:    viewLesson(l),
	}
}

func viewLesson(l lesson.Lesson) lessonView {
	out := lessonView{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Level:       l.Level,
		Status:      l.Status,
		Category:    l.Category,
		AgeGroup:    l.AgeGroup,
		Lang:        l.Lang,
		TopicRefs:   l.TopicRefs,
		Blocks:      make([]blockView, 0, len(l.Blocks)),
	}
	for _, tr := range l.Translations {
		out.Translations = append(out.Translations, translationView(tr))
	}
	for _, b := range l.Blocks {
		out.Blocks = append(out.Blocks, viewBlock(b))
	}
	return out
}

func viewBlock(b lesson.Block) blockView {
	out := blockView{
		ID:         b.ID,
		Type:       string(b.Type),
		OrderIndex: b.OrderIndex,
		Items:      make([]itemView, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		iv := itemView{
			ID:         it.ID,
			Type:       string(it.Type),
			OrderIndex: it.OrderIndex,
			Content:    it.Content,
			MediaURL:   it.MediaURL,
		}
		if it.Type == lesson.ItemTypeImage {
			iv.Image = viewImage(it.Image)
		}
		out.Items = append(out.Items, iv)
	}
	for _, q := range b.Questions {
		qv := questionView{
			ID:          q.ID,
			Text:        q.Text,
			Type:        string(q.Type),
			OrderIndex:  q.OrderIndex,
			Image:       viewImage(q.Image),
			AnswerItems: make([]answerView, 0, len(q.AnswerItems)),
		}
		for _, a := range q.AnswerItems {
			qv.AnswerItems = append(qv.AnswerItems, answerView(a))
		}
		out.Questions = append(out.Questions, qv)
	}
	return out
}

// viewImage returns nil for an empty attachment so the field is omitted.
func viewImage(img lesson.Image) *imageView {
	state := img.State()
	if state == lesson.AttachEmpty {
		return nil
	}
	return &imageView{
		State:      state.String(),
		ObjectKey:  img.ObjectKey,
		PreviewURL: img.PreviewURL,
		FileName:   img.PendingName,
	}
}
