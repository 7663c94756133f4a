// Package lesson implements the editable lesson document tree: an ordered
// list of content blocks, each holding ordered content items and optional
// quiz questions with ordered answers. Mutations return a new tree and keep
// every sibling collection numbered 1..N.
package lesson

import "github.com/google/uuid"

// BlockType classifies a content block.
type BlockType string

const (
	BlockTypeText  BlockType = "TEXT"
	BlockTypeImage BlockType = "IMAGE"
	BlockTypeVideo BlockType = "VIDEO"
	BlockTypeMixed BlockType = "MIXED"
)

// ItemType classifies a content item within a block.
type ItemType string

const (
	ItemTypeText  ItemType = "TEXT"
	ItemTypeImage ItemType = "IMAGE"
	ItemTypeVideo ItemType = "VIDEO"
)

// QuestionType classifies a quiz question.
type QuestionType string

const (
	QuestionSingleChoice     QuestionType = "SINGLE_CHOICE"
	QuestionTrueFalse        QuestionType = "TRUE_FALSE"
	QuestionMatch            QuestionType = "MATCH"
	QuestionMatchProgressive QuestionType = "MATCH_PROGRESSIVE"
)

// TextMode selects how a lesson stores its display text.
type TextMode string

const (
	// TextModeSingle keeps one title/description pair on the lesson itself.
	TextModeSingle TextMode = "single"
	// TextModeMulti keeps a per-language translation array instead.
	TextModeMulti TextMode = "multi"
)

// AttachState describes where an image attachment is in its upload lifecycle.
type AttachState int

const (
	AttachEmpty AttachState = iota
	AttachStaged
	AttachUploading
	AttachAttached
)

func (s AttachState) String() string {
	switch s {
	case AttachEmpty:
		return "empty"
	case AttachStaged:
		return "staged"
	case AttachUploading:
		return "uploading"
	case AttachAttached:
		return "attached"
	default:
		return "unknown"
	}
}

// Image holds the editing-time state of a picture attached to an item or
// question. Only ObjectKey survives normalization; everything else is
// session-local.
type Image struct {
	ObjectKey   string // resolved media store key, empty until attached
	PreviewURL  string // viewable URL for the admin UI
	PendingFile []byte // staged bytes awaiting upload
	PendingName string
	PendingMIME string
	Uploading   bool
}

// State derives the attachment lifecycle state from the field values.
func (im Image) State() AttachState {
	switch {
	case im.Uploading:
		return AttachUploading
	case len(im.PendingFile) > 0:
		return AttachStaged
	case im.ObjectKey != "":
		return AttachAttached
	default:
		return AttachEmpty
	}
}

// Lesson is the root of an editable document. It is owned by exactly one
// editing session; mutations produce a new value.
type Lesson struct {
	ID          string // server-assigned, empty until first save
	Title       string
	Description string
	Level       string
	Status      string
	Category    string
	AgeGroup    string
	Lang        string
	TopicRefs   []string
	Translations []Translation
	Blocks       []Block
}

// Translation is a per-language shadow of the lesson's text fields, used when
// the editor runs in TextModeMulti.
type Translation struct {
	Language    string
	Title       string
	Description string
}

// Block is a typed section of lesson content.
type Block struct {
	ID         string // transient until persisted
	Type       BlockType
	OrderIndex int
	Items      []Item
	Questions  []Question
}

// Item is the smallest content unit inside a block. Exactly one of Content
// (TEXT) or MediaURL (VIDEO) or Image.ObjectKey (IMAGE) is meaningful,
// selected by Type.
type Item struct {
	ID         string
	Type       ItemType
	OrderIndex int
	Content    string // TEXT
	MediaURL   string // VIDEO external link
	Image      Image  // IMAGE attachment state
}

// Question is a quiz prompt owned by a block.
type Question struct {
	ID          string
	Text        string
	Type        QuestionType
	OrderIndex  int
	Image       Image // optional illustration
	AnswerItems []AnswerItem
}

// AnswerItem is one candidate answer. Key semantics depend on the question
// type; IsCorrect is meaningful only for choice questions.
type AnswerItem struct {
	Key        string
	Value      string
	OrderIndex int
	IsCorrect  bool
}

// newID returns a collision-resistant transient id for a new node. These ids
// are local to the editing session and never survive a save/reload.
func newID() string {
	return uuid.NewString()
}
