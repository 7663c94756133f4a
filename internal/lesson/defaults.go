package lesson

// Answer templates per question type. The editor always starts from a
// structurally valid question so authors never assemble the answer shape by
// hand.
const matchAnswerSlots = 3

// New returns an empty lesson skeleton for the create flow.
func New() Lesson {
	return Lesson{Blocks: []Block{}}
}

// NewBlock returns a block of the given type with empty item and question
// lists and a fresh transient id.
func NewBlock(t BlockType) Block {
	return Block{
		ID:        newID(),
		Type:      t,
		Items:     []Item{},
		Questions: []Question{},
	}
}

// NewItem returns an item of the given type with its type-specific payload
// zeroed.
func NewItem(t ItemType) Item {
	return Item{ID: newID(), Type: t}
}

// NewQuestion returns a question of the given type pre-filled with its
// default answer template.
func NewQuestion(t QuestionType) Question {
	q := Question{
		ID:          newID(),
		Type:        t,
		AnswerItems: defaultAnswerItems(t),
	}
	renumberAnswers(q.AnswerItems)
	return q
}

func defaultAnswerItems(t QuestionType) []AnswerItem {
	switch t {
	case QuestionTrueFalse:
		return []AnswerItem{
			{Key: "T", IsCorrect: true},
			{Key: "F"},
		}
	case QuestionSingleChoice:
		return []AnswerItem{
			{Key: "A", IsCorrect: true},
			{Key: "B"},
			{Key: "C"},
			{Key: "D"},
		}
	case QuestionMatch, QuestionMatchProgressive:
		items := make([]AnswerItem, matchAnswerSlots)
		return items
	default:
		return []AnswerItem{}
	}
}
