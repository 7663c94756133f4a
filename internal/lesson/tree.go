package lesson

// Tree mutations. Each operation locates its target by id, replaces only the
// touched branch, renumbers any collection whose membership changed, and
// returns the new tree. A missing id is a no-op, not an error: callers can
// only ask for ids they currently hold.

func (l Lesson) blockIndex(blockID string) int {
	for i := range l.Blocks {
		if l.Blocks[i].ID == blockID {
			return i
		}
	}
	return -1
}

func copyBlocks(s []Block) []Block {
	return append([]Block(nil), s...)
}

// AddBlock appends a new block of the given type.
func (l Lesson) AddBlock(t BlockType) Lesson {
	blocks := append(copyBlocks(l.Blocks), NewBlock(t))
	renumberBlocks(blocks)
	l.Blocks = blocks
	return l
}

// MoveBlock relocates the block at position from to position to. An
// out-of-bounds target means the block is already at the edge; the tree is
// returned unchanged.
func (l Lesson) MoveBlock(from, to int) Lesson {
	blocks, ok := moveTo(copyBlocks(l.Blocks), from, to)
	if !ok {
		return l
	}
	renumberBlocks(blocks)
	l.Blocks = blocks
	return l
}

// DeleteBlock removes the block with the given id and renumbers the rest.
func (l Lesson) DeleteBlock(blockID string) Lesson {
	i := l.blockIndex(blockID)
	if i < 0 {
		return l
	}
	blocks := removeAt(copyBlocks(l.Blocks), i)
	renumberBlocks(blocks)
	l.Blocks = blocks
	return l
}

// updateBlock replaces one block through fn, copying the block list so the
// previous tree stays intact.
func (l Lesson) updateBlock(blockID string, fn func(Block) Block) Lesson {
	i := l.blockIndex(blockID)
	if i < 0 {
		return l
	}
	blocks := copyBlocks(l.Blocks)
	blocks[i] = fn(blocks[i])
	l.Blocks = blocks
	return l
}

// AddItem appends a new item of the given type to the block.
func (l Lesson) AddItem(blockID string, t ItemType) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		items := append(append([]Item(nil), b.Items...), NewItem(t))
		renumberItems(items)
		b.Items = items
		return b
	})
}

// ItemPatch carries the updatable item fields; nil means leave unchanged.
type ItemPatch struct {
	Content  *string
	MediaURL *string
}

// UpdateItem applies a patch to one item.
func (l Lesson) UpdateItem(blockID, itemID string, patch ItemPatch) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		items := append([]Item(nil), b.Items...)
		for i := range items {
			if items[i].ID != itemID {
				continue
			}
			if patch.Content != nil {
				items[i].Content = *patch.Content
			}
			if patch.MediaURL != nil {
				items[i].MediaURL = *patch.MediaURL
			}
			break
		}
		b.Items = items
		return b
	})
}

// SetItemImage replaces the attachment state of one IMAGE item.
func (l Lesson) SetItemImage(blockID, itemID string, img Image) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		items := append([]Item(nil), b.Items...)
		for i := range items {
			if items[i].ID == itemID {
				items[i].Image = img
				break
			}
		}
		b.Items = items
		return b
	})
}

// MoveItem relocates an item within its block; out-of-bounds targets are
// no-ops.
func (l Lesson) MoveItem(blockID string, from, to int) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		items, ok := moveTo(append([]Item(nil), b.Items...), from, to)
		if !ok {
			return b
		}
		renumberItems(items)
		b.Items = items
		return b
	})
}

// DeleteItem removes one item and renumbers its siblings.
func (l Lesson) DeleteItem(blockID, itemID string) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		for i := range b.Items {
			if b.Items[i].ID == itemID {
				items := removeAt(append([]Item(nil), b.Items...), i)
				renumberItems(items)
				b.Items = items
				return b
			}
		}
		return b
	})
}

// AddQuestion appends a new question, pre-filled with the answer template
// for its type.
func (l Lesson) AddQuestion(blockID string, t QuestionType) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		questions := append(append([]Question(nil), b.Questions...), NewQuestion(t))
		renumberQuestions(questions)
		b.Questions = questions
		return b
	})
}

// QuestionPatch carries the updatable question fields.
type QuestionPatch struct {
	Text *string
}

// UpdateQuestion applies a patch to one question.
func (l Lesson) UpdateQuestion(blockID, questionID string, patch QuestionPatch) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		if patch.Text != nil {
			q.Text = *patch.Text
		}
		return q
	})
}

// SetQuestionImage replaces the attachment state of one question.
func (l Lesson) SetQuestionImage(blockID, questionID string, img Image) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		q.Image = img
		return q
	})
}

// DeleteQuestion removes one question and renumbers its siblings.
func (l Lesson) DeleteQuestion(blockID, questionID string) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		for i := range b.Questions {
			if b.Questions[i].ID == questionID {
				questions := removeAt(append([]Question(nil), b.Questions...), i)
				renumberQuestions(questions)
				b.Questions = questions
				return b
			}
		}
		return b
	})
}

func (l Lesson) updateQuestion(blockID, questionID string, fn func(Question) Question) Lesson {
	return l.updateBlock(blockID, func(b Block) Block {
		questions := append([]Question(nil), b.Questions...)
		for i := range questions {
			if questions[i].ID == questionID {
				questions[i] = fn(questions[i])
				break
			}
		}
		b.Questions = questions
		return b
	})
}

// AddAnswerItem appends a blank key/value pair; meaningful for MATCH-style
// questions whose answer lists are free-length.
func (l Lesson) AddAnswerItem(blockID, questionID string) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		answers := append(append([]AnswerItem(nil), q.AnswerItems...), AnswerItem{})
		renumberAnswers(answers)
		q.AnswerItems = answers
		return q
	})
}

// AnswerPatch carries the updatable answer fields.
type AnswerPatch struct {
	Key   *string
	Value *string
}

// UpdateAnswerItem applies a patch to the answer at the given 0-based index.
func (l Lesson) UpdateAnswerItem(blockID, questionID string, index int, patch AnswerPatch) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		if index < 0 || index >= len(q.AnswerItems) {
			return q
		}
		answers := append([]AnswerItem(nil), q.AnswerItems...)
		if patch.Key != nil {
			answers[index].Key = *patch.Key
		}
		if patch.Value != nil {
			answers[index].Value = *patch.Value
		}
		q.AnswerItems = answers
		return q
	})
}

// MoveAnswerItem relocates an answer within its question; out-of-bounds
// targets are no-ops.
func (l Lesson) MoveAnswerItem(blockID, questionID string, from, to int) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		answers, ok := moveTo(append([]AnswerItem(nil), q.AnswerItems...), from, to)
		if !ok {
			return q
		}
		renumberAnswers(answers)
		q.AnswerItems = answers
		return q
	})
}

// DeleteAnswerItem removes the answer at the given 0-based index.
func (l Lesson) DeleteAnswerItem(blockID, questionID string, index int) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		answers := removeAt(append([]AnswerItem(nil), q.AnswerItems...), index)
		renumberAnswers(answers)
		q.AnswerItems = answers
		return q
	})
}

// SetCorrectAnswer marks the answer at index correct and clears every other
// correctness flag, so choice questions hold at most one true at a time.
// Non-choice questions are left untouched.
func (l Lesson) SetCorrectAnswer(blockID, questionID string, index int) Lesson {
	return l.updateQuestion(blockID, questionID, func(q Question) Question {
		if q.Type != QuestionSingleChoice && q.Type != QuestionTrueFalse {
			return q
		}
		if index < 0 || index >= len(q.AnswerItems) {
			return q
		}
		answers := append([]AnswerItem(nil), q.AnswerItems...)
		for i := range answers {
			answers[i].IsCorrect = i == index
		}
		q.AnswerItems = answers
		return q
	})
}

// FindItem returns the item with the given id and its owning block.
func (l Lesson) FindItem(blockID, itemID string) (Item, bool) {
	i := l.blockIndex(blockID)
	if i < 0 {
		return Item{}, false
	}
	for _, it := range l.Blocks[i].Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// FindQuestion returns the question with the given id within a block.
func (l Lesson) FindQuestion(blockID, questionID string) (Question, bool) {
	i := l.blockIndex(blockID)
	if i < 0 {
		return Question{}, false
	}
	for _, q := range l.Blocks[i].Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return Question{}, false
}
