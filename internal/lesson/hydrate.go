package lesson

// FromPayload rebuilds an editable tree from a stored document. Every node
// gets a fresh transient id: stored documents carry no child identifiers, and
// even if they did, the editor must not assume they survive a save/reload
// round-trip. Image preview URLs are resolved by the caller, which knows the
// media store.
func FromPayload(p Payload) Lesson {
	l := Lesson{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Level:       p.Level,
		Status:      p.Status,
		Category:    p.Category,
		AgeGroup:    p.AgeGroup,
		Lang:        p.Lang,
		Blocks:      make([]Block, 0, len(p.Blocks)),
	}
	if len(p.TopicRefs) > 0 {
		l.TopicRefs = append([]string(nil), p.TopicRefs...)
	}
	for _, tr := range p.Translations {
		l.Translations = append(l.Translations, Translation(tr))
	}
	for _, bp := range p.Blocks {
		l.Blocks = append(l.Blocks, hydrateBlock(bp))
	}
	renumberBlocks(l.Blocks)
	return l
}

func hydrateBlock(bp BlockPayload) Block {
	b := Block{
		ID:        newID(),
		Type:      bp.Type,
		Items:     make([]Item, 0, len(bp.Items)),
		Questions: make([]Question, 0, len(bp.Questions)),
	}
	for _, ip := range bp.Items {
		b.Items = append(b.Items, hydrateItem(ip))
	}
	for _, qp := range bp.Questions {
		b.Questions = append(b.Questions, hydrateQuestion(qp))
	}
	renumberItems(b.Items)
	renumberQuestions(b.Questions)
	return b
}

func hydrateItem(ip ItemPayload) Item {
	it := Item{
		ID:   newID(),
		Type: ip.ItemType,
	}
	switch ip.ItemType {
	case ItemTypeText:
		it.Content = ip.Content
	case ItemTypeImage:
		it.Image = Image{ObjectKey: ip.MediaURL}
	case ItemTypeVideo:
		it.MediaURL = ip.MediaURL
	}
	return it
}

func hydrateQuestion(qp QuestionPayload) Question {
	q := Question{
		ID:   newID(),
		Text: qp.Text,
		Type: qp.Type,
	}
	if qp.MediaURL != "" {
		q.Image = Image{ObjectKey: qp.MediaURL}
	}
	for _, ap := range qp.AnswerItems {
		a := AnswerItem{Key: ap.Key, Value: ap.Value}
		if ap.IsCorrect != nil {
			a.IsCorrect = *ap.IsCorrect
		}
		q.AnswerItems = append(q.AnswerItems, a)
	}
	renumberAnswers(q.AnswerItems)
	return q
}

// ResolvePreviews fills in preview URLs for every attached image using the
// given composer; used right after hydration.
func (l Lesson) ResolvePreviews(previewURL func(key string) string) Lesson {
	blocks := copyBlocks(l.Blocks)
	for bi := range blocks {
		items := append([]Item(nil), blocks[bi].Items...)
		for i := range items {
			if items[i].Type == ItemTypeImage && items[i].Image.ObjectKey != "" {
				items[i].Image.PreviewURL = previewURL(items[i].Image.ObjectKey)
			}
		}
		blocks[bi].Items = items

		questions := append([]Question(nil), blocks[bi].Questions...)
		for i := range questions {
			if questions[i].Image.ObjectKey != "" {
				questions[i].Image.PreviewURL = previewURL(questions[i].Image.ObjectKey)
			}
		}
		blocks[bi].Questions = questions
	}
	l.Blocks = blocks
	return l
}
