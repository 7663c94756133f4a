package lesson

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrValidation marks pre-save validation failures so callers can map them to
// a user-facing message instead of a server fault.
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first field that blocks a save.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks the tree before any save is attempted. It runs locally,
// touches no network, and reports the first missing or invalid field. mode
// selects whether text lives on the lesson itself or in the translation
// array.
func Validate(l Lesson, mode TextMode) error {
	if err := validateText(l, mode); err != nil {
		return err
	}
	if l.Level == "" {
		return invalid("level", "required")
	}
	if l.Status == "" {
		return invalid("status", "required")
	}
	if l.Category == "" {
		return invalid("category", "required")
	}
	if l.AgeGroup == "" {
		return invalid("ageGroup", "required")
	}
	if l.Lang == "" {
		return invalid("lang", "required")
	}
	if _, err := language.Parse(l.Lang); err != nil {
		return invalid("lang", fmt.Sprintf("unknown language code %q", l.Lang))
	}

	for bi, b := range l.Blocks {
		if err := validateBlock(b, bi); err != nil {
			return err
		}
	}
	return nil
}

func validateText(l Lesson, mode TextMode) error {
	if mode == TextModeMulti {
		if len(l.Translations) == 0 {
			return invalid("translations", "at least one translation is required")
		}
		for i, tr := range l.Translations {
			field := fmt.Sprintf("translations[%d]", i)
			if tr.Language == "" {
				return invalid(field+".language", "required")
			}
			if _, err := language.Parse(tr.Language); err != nil {
				return invalid(field+".language", fmt.Sprintf("unknown language code %q", tr.Language))
			}
			if tr.Title == "" {
				return invalid(field+".title", "required")
			}
			if tr.Description == "" {
				return invalid(field+".description", "required")
			}
		}
		return nil
	}

	if l.Title == "" {
		return invalid("title", "required")
	}
	if l.Description == "" {
		return invalid("description", "required")
	}
	return nil
}

func validateBlock(b Block, bi int) error {
	for ii, it := range b.Items {
		if it.Type != ItemTypeImage {
			continue
		}
		field := fmt.Sprintf("blocks[%d].items[%d]", bi, ii)
		switch it.Image.State() {
		case AttachStaged, AttachUploading:
			return invalid(field, "image upload has not finished")
		case AttachEmpty:
			return invalid(field, "image is required")
		}
	}
	for qi, q := range b.Questions {
		field := fmt.Sprintf("blocks[%d].questions[%d]", bi, qi)
		switch q.Image.State() {
		case AttachStaged, AttachUploading:
			return invalid(field, "image upload has not finished")
		}
		if err := validateAnswers(q, field); err != nil {
			return err
		}
	}
	return nil
}

func validateAnswers(q Question, field string) error {
	switch q.Type {
	case QuestionTrueFalse:
		if len(q.AnswerItems) != 2 {
			return invalid(field+".answerItems", fmt.Sprintf("TRUE_FALSE needs exactly 2 answers, got %d", len(q.AnswerItems)))
		}
		if countCorrect(q.AnswerItems) != 1 {
			return invalid(field+".answerItems", "exactly one answer must be correct")
		}
	case QuestionSingleChoice:
		if len(q.AnswerItems) != 4 {
			return invalid(field+".answerItems", fmt.Sprintf("SINGLE_CHOICE needs exactly 4 answers, got %d", len(q.AnswerItems)))
		}
		if countCorrect(q.AnswerItems) != 1 {
			return invalid(field+".answerItems", "exactly one answer must be correct")
		}
	case QuestionMatch, QuestionMatchProgressive:
		if countCorrect(q.AnswerItems) != 0 {
			return invalid(field+".answerItems", "match questions carry no correctness flags")
		}
	}
	return nil
}

func countCorrect(answers []AnswerItem) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}
