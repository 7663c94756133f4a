// Package dictionary resolves enumeration codes to display labels for the
// admin UI: lesson levels, statuses, categories, languages, age groups,
// block types and question types.
package dictionary

import (
	"context"
	"errors"
)

// Type names a dictionary.
type Type string

const (
	TypeLevel        Type = "LEVEL"
	TypeStatus       Type = "STATUS"
	TypeCategory     Type = "CATEGORY"
	TypeLanguage     Type = "LANGUAGE"
	TypeBlockType    Type = "BLOCK_TYPE"
	TypeAgeGroup     Type = "AGE_GROUP"
	TypeQuestionType Type = "QUESTION_TYPE"
)

// Types lists every known dictionary type.
var Types = []Type{
	TypeLevel,
	TypeStatus,
	TypeCategory,
	TypeLanguage,
	TypeBlockType,
	TypeAgeGroup,
	TypeQuestionType,
}

// ErrUnknownType is returned for a dictionary type no source knows.
var ErrUnknownType = errors.New("unknown dictionary type")

// Entry is one code/label pair. Order within a dictionary is significant and
// preserved end to end.
type Entry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Source provides read-only dictionary lookups.
type Source interface {
	Lookup(ctx context.Context, t Type) ([]Entry, error)
}

// Known reports whether t is a recognized dictionary type.
func Known(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
