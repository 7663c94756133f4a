// Package export renders lessons into XLSX workbooks for offline review.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/lesson-admin/internal/lesson"
)

// Sheet names within the exported workbook.
const (
	SheetLessons   = "Lessons"
	SheetBlocks    = "Blocks"
	SheetQuestions = "Questions"
)

// Workbook renders stored lesson documents into one XLSX file: a lesson
// overview sheet, a block/item sheet, and a question sheet.
func Workbook(lessons []lesson.Payload) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeLessonSheet(f, lessons); err != nil {
		return nil, err
	}
	if err := writeBlockSheet(f, lessons); err != nil {
		return nil, err
	}
	if err := writeQuestionSheet(f, lessons); err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(SheetLessons)
	if err != nil {
		return nil, fmt.Errorf("find lessons sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeLessonSheet(f *excelize.File, lessons []lesson.Payload) error {
	if err := f.SetSheetName("Sheet1", SheetLessons); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	headers := []any{"ID", "Title", "Level", "Status", "Category", "Age Group", "Language", "Blocks"}
	if err := setRow(f, SheetLessons, 1, headers); err != nil {
		return err
	}
	for i, p := range lessons {
		row := []any{p.ID, titleOf(p), p.Level, p.Status, p.Category, p.AgeGroup, p.Lang, len(p.Blocks)}
		if err := setRow(f, SheetLessons, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeBlockSheet(f *excelize.File, lessons []lesson.Payload) error {
	if _, err := f.NewSheet(SheetBlocks); err != nil {
		return fmt.Errorf("create blocks sheet: %w", err)
	}
	headers := []any{"Lesson ID", "Block #", "Block Type", "Item #", "Item Type", "Content"}
	if err := setRow(f, SheetBlocks, 1, headers); err != nil {
		return err
	}
	row := 2
	for _, p := range lessons {
		for _, b := range p.Blocks {
			if len(b.Items) == 0 {
				if err := setRow(f, SheetBlocks, row, []any{p.ID, b.OrderIndex, string(b.Type), "", "", ""}); err != nil {
					return err
				}
				row++
				continue
			}
			for _, it := range b.Items {
				content := it.Content
				if content == "" {
					content = it.MediaURL
				}
				if err := setRow(f, SheetBlocks, row, []any{p.ID, b.OrderIndex, string(b.Type), it.OrderIndex, string(it.ItemType), content}); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func writeQuestionSheet(f *excelize.File, lessons []lesson.Payload) error {
	if _, err := f.NewSheet(SheetQuestions); err != nil {
		return fmt.Errorf("create questions sheet: %w", err)
	}
	headers := []any{"Lesson ID", "Block #", "Question #", "Type", "Text", "Answers", "Correct"}
	if err := setRow(f, SheetQuestions, 1, headers); err != nil {
		return err
	}
	row := 2
	for _, p := range lessons {
		for _, b := range p.Blocks {
			for _, q := range b.Questions {
				answers, correct := flattenAnswers(q)
				if err := setRow(f, SheetQuestions, row, []any{p.ID, b.OrderIndex, q.OrderIndex, string(q.Type), q.Text, answers, correct}); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func flattenAnswers(q lesson.QuestionPayload) (answers, correct string) {
	for i, a := range q.AnswerItems {
		if i > 0 {
			answers += "; "
		}
		answers += a.Key + ": " + a.Value
		if a.IsCorrect != nil && *a.IsCorrect {
			correct = a.Key
		}
	}
	return answers, correct
}

func titleOf(p lesson.Payload) string {
	if p.Title != "" {
		return p.Title
	}
	if len(p.Translations) > 0 {
		return p.Translations[0].Title
	}
	return ""
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("compute cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
	}
	return nil
}
