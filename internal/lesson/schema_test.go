package lesson_test

import (
	"testing"

	"github.com/p-n-ai/lesson-admin/internal/lesson"
)

func TestCheckPayload_AcceptsNormalizedOutput(t *testing.T) {
	p := lesson.Normalize(sampleLesson())
	if err := lesson.CheckPayload(p); err != nil {
		t.Fatalf("CheckPayload() error = %v, want nil", err)
	}
}

func TestCheckPayload_AcceptsEmptyLesson(t *testing.T) {
	p := lesson.Normalize(lesson.New())
	if err := lesson.CheckPayload(p); err != nil {
		t.Fatalf("CheckPayload() error = %v, want nil", err)
	}
}

func TestCheckPayload_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*lesson.Payload)
	}{
		{
			"zero-order-index",
			func(p *lesson.Payload) { p.Blocks[0].OrderIndex = 0 },
		},
		{
			"unknown-block-type",
			func(p *lesson.Payload) { p.Blocks[0].Type = "CAROUSEL" },
		},
		{
			"unknown-question-type",
			func(p *lesson.Payload) { p.Blocks[0].Questions[0].Type = "ESSAY" },
		},
		{
			"text-item-with-media-url",
			func(p *lesson.Payload) { p.Blocks[0].Items[0].MediaURL = "https://x.test/v" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := lesson.Normalize(sampleLesson())
			tt.mutate(&p)
			if err := lesson.CheckPayload(p); err == nil {
				t.Error("CheckPayload() error = nil, want schema violation")
			}
		})
	}
}
