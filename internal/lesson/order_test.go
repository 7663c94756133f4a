package lesson

import (
	"testing"
)

func TestInsertAt(t *testing.T) {
	tests := []struct {
		name string
		s    []string
		i    int
		v    string
		want []string
	}{
		{"middle", []string{"a", "b", "c"}, 1, "x", []string{"a", "x", "b", "c"}},
		{"front", []string{"a", "b"}, 0, "x", []string{"x", "a", "b"}},
		{"end", []string{"a", "b"}, 2, "x", []string{"a", "b", "x"}},
		{"past-end-clamps", []string{"a"}, 9, "x", []string{"a", "x"}},
		{"negative-clamps", []string{"a"}, -3, "x", []string{"x", "a"}},
		{"empty", nil, 0, "x", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := insertAt(tt.s, tt.i, tt.v)
			assertSlice(t, got, tt.want)
		})
	}
}

func TestRemoveAt(t *testing.T) {
	tests := []struct {
		name string
		s    []string
		i    int
		want []string
	}{
		{"middle", []string{"a", "b", "c"}, 1, []string{"a", "c"}},
		{"first", []string{"a", "b"}, 0, []string{"b"}},
		{"last", []string{"a", "b"}, 1, []string{"a"}},
		{"out-of-range", []string{"a"}, 5, []string{"a"}},
		{"negative", []string{"a"}, -1, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removeAt(tt.s, tt.i)
			assertSlice(t, got, tt.want)
		})
	}
}

func TestMoveTo(t *testing.T) {
	tests := []struct {
		name   string
		s      []string
		from   int
		to     int
		want   []string
		wantOK bool
	}{
		{"down", []string{"a", "b", "c"}, 0, 2, []string{"b", "c", "a"}, true},
		{"up", []string{"a", "b", "c"}, 2, 0, []string{"c", "a", "b"}, true},
		{"same", []string{"a", "b"}, 1, 1, []string{"a", "b"}, true},
		{"to-past-end", []string{"a", "b"}, 0, 2, []string{"a", "b"}, false},
		{"to-negative", []string{"a", "b"}, 0, -1, []string{"a", "b"}, false},
		{"from-out-of-range", []string{"a", "b"}, 5, 0, []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := moveTo(tt.s, tt.from, tt.to)
			if ok != tt.wantOK {
				t.Errorf("moveTo() ok = %v, want %v", ok, tt.wantOK)
			}
			assertSlice(t, got, tt.want)
		})
	}
}

func TestMoveTo_DoesNotMutateInput(t *testing.T) {
	s := []string{"a", "b", "c"}
	moveTo(append([]string(nil), s...), 0, 2)
	assertSlice(t, s, []string{"a", "b", "c"})
}

func TestRenumber_Contiguous(t *testing.T) {
	blocks := []Block{
		{OrderIndex: 7},
		{OrderIndex: 7},
		{OrderIndex: 0},
	}
	renumberBlocks(blocks)
	for i, b := range blocks {
		if b.OrderIndex != i+1 {
			t.Errorf("blocks[%d].OrderIndex = %d, want %d", i, b.OrderIndex, i+1)
		}
	}
}

func assertSlice(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
