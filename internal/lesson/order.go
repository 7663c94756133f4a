package lesson

// Ordered-collection maintenance. Every structural mutation runs through
// these helpers so that sibling order indices are always exactly 1..N.
// Renumbering is full and linear; editing sessions are single-user and
// short-lived, so there is no need for persistent ordering keys.

// insertAt returns s with v inserted at position i. Positions outside the
// slice clamp to the nearest end.
func insertAt[T any](s []T, i int, v T) []T {
	if i < 0 {
		i = 0
	}
	if i > len(s) {
		i = len(s)
	}
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	out = append(out, s[i:]...)
	return out
}

// removeAt returns s without the element at position i. An out-of-range
// position returns s unchanged.
func removeAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

// moveTo returns s with the element at from relocated to position to. A
// target outside [0, len) is a boundary clamp, not an error: the input is
// returned unchanged and ok is false.
func moveTo[T any](s []T, from, to int) (out []T, ok bool) {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return s, false
	}
	if from == to {
		return s, true
	}
	out = make([]T, 0, len(s))
	out = append(out, s...)
	v := out[from]
	out = append(out[:from], out[from+1:]...)
	out = insertAt(out, to, v)
	return out, true
}

// renumber assigns each element its 1-based position via set. It mutates s
// in place; callers pass a freshly copied slice.
func renumber[T any](s []T, set func(*T, int)) {
	for i := range s {
		set(&s[i], i+1)
	}
}

func renumberBlocks(s []Block)      { renumber(s, func(b *Block, n int) { b.OrderIndex = n }) }
func renumberItems(s []Item)        { renumber(s, func(it *Item, n int) { it.OrderIndex = n }) }
func renumberQuestions(s []Question) { renumber(s, func(q *Question, n int) { q.OrderIndex = n }) }
func renumberAnswers(s []AnswerItem) { renumber(s, func(a *AnswerItem, n int) { a.OrderIndex = n }) }
