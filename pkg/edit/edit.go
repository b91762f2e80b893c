// Package edit records position-addressed text edits against a pristine
// file and applies them in a single pass.
//
// Every offset handed to a [Recorder] refers to the original, unmodified
// text. Operations are kept in discovery order and are never applied one
// after another against a shifting buffer.
package edit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors.
var (
	// ErrOutOfRange is returned when an operation addresses text outside the original.
	ErrOutOfRange = errors.New("edit offset out of range")
	// ErrOverlap is returned by [CheckOverlaps] when two removals share original text.
	ErrOverlap = errors.New("overlapping edits")
)

// Kind identifies an edit operation.
type Kind uint8

// Operation kinds.
const (
	// KindInsertLeft attaches text to the left side of a zero-width point.
	KindInsertLeft Kind = iota
	// KindInsertRight attaches text to the right side of a zero-width point.
	KindInsertRight
	// KindRemove deletes a span of the original text.
	KindRemove
	// KindReplace deletes a span of the original text and puts new text in its place.
	KindReplace
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsertLeft:
		return "insert-left"
	case KindInsertRight:
		return "insert-right"
	case KindRemove:
		return "remove"
	case KindReplace:
		return "replace"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Operation is a single edit against the original text of one file.
type Operation struct {
	Kind   Kind
	Offset int
	Length int
	Text   string
}

// End returns the end of the original span the operation covers.
func (op Operation) End() int {
	return op.Offset + op.Length
}

// IsInsert reports whether op is zero-width.
func (op Operation) IsInsert() bool {
	return op.Kind == KindInsertLeft || op.Kind == KindInsertRight
}

// Recorder accumulates operations for one file in discovery order.
type Recorder struct {
	path string
	ops  []Operation
}

// NewRecorder creates an empty recorder for path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Path returns the file the recorder belongs to.
func (r *Recorder) Path() string {
	return r.path
}

// InsertLeft records text attached to the left of offset.
func (r *Recorder) InsertLeft(offset int, text string) {
	if text == "" {
		return
	}

	r.ops = append(r.ops, Operation{Kind: KindInsertLeft, Offset: offset, Text: text})
}

// InsertRight records text attached to the right of offset.
func (r *Recorder) InsertRight(offset int, text string) {
	if text == "" {
		return
	}

	r.ops = append(r.ops, Operation{Kind: KindInsertRight, Offset: offset, Text: text})
}

// Remove records deletion of length bytes starting at offset.
func (r *Recorder) Remove(offset, length int) {
	if length <= 0 {
		return
	}

	r.ops = append(r.ops, Operation{Kind: KindRemove, Offset: offset, Length: length})
}

// Replace records replacement of length bytes starting at offset with text.
func (r *Recorder) Replace(offset, length int, text string) {
	if length <= 0 {
		r.InsertRight(offset, text)

		return
	}

	r.ops = append(r.ops, Operation{Kind: KindReplace, Offset: offset, Length: length, Text: text})
}

// Operations returns a copy of the recorded operations in discovery order.
func (r *Recorder) Operations() []Operation {
	out := make([]Operation, len(r.ops))
	copy(out, r.ops)

	return out
}

// Len returns the number of recorded operations.
func (r *Recorder) Len() int {
	return len(r.ops)
}

// Empty reports whether nothing was recorded.
func (r *Recorder) Empty() bool {
	return len(r.ops) == 0
}

// Apply renders the recorded operations against original.
func (r *Recorder) Apply(original string) (string, error) {
	return Apply(original, r.ops)
}

// point collects everything anchored at one original offset.
type point struct {
	left  []string
	right []string
	span  *Operation
}

// Apply returns original with ops applied, every offset interpreted against
// original. At a single point the output is: insert-left texts in call order,
// insert-right texts in call order, then the replacement of a span starting
// there. Overlapping removals are a caller error; the result then keeps
// neither overlapped region twice but is otherwise unspecified.
func Apply(original string, ops []Operation) (string, error) {
	if len(ops) == 0 {
		return original, nil
	}

	points := make(map[int]*point, len(ops))
	offsets := make([]int, 0, len(ops))

	at := func(offset int) *point {
		p, ok := points[offset]
		if !ok {
			p = &point{}
			points[offset] = p
			offsets = append(offsets, offset)
		}

		return p
	}

	for i := range ops {
		op := ops[i]
		if op.Offset < 0 || op.Length < 0 || op.End() > len(original) {
			return "", fmt.Errorf("%w: %s at %d+%d (text length %d)", ErrOutOfRange, op.Kind, op.Offset, op.Length, len(original))
		}

		p := at(op.Offset)

		switch op.Kind {
		case KindInsertLeft:
			p.left = append(p.left, op.Text)
		case KindInsertRight:
			p.right = append(p.right, op.Text)
		case KindRemove, KindReplace:
			// The widest span wins when two start at the same point.
			if p.span == nil || op.Length > p.span.Length {
				p.span = &ops[i]
			}
		}
	}

	sort.Ints(offsets)

	var sb strings.Builder

	sb.Grow(len(original))

	cursor := 0

	for _, offset := range offsets {
		if offset > cursor {
			sb.WriteString(original[cursor:offset])
			cursor = offset
		}

		p := points[offset]

		for _, text := range p.left {
			sb.WriteString(text)
		}

		for _, text := range p.right {
			sb.WriteString(text)
		}

		if p.span != nil {
			if p.span.Kind == KindReplace {
				sb.WriteString(p.span.Text)
			}

			cursor = max(cursor, p.span.End())
		}
	}

	sb.WriteString(original[cursor:])

	return sb.String(), nil
}

// CheckOverlaps reports whether any two remove/replace operations share
// original text. Spans are half-open; inserts never conflict.
func CheckOverlaps(ops []Operation) error {
	spans := make([]Operation, 0, len(ops))

	for _, op := range ops {
		if !op.IsInsert() {
			spans = append(spans, op)
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Offset != spans[j].Offset {
			return spans[i].Offset < spans[j].Offset
		}

		return spans[i].End() < spans[j].End()
	})

	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.Offset < prev.End() {
			return fmt.Errorf("%w: %s [%d,%d) and %s [%d,%d)", ErrOverlap,
				prev.Kind, prev.Offset, prev.End(), cur.Kind, cur.Offset, cur.End())
		}
	}

	return nil
}
