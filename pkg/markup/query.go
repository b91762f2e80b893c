package markup

import (
	"context"
	"strings"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/textutil"
)

// MatchMode selects how [FindByPredicate] descends into matches.
type MatchMode int

const (
	// MatchAll returns every matching element, including matches nested
	// inside other matches.
	MatchAll MatchMode = iota
	// MatchFirstPerSubtree stops descending once an element matches.
	MatchFirstPerSubtree
)

// Elements returns every element of the document in document order.
func (d *Document) Elements() []*Element {
	return FindByPredicate(d.Roots, func(*Element) bool { return true }, MatchAll)
}

// FindByTagNames returns the elements whose tag name equals one of names,
// compared case-insensitively, in document order.
func (d *Document) FindByTagNames(names ...string) []*Element {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}

	return FindByPredicate(d.Roots, func(el *Element) bool {
		_, ok := set[el.TagName]

		return ok
	}, MatchAll)
}

// FindByPredicate returns the elements under nodes, nodes included, for
// which pred holds, in document order.
func FindByPredicate(nodes []*Element, pred func(*Element) bool, mode MatchMode) []*Element {
	var out []*Element

	var visit func(el *Element)

	visit = func(el *Element) {
		if pred(el) {
			out = append(out, el)

			if mode == MatchFirstPerSubtree {
				return
			}
		}

		for _, child := range el.Children {
			visit(child)
		}
	}

	for _, el := range nodes {
		visit(el)
	}

	return out
}

// HasAttribute reports whether el carries an attribute named name,
// compared case-insensitively.
func HasAttribute(el *Element, name string) bool {
	_, ok := el.Attr(name)

	return ok
}

// FindBindingOffsets parses text and returns the removal spans of every
// attribute named binding on elements whose tag is one of tags.
func FindBindingOffsets(ctx context.Context, text, binding string, tags []string) ([]Span, error) {
	doc, err := Parse(ctx, text)
	if err != nil {
		return nil, err
	}

	return doc.FindBindingOffsets(binding, tags), nil
}

// FindBindingOffsets returns the removal spans of every attribute named
// binding on elements whose tag is one of tags. Each span runs from the
// whitespace preceding the attribute to the end of its value, so removing it
// leaves the start tag well formed.
//
// Start tags are scanned from the raw text. Quoted values are skipped and
// names only match on attribute boundaries, so "[x]" never matches inside
// "[xy]" or inside a value.
func (d *Document) FindBindingOffsets(binding string, tags []string) []Span {
	var out []Span

	for _, el := range d.FindByTagNames(tags...) {
		for _, attr := range ScanStartTag(d.Text, el.StartTag) {
			if !strings.EqualFold(attr.Name, binding) {
				continue
			}

			start := max(textutil.TrimSpaceLeft(d.Text, attr.Span.Start), el.NameSpan.End)
			out = append(out, Span{Start: start, End: attr.Span.End})
		}
	}

	return out
}

// RawAttribute is an attribute found by [ScanStartTag].
type RawAttribute struct {
	Name string
	// Span covers the name and the value with its quotes.
	Span Span
}

// ScanStartTag tokenizes the start tag covered by tag and returns its
// attributes with spans in text coordinates.
func ScanStartTag(text string, tag Span) []RawAttribute {
	if tag.Start < 0 || tag.End > len(text) || tag.Start >= tag.End || text[tag.Start] != '<' {
		return nil
	}

	pos := tag.Start + 1
	end := tag.End

	// Tag name.
	for pos < end && !textutil.IsSpace(text[pos]) && text[pos] != '>' && text[pos] != '/' {
		pos++
	}

	var out []RawAttribute

	for pos < end {
		for pos < end && (textutil.IsSpace(text[pos]) || text[pos] == '/') {
			pos++
		}

		if pos >= end || text[pos] == '>' {
			break
		}

		nameStart := pos
		for pos < end && !isNameTerminator(text[pos]) {
			pos++
		}

		attr := RawAttribute{Name: text[nameStart:pos], Span: Span{Start: nameStart, End: pos}}

		valuePos := skipSpace(text, pos, end)
		if valuePos < end && text[valuePos] == '=' {
			pos = skipValue(text, skipSpace(text, valuePos+1, end), end)
			attr.Span.End = pos
		}

		out = append(out, attr)
	}

	return out
}

func isNameTerminator(b byte) bool {
	return textutil.IsSpace(b) || b == '=' || b == '>' || b == '/' || b == '"' || b == '\''
}

func skipSpace(text string, pos, end int) int {
	for pos < end && textutil.IsSpace(text[pos]) {
		pos++
	}

	return pos
}

func skipValue(text string, pos, end int) int {
	if pos >= end {
		return pos
	}

	if quote := text[pos]; quote == '"' || quote == '\'' {
		closing := strings.IndexByte(text[pos+1:end], quote)
		if closing < 0 {
			return end
		}

		return pos + 1 + closing + 1
	}

	for pos < end && !textutil.IsSpace(text[pos]) && text[pos] != '>' {
		pos++
	}

	return pos
}
