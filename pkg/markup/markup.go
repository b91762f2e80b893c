// Package markup parses component templates into a read-only element tree
// that keeps source offsets for tags and attributes.
//
// The tree is never mutated. Rewrites are expressed as edits against the
// original text, so every span below refers to the template text the
// [Document] was parsed from.
package markup

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"golang.org/x/net/html"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/syntax"
)

// Span is a half-open byte range [Start, End) in template coordinates.
type Span struct {
	Start int
	End   int
}

// Len returns the span length.
func (s Span) Len() int {
	return s.End - s.Start
}

// Shift returns the span moved by offset.
func (s Span) Shift(offset int) Span {
	return Span{Start: s.Start + offset, End: s.End + offset}
}

// Attribute is one attribute of a start tag.
type Attribute struct {
	// Name is lower-cased for matching.
	Name string
	// RawName is the name as written.
	RawName string
	// Value is the entity-decoded value.
	Value string
	// RawValue is the value as written, without quotes.
	RawValue string
	// HasValue is false for bare attributes such as `disabled`.
	HasValue bool
	// Span covers the whole attribute, value and quotes included.
	Span Span
	// NameSpan covers the name.
	NameSpan Span
	// ValueSpan covers the value without quotes.
	ValueSpan Span
}

// Element is a node of the template tree. Children are owned by their
// parent; there are no back references.
type Element struct {
	// TagName is lower-cased.
	TagName string
	// RawTagName is the tag name as written in the start tag.
	RawTagName string
	Attrs      []Attribute
	Children   []*Element
	// StartTag spans from '<' to the closing '>' of the start tag.
	StartTag Span
	// NameSpan covers the tag name inside the start tag.
	NameSpan Span
	// EndTag spans "</name>" and is nil when the end tag is implied or the
	// element is self-closing.
	EndTag *Span
	// EndNameSpan covers the tag name inside the end tag.
	EndNameSpan Span
	// SelfClosing is true for "<name ... />".
	SelfClosing bool
}

// Attr returns the first attribute named name, compared case-insensitively.
func (el *Element) Attr(name string) (Attribute, bool) {
	for _, attr := range el.Attrs {
		if strings.EqualFold(attr.Name, name) {
			return attr, true
		}
	}

	return Attribute{}, false
}

// Document is a parsed template.
type Document struct {
	// Text is the template the spans refer to.
	Text  string
	Roots []*Element
}

// Parse builds the element tree of text.
func Parse(ctx context.Context, text string) (*Document, error) {
	tree, err := syntax.Parse(ctx, syntax.HTML, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	defer tree.Close()

	b := builder{tree: tree}

	return &Document{Text: text, Roots: b.nodes(tree.Root)}, nil
}

type builder struct {
	tree *syntax.Tree
}

// nodes converts the named children of n into elements. Containers that are
// not elements (error recovery nodes) are flattened into the result.
func (b builder) nodes(n sitter.Node) []*Element {
	var out []*Element

	for _, child := range syntax.NamedChildren(n) {
		switch child.Type() {
		case "element", "script_element", "style_element":
			if el := b.element(child); el != nil {
				out = append(out, el)
			}
		case "text", "comment", "doctype", "entity", "erroneous_end_tag", "raw_text":
		default:
			out = append(out, b.nodes(child)...)
		}
	}

	return out
}

func (b builder) element(n sitter.Node) *Element {
	el := &Element{}
	seenTag := false

	for _, child := range syntax.NamedChildren(n) {
		switch child.Type() {
		case "start_tag", "self_closing_tag":
			b.startTag(el, child)
			el.SelfClosing = child.Type() == "self_closing_tag"
			seenTag = true
		case "end_tag":
			span := Span{Start: syntax.Start(child), End: syntax.End(child)}
			el.EndTag = &span

			if name := firstOfType(child, "tag_name"); !name.IsNull() {
				el.EndNameSpan = Span{Start: syntax.Start(name), End: syntax.End(name)}
			}
		case "element", "script_element", "style_element":
			if nested := b.element(child); nested != nil {
				el.Children = append(el.Children, nested)
			}
		case "text", "comment", "entity", "raw_text", "erroneous_end_tag":
		default:
			el.Children = append(el.Children, b.nodes(child)...)
		}
	}

	if !seenTag {
		return nil
	}

	return el
}

func (b builder) startTag(el *Element, n sitter.Node) {
	el.StartTag = Span{Start: syntax.Start(n), End: syntax.End(n)}

	for _, child := range syntax.NamedChildren(n) {
		switch child.Type() {
		case "tag_name":
			el.RawTagName = b.tree.Text(child)
			el.TagName = strings.ToLower(el.RawTagName)
			el.NameSpan = Span{Start: syntax.Start(child), End: syntax.End(child)}
		case "attribute":
			el.Attrs = append(el.Attrs, b.attribute(child))
		}
	}
}

func (b builder) attribute(n sitter.Node) Attribute {
	attr := Attribute{Span: Span{Start: syntax.Start(n), End: syntax.End(n)}}

	for _, child := range syntax.NamedChildren(n) {
		switch child.Type() {
		case "attribute_name":
			attr.RawName = b.tree.Text(child)
			attr.Name = strings.ToLower(attr.RawName)
			attr.NameSpan = Span{Start: syntax.Start(child), End: syntax.End(child)}
		case "attribute_value":
			attr.HasValue = true
			attr.ValueSpan = Span{Start: syntax.Start(child), End: syntax.End(child)}
		case "quoted_attribute_value":
			attr.HasValue = true
			// Quotes excluded; an empty value has no inner node.
			attr.ValueSpan = Span{Start: syntax.Start(child) + 1, End: syntax.End(child) - 1}
		}
	}

	if attr.HasValue {
		attr.RawValue = string(b.tree.Source[attr.ValueSpan.Start:attr.ValueSpan.End])
		attr.Value = html.UnescapeString(attr.RawValue)
	}

	return attr
}

func firstOfType(n sitter.Node, typ string) sitter.Node {
	for _, child := range syntax.NamedChildren(n) {
		if child.Type() == typ {
			return child
		}
	}

	return sitter.Node{}
}
