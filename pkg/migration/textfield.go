package migration

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/markup"
)

// textfieldSentinel marks the native input of a textfield.
const textfieldSentinel = "tuiTextfield"

const textAreaTag = "tui-text-area"

var textfieldTags = []string{
	"tui-input",
	"tui-primitive-textfield",
	"tui-text-area",
	"tui-combo-box",
	"tui-input-copy",
	"tui-input-date",
	"tui-input-date-range",
	"tui-input-date-time",
	"tui-input-number",
	"tui-input-password",
	"tui-input-count",
	"tui-input-phone",
	"tui-input-slider",
	"tui-input-card",
}

// controllerAttrs maps controller attributes, lower-cased, to the native
// attribute or binding that replaces them. Order is emission order.
var controllerAttrs = []struct {
	from string
	to   string
}{
	{"tuitextfieldautocomplete", "autocomplete"},
	{"tuitextfieldinputmode", "inputmode"},
	{"tuitextfieldmaxlength", "maxlength"},
	{"tuitextfieldtype", "type"},
	{"tuitextfieldexampletext", "placeholder"},
	{"[tuitextfieldautocomplete]", "[attr.autocomplete]"},
	{"[tuitextfieldinputmode]", "[attr.inputmode]"},
	{"[tuitextfieldmaxlength]", "[attr.maxlength]"},
	{"[tuitextfieldtype]", "[attr.type]"},
	{"[tuitextfieldexampletext]", "[attr.placeholder]"},
}

// keptAttrs lists controller attributes a tag keeps as they are.
var keptAttrs = map[string][]string{
	textAreaTag: {"[tuitextfieldmaxlength]", "tuitextfieldmaxlength"},
}

// TextfieldTags returns the textfield tags the controller rule inspects by default.
func TextfieldTags() []string {
	return slices.Clone(textfieldTags)
}

func controllerTarget(name string) (string, bool) {
	for _, attr := range controllerAttrs {
		if attr.from == name {
			return attr.to, true
		}
	}

	return "", false
}

func kept(tag, attr string) bool {
	return slices.Contains(keptAttrs[tag], attr)
}

// emitTextfieldController moves controller attributes of each textfield to
// its native control. An existing control marked with the sentinel receives
// the attributes right after the sentinel; otherwise a new control is
// inserted before the textfield's end tag. Controller attributes are then
// removed from all textfields, except those of a self-closing or unclosed
// textfield that has no control to receive them.
func emitTextfieldController(r Rule, tpl *Template, rec Recorder) {
	tags := r.Tags
	if len(tags) == 0 {
		tags = textfieldTags
	}

	var unmoved []markup.Span

	for _, el := range tpl.Doc.FindByTagNames(tags...) {
		moved := movableAttrs(el)
		if len(moved) == 0 {
			continue
		}

		if control := nativeControl(el); control != nil {
			sentinel, _ := control.Attr(textfieldSentinel)

			for _, attr := range moved {
				rec.InsertLeft(sentinel.Span.End, " "+nativeAttr(attr))
			}

			continue
		}

		if el.EndTag == nil {
			unmoved = append(unmoved, el.StartTag)

			continue
		}

		rec.InsertRight(el.EndTag.Start, synthesizeControl(el.TagName, moved))
	}

	for _, attr := range controllerAttrs {
		for _, span := range tpl.Doc.FindBindingOffsets(attr.from, removalTags(tags, attr.from)) {
			if !within(span, unmoved) {
				rec.Remove(span.Start, span.Len())
			}
		}
	}
}

func within(span markup.Span, tags []markup.Span) bool {
	return slices.ContainsFunc(tags, func(tag markup.Span) bool {
		return span.Start >= tag.Start && span.End <= tag.End
	})
}

func movableAttrs(el *markup.Element) []markup.Attribute {
	var out []markup.Attribute

	for _, attr := range el.Attrs {
		if _, ok := controllerTarget(attr.Name); ok && !kept(el.TagName, attr.Name) {
			out = append(out, attr)
		}
	}

	return out
}

func nativeControl(el *markup.Element) *markup.Element {
	found := markup.FindByPredicate(el.Children, func(child *markup.Element) bool {
		return (child.TagName == "input" || child.TagName == "textarea") &&
			markup.HasAttribute(child, textfieldSentinel)
	}, markup.MatchAll)

	if len(found) == 0 {
		return nil
	}

	return found[0]
}

func synthesizeControl(tag string, attrs []markup.Attribute) string {
	rendered := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		rendered = append(rendered, nativeAttr(attr))
	}

	joined := strings.Join(rendered, "\n")

	if tag == textAreaTag {
		return fmt.Sprintf("<textarea %s %s></textarea> ", textfieldSentinel, joined)
	}

	return fmt.Sprintf("<input %s %s/> ", textfieldSentinel, joined)
}

// nativeAttr renders attr under its replacement name. The value is kept as
// written; single quotes are used when it contains a double quote.
func nativeAttr(attr markup.Attribute) string {
	name, _ := controllerTarget(attr.Name)

	if strings.Contains(attr.RawValue, `"`) {
		return fmt.Sprintf("%s='%s'", name, attr.RawValue)
	}

	return fmt.Sprintf(`%s="%s"`, name, attr.RawValue)
}

func removalTags(tags []string, attr string) []string {
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		if !kept(strings.ToLower(tag), attr) {
			out = append(out, tag)
		}
	}

	return out
}
