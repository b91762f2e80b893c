package migration

import (
	"strings"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/markup"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/textutil"
)

// emitter records the edits of one rule against template-local offsets.
type emitter func(r Rule, tpl *Template, rec Recorder)

var emitters = map[PatternKind]emitter{
	KindTagToDirective:      emitTagToDirective,
	KindTagRename:           emitTagRename,
	KindAttrRename:          emitAttrRename,
	KindAttrRemove:          emitAttrRemove,
	KindEventRename:         emitEventRename,
	KindTextfieldController: emitTextfieldController,
}

// directiveHost is the plain element that replaces a component tag.
const directiveHost = "div"

func emitTagToDirective(r Rule, tpl *Template, rec Recorder) {
	renameTags(tpl, r.Target, directiveHost+" "+r.Replacement, directiveHost, rec)
}

func emitTagRename(r Rule, tpl *Template, rec Recorder) {
	renameTags(tpl, r.Target, r.Replacement, r.Replacement, rec)
}

// renameTags rewrites the start and end tag names of every element named
// tag. Elements whose end tag is implied are left alone so the output never
// pairs a new start tag with an old end tag.
func renameTags(tpl *Template, tag, start, end string, rec Recorder) {
	for _, el := range tpl.Doc.FindByTagNames(tag) {
		if el.EndTag == nil && !el.SelfClosing {
			continue
		}

		rec.Replace(el.NameSpan.Start, el.NameSpan.Len(), start)

		if el.EndTag != nil {
			rec.Replace(el.EndNameSpan.Start, el.EndNameSpan.Len(), end)
		}
	}
}

func emitAttrRename(r Rule, tpl *Template, rec Recorder) {
	for _, el := range tpl.Doc.Elements() {
		if !r.matches(el) {
			continue
		}

		for _, attr := range el.Attrs {
			if !strings.EqualFold(attr.Name, r.Target) {
				continue
			}

			// A replacement with its own value drops the old one.
			span := attr.NameSpan
			if strings.Contains(r.Replacement, "=") {
				span = attr.Span
			}

			rec.Replace(span.Start, span.Len(), r.Replacement)
		}
	}
}

func emitAttrRemove(r Rule, tpl *Template, rec Recorder) {
	for _, el := range tpl.Doc.Elements() {
		if !r.matches(el) {
			continue
		}

		for _, attr := range el.Attrs {
			if !strings.EqualFold(attr.Name, r.Target) {
				continue
			}

			span := removalSpan(tpl.Text, el, attr)
			rec.Remove(span.Start, span.Len())
		}
	}
}

// emitEventRename renames "(old)" to "(new)". Target and Replacement are
// bare event names.
func emitEventRename(r Rule, tpl *Template, rec Recorder) {
	binding := "(" + strings.ToLower(r.Target) + ")"

	for _, el := range tpl.Doc.Elements() {
		if !r.matches(el) {
			continue
		}

		for _, attr := range el.Attrs {
			if attr.Name != binding {
				continue
			}

			// Inside the parentheses.
			rec.Replace(attr.NameSpan.Start+1, attr.NameSpan.Len()-2, r.Replacement) //nolint:mnd // "(" and ")"
		}
	}
}

// removalSpan extends the attribute span left over the whitespace that
// separates it from the previous token.
func removalSpan(text string, el *markup.Element, attr markup.Attribute) markup.Span {
	start := max(textutil.TrimSpaceLeft(text, attr.Span.Start), el.NameSpan.End)

	return markup.Span{Start: start, End: attr.Span.End}
}
