// Package migration holds the template rewrite rules of a major-version
// upgrade and the emitters that turn them into offset-addressed edits.
//
// A [Rule] names one deprecated pattern by [PatternKind]. Applying a rule
// to a [Template] records edits and returns the module imports the new
// markup depends on. Rules never touch the element tree; they only read it.
package migration

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/levenshtein"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/markup"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/template"
)

// Sentinel errors.
var (
	ErrUnknownKind = errors.New("unknown pattern kind")
	ErrInvalidRule = errors.New("invalid rule")
)

// PatternKind selects the matcher and emitter of a rule.
type PatternKind int

// Pattern kinds.
const (
	// KindTagToDirective turns <old>..</old> into <div directive>..</div>.
	KindTagToDirective PatternKind = iota + 1
	// KindTagRename renames a tag in both the start and the end tag.
	KindTagRename
	// KindAttrRename renames an attribute, keeping its value unless the
	// replacement carries its own.
	KindAttrRename
	// KindAttrRemove drops an attribute with its leading whitespace.
	KindAttrRemove
	// KindEventRename renames an output binding, keeping its handler.
	KindEventRename
	// KindTextfieldController moves textfield controller attributes onto
	// the native input of the textfield.
	KindTextfieldController
)

// maxKindTypo bounds the edit distance of a "did you mean" hint.
const maxKindTypo = 3

var kindNames = map[PatternKind]string{
	KindTagToDirective:      "tag-to-directive",
	KindTagRename:           "tag-rename",
	KindAttrRename:          "attr-rename",
	KindAttrRemove:          "attr-remove",
	KindEventRename:         "event-rename",
	KindTextfieldController: "textfield-controller",
}

// String returns the kind name used in rule files.
func (k PatternKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a rule-file kind name to its PatternKind.
func ParseKind(name string) (PatternKind, error) {
	for kind, known := range kindNames {
		if known == name {
			return kind, nil
		}
	}

	names := slices.Sorted(maps.Values(kindNames))
	if hint, ok := levenshtein.Closest(name, names, maxKindTypo); ok {
		return 0, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownKind, name, hint)
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Import is a module symbol that migrated markup depends on.
type Import struct {
	Name string `yaml:"name" json:"name"`
	From string `yaml:"from" json:"from"`
}

// Template bundles a located template with its text and parsed tree.
type Template struct {
	Resource template.Resource
	Text     string
	Doc      *markup.Document
}

// Recorder receives edits. Offsets are absolute in the file that holds the
// template; [*edit.Recorder] satisfies it.
type Recorder interface {
	InsertLeft(offset int, text string)
	InsertRight(offset int, text string)
	Remove(offset, length int)
	Replace(offset, length int, text string)
}

// Step is one migration step run against every template.
type Step interface {
	Name() string
	Apply(tpl *Template, rec Recorder) []Import
}

// Rule describes one deprecated pattern and its replacement.
type Rule struct {
	Kind PatternKind
	// Target is the deprecated tag, attribute or event name.
	Target string
	// Replacement is emitted verbatim. For KindTagToDirective it is the
	// directive attribute, for KindEventRename the new event name.
	Replacement string
	// Tags restricts matching to these tag names.
	Tags []string
	// WithAttrs also admits elements carrying one of these attributes.
	// An element passes the filter when it satisfies Tags or WithAttrs;
	// with both empty every element passes.
	WithAttrs []string
	// Import is required by the migrated markup, if any.
	Import *Import
}

// Name identifies the rule in logs and reports.
func (r Rule) Name() string {
	switch {
	case r.Target == "":
		return r.Kind.String()
	case r.Replacement == "":
		return r.Kind.String() + " " + r.Target
	default:
		return r.Kind.String() + " " + r.Target + " -> " + r.Replacement
	}
}

// Validate checks that the rule can be emitted.
func (r Rule) Validate() error {
	if _, ok := emitters[r.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, r.Kind)
	}

	if r.Kind == KindTextfieldController {
		return nil
	}

	if strings.TrimSpace(r.Target) == "" {
		return fmt.Errorf("%w: %s without name", ErrInvalidRule, r.Kind)
	}

	if r.Kind != KindAttrRemove && strings.TrimSpace(r.Replacement) == "" {
		return fmt.Errorf("%w: %s %q without replacement", ErrInvalidRule, r.Kind, r.Target)
	}

	if r.Import != nil && (r.Import.Name == "" || r.Import.From == "") {
		return fmt.Errorf("%w: %s %q has an incomplete import", ErrInvalidRule, r.Kind, r.Target)
	}

	return nil
}

// Apply records the rule's edits for tpl and returns the imports the
// result needs. Nothing is returned when the pattern is absent.
func (r Rule) Apply(tpl *Template, rec Recorder) []Import {
	emit, ok := emitters[r.Kind]
	if !ok || tpl == nil || tpl.Doc == nil {
		return nil
	}

	shifted := &offsetRecorder{rec: rec, offset: tpl.Resource.Offset, quote: tpl.Resource.Quote}
	emit(r, tpl, shifted)

	if shifted.count == 0 || r.Import == nil {
		return nil
	}

	return []Import{*r.Import}
}

// matches reports whether el passes the rule's element filter.
func (r Rule) matches(el *markup.Element) bool {
	if len(r.Tags) == 0 && len(r.WithAttrs) == 0 {
		return true
	}

	for _, tag := range r.Tags {
		if strings.EqualFold(el.TagName, tag) {
			return true
		}
	}

	for _, attr := range r.WithAttrs {
		if markup.HasAttribute(el, attr) {
			return true
		}
	}

	return false
}

// Steps converts rules into steps, preserving order.
func Steps(rules []Rule) []Step {
	steps := make([]Step, 0, len(rules))
	for _, rule := range rules {
		steps = append(steps, rule)
	}

	return steps
}

// offsetRecorder shifts template-local offsets into file offsets and counts
// what was recorded. For an inline template it escapes recorded text so the
// enclosing string literal stays valid.
type offsetRecorder struct {
	rec    Recorder
	offset int
	quote  byte
	count  int
}

func (o *offsetRecorder) InsertLeft(offset int, text string) {
	o.count++
	o.rec.InsertLeft(offset+o.offset, o.escape(text))
}

func (o *offsetRecorder) InsertRight(offset int, text string) {
	o.count++
	o.rec.InsertRight(offset+o.offset, o.escape(text))
}

func (o *offsetRecorder) Remove(offset, length int) {
	o.count++
	o.rec.Remove(offset+o.offset, length)
}

func (o *offsetRecorder) Replace(offset, length int, text string) {
	o.count++
	o.rec.Replace(offset+o.offset, length, o.escape(text))
}

// escape quotes the literal's delimiter in text and, outside backtick
// literals, writes line breaks as \n. Existing escape sequences are kept,
// since text copied from the template is already literal source.
func (o *offsetRecorder) escape(text string) string {
	if o.quote == 0 {
		return text
	}

	var sb strings.Builder

	sb.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case c == '\\' && i+1 < len(text):
			sb.WriteByte(c)
			i++
			sb.WriteByte(text[i])
		case c == o.quote:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n' && o.quote != '`':
			sb.WriteString(`\n`)
		case c == '\r' && o.quote != '`':
			// Dropped; the \n that follows carries the break.
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}
