// Package template finds component templates in source files.
//
// A template is either inline (a string literal inside the component
// metadata) or external (a markup file referenced by templateUrl). Either way
// it resolves to a text plus the absolute offset of its first character in
// the file that holds it.
package template

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/syntax"
)

// Sentinel errors.
var (
	// ErrMissingTemplate is returned by Load when an external template is not in the project.
	ErrMissingTemplate = errors.New("template file not found")
	// ErrMalformed marks source whose template offsets cannot be computed.
	ErrMalformed = errors.New("malformed template source")
)

// Kind tells inline and external templates apart.
type Kind uint8

// Template kinds.
const (
	Inline Kind = iota
	External
)

// String returns the kind name.
func (k Kind) String() string {
	if k == External {
		return "external"
	}

	return "inline"
}

const (
	decoratorComponent = "Component"
	propTemplate       = "template"
	propTemplateURL    = "templateUrl"
)

// Resource locates one component template.
type Resource struct {
	Kind Kind
	// OwnerPath is the component source file.
	OwnerPath string
	// Path is the file holding the template text: the owner for inline
	// templates, the referenced markup file otherwise.
	Path string
	// Offset is the absolute position of template character 0 inside Path.
	Offset int
	// Quote is the delimiter of an inline template literal, zero otherwise.
	Quote byte
	// Component is the decorated class name, when one follows the decorator.
	Component string
}

// Key identifies the template text independent of which component points at it.
func (r Resource) Key() string {
	return fmt.Sprintf("%s@%d", r.Path, r.Offset)
}

// Locate returns the first component template declared in file.
// The boolean is false when the file has no component metadata.
func Locate(ctx context.Context, p *project.Context, file string) (Resource, bool, error) {
	all, err := LocateAll(ctx, p, file)
	if err != nil || len(all) == 0 {
		return Resource{}, false, err
	}

	return all[0], true, nil
}

// LocateAll returns every component template declared in file, in source order.
func LocateAll(ctx context.Context, p *project.Context, file string) ([]Resource, error) {
	if !strings.HasSuffix(file, ".ts") {
		return nil, nil
	}

	content, err := p.ReadContent(file)
	if err != nil {
		return nil, err
	}

	// Most files never mention the decorator.
	if !strings.Contains(content, "@"+decoratorComponent) {
		return nil, nil
	}

	tree, err := syntax.Parse(ctx, syntax.TypeScript, []byte(content))
	if err != nil {
		return nil, fmt.Errorf("locate templates in %s: %w", file, err)
	}
	defer tree.Close()

	owner := project.Normalize(file)

	var out []Resource

	for _, dec := range syntax.Decorators(tree, decoratorComponent) {
		res, ok := resourceFromMetadata(tree, dec.Metadata, owner)
		if !ok {
			continue
		}

		res.Component = dec.Class
		out = append(out, res)
	}

	return out, nil
}

// Load returns the template text of res.
func Load(p *project.Context, res Resource) (string, error) {
	content, err := p.ReadContent(res.Path)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return "", fmt.Errorf("%w: %s (referenced from %s)", ErrMissingTemplate, res.Path, res.OwnerPath)
		}

		return "", err
	}

	if res.Kind == External {
		return content, nil
	}

	end := literalEnd(content, res.Offset)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated template literal in %s at %d", ErrMalformed, res.Path, res.Offset)
	}

	return content[res.Offset:end], nil
}

// literalEnd finds the closing quote of the literal whose body starts at offset.
func literalEnd(content string, offset int) int {
	if offset <= 0 || offset > len(content) {
		return -1
	}

	quote := content[offset-1]
	if quote != '\'' && quote != '"' && quote != '`' {
		return -1
	}

	for i := offset; i < len(content); i++ {
		switch content[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}

	return -1
}

func resourceFromMetadata(tree *syntax.Tree, metadata sitter.Node, owner string) (Resource, bool) {
	if metadata.IsNull() {
		return Resource{}, false
	}

	for _, pair := range syntax.NamedChildren(metadata) {
		if pair.Type() != "pair" {
			continue
		}

		key := syntax.PropertyName(tree, syntax.Field(pair, "key"))
		value := syntax.Field(pair, "value")

		if value.IsNull() || !isStringLiteral(value) {
			continue
		}

		switch key {
		case propTemplate:
			start := syntax.Start(value)

			return Resource{
				Kind:      Inline,
				OwnerPath: owner,
				Path:      owner,
				Offset:    start + 1,
				Quote:     tree.Source[start],
			}, true
		case propTemplateURL:
			url := syntax.StringValue(tree, value)

			return Resource{
				Kind:      External,
				OwnerPath: owner,
				Path:      path.Join(path.Dir(owner), url),
			}, true
		}
	}

	return Resource{}, false
}

func isStringLiteral(n sitter.Node) bool {
	switch n.Type() {
	case "string":
		return true
	case "template_string":
		// Substitutions make offsets meaningless for markup parsing.
		for _, child := range syntax.NamedChildren(n) {
			if child.Type() == "template_substitution" {
				return false
			}
		}

		return true
	default:
		return false
	}
}
