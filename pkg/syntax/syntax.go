// Package syntax wraps the tree-sitter grammars used by the migration engine
// and hands out pooled parsers for them.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/alexaandru/go-sitter-forest/html"
	"github.com/alexaandru/go-sitter-forest/typescript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/safeconv"
)

// Grammar names.
const (
	TypeScript = "typescript"
	HTML       = "html"
)

// Sentinel errors.
var (
	ErrUnknownGrammar = errors.New("unknown grammar")
	ErrNoRootNode     = errors.New("syntax: no root node")
	errPoolType       = errors.New("syntax: unexpected parser pool type")
)

var languageFuncs = map[string]func() unsafe.Pointer{
	HTML:       html.GetLanguage,
	TypeScript: typescript.GetLanguage,
}

var languageCache sync.Map

// Language returns the tree-sitter Language for the given grammar, or nil if not supported.
func Language(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

var pools sync.Map

func pool(name string) (*sync.Pool, error) {
	if p, ok := pools.Load(name); ok {
		sp, castOK := p.(*sync.Pool)
		if castOK {
			return sp, nil
		}
	}

	lang := Language(name)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGrammar, name)
	}

	p, _ := pools.LoadOrStore(name, &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	})

	sp, ok := p.(*sync.Pool)
	if !ok {
		return nil, errPoolType
	}

	return sp, nil
}

// Tree is a parsed syntax tree together with the source it was parsed from.
// Close must be called once the tree is no longer needed.
type Tree struct {
	tree   *sitter.Tree
	Root   sitter.Node
	Source []byte
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parse parses source with the named grammar.
func Parse(ctx context.Context, grammar string, source []byte) (*Tree, error) {
	p, err := pool(grammar)
	if err != nil {
		return nil, err
	}

	tsParser, ok := p.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("syntax: failed to parse %s: %w", grammar, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, ErrNoRootNode
	}

	return &Tree{tree: tree, Root: root, Source: source}, nil
}

// Start returns the start byte of n as an int.
func Start(n sitter.Node) int {
	return safeconv.MustUintToInt(n.StartByte())
}

// End returns the end byte of n as an int.
func End(n sitter.Node) int {
	return safeconv.MustUintToInt(n.EndByte())
}

// Text returns the source text covered by n.
func (t *Tree) Text(n sitter.Node) string {
	start, end := Start(n), End(n)
	if start < 0 || end > len(t.Source) || start > end {
		return ""
	}

	return string(t.Source[start:end])
}

// Field returns the named field child of n, or a null node.
func Field(n sitter.Node, name string) sitter.Node {
	return n.ChildByFieldName(name)
}

// NamedChildren returns the named children of n in order.
func NamedChildren(n sitter.Node) []sitter.Node {
	out := make([]sitter.Node, 0, n.NamedChildCount())

	for idx := range n.NamedChildCount() {
		out = append(out, n.NamedChild(idx))
	}

	return out
}

// Children returns all children of n, named and anonymous, in order.
func Children(n sitter.Node) []sitter.Node {
	out := make([]sitter.Node, 0, n.ChildCount())

	for idx := range n.ChildCount() {
		out = append(out, n.Child(idx))
	}

	return out
}

// Walk visits n and its named descendants depth first in document order.
// Returning false from visit skips the node's children.
func Walk(n sitter.Node, visit func(sitter.Node) bool) {
	if n.IsNull() {
		return
	}

	if !visit(n) {
		return
	}

	for idx := range n.NamedChildCount() {
		Walk(n.NamedChild(idx), visit)
	}
}
