// Package ngmodule reads module declarations and adds the module imports
// that migrated templates depend on.
package ngmodule

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/syntax"
)

const (
	decoratorNgModule = "NgModule"
	propImports       = "imports"
	propDeclarations  = "declarations"
	propExports       = "exports"
)

// ImportStatement is a top-level ES import.
type ImportStatement struct {
	// Source is the module specifier without quotes.
	Source string
	// Names are the local names bound by named specifiers.
	Names []string
	Start int
	End   int
	// TypeOnly marks "import type" statements.
	TypeOnly bool
	// InsertAt is the offset right after the last named specifier, or -1
	// when the statement has none.
	InsertAt int
}

// Array is an array literal in module metadata.
type Array struct {
	Start int
	End   int
	// Elements are the element texts, comments excluded.
	Elements []string
	// LastStart and LastEnd span the last element; both are -1 when empty.
	LastStart int
	LastEnd   int
	// Multiline is true when the elements are on their own lines.
	Multiline bool
}

// Contains reports whether name is one of the array elements.
func (a *Array) Contains(name string) bool {
	if a == nil {
		return false
	}

	for _, el := range a.Elements {
		if el == name {
			return true
		}
	}

	return false
}

// Declaration is one decorated module class.
type Declaration struct {
	Path  string
	Class string
	// Imports is nil when the metadata has no imports property.
	Imports      *Array
	Declarations []string
	Exports      []string
	// MetadataStart is the offset of the metadata object's '{'.
	MetadataStart int
	// FirstPropertyStart is the offset of the first metadata property, -1
	// for an empty object.
	FirstPropertyStart int
	// Statements are the import statements of the file.
	Statements []ImportStatement
}

// Declares reports whether the module lists component in its declarations.
func (d Declaration) Declares(component string) bool {
	for _, name := range d.Declarations {
		if name == component {
			return true
		}
	}

	return false
}

// Parse returns the module declarations of a TypeScript source file.
func Parse(ctx context.Context, path, src string) ([]Declaration, error) {
	if !strings.Contains(src, "@"+decoratorNgModule) {
		return nil, nil
	}

	tree, err := syntax.Parse(ctx, syntax.TypeScript, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse module %s: %w", path, err)
	}
	defer tree.Close()

	statements := importStatements(tree)

	var out []Declaration

	for _, dec := range syntax.Decorators(tree, decoratorNgModule) {
		if dec.Metadata.IsNull() {
			continue
		}

		decl := Declaration{
			Path:               path,
			Class:              dec.Class,
			MetadataStart:      syntax.Start(dec.Metadata),
			FirstPropertyStart: -1,
			Statements:         statements,
		}

		for _, child := range syntax.NamedChildren(dec.Metadata) {
			if !syntax.IsComment(child) {
				decl.FirstPropertyStart = syntax.Start(child)

				break
			}
		}

		if value := syntax.Property(tree, dec.Metadata, propImports); !value.IsNull() && value.Type() == "array" {
			decl.Imports = parseArray(tree, value)
		}

		if value := syntax.Property(tree, dec.Metadata, propDeclarations); !value.IsNull() && value.Type() == "array" {
			decl.Declarations = parseArray(tree, value).Elements
		}

		if value := syntax.Property(tree, dec.Metadata, propExports); !value.IsNull() && value.Type() == "array" {
			decl.Exports = parseArray(tree, value).Elements
		}

		out = append(out, decl)
	}

	return out, nil
}

func parseArray(tree *syntax.Tree, n sitter.Node) *Array {
	arr := &Array{Start: syntax.Start(n), End: syntax.End(n), LastStart: -1, LastEnd: -1}

	for _, el := range syntax.NamedChildren(n) {
		if syntax.IsComment(el) {
			continue
		}

		if arr.LastStart < 0 {
			// Multi-line when the first element does not share the bracket's line.
			arr.Multiline = strings.Contains(string(tree.Source[arr.Start:syntax.Start(el)]), "\n")
		}

		arr.Elements = append(arr.Elements, tree.Text(el))
		arr.LastStart = syntax.Start(el)
		arr.LastEnd = syntax.End(el)
	}

	return arr
}

func importStatements(tree *syntax.Tree) []ImportStatement {
	var out []ImportStatement

	for _, stmt := range syntax.NamedChildren(tree.Root) {
		if stmt.Type() != "import_statement" {
			continue
		}

		imp := ImportStatement{
			Source:   syntax.StringValue(tree, syntax.Field(stmt, "source")),
			Start:    syntax.Start(stmt),
			End:      syntax.End(stmt),
			InsertAt: -1,
		}

		text := strings.TrimPrefix(tree.Text(stmt), "import")
		imp.TypeOnly = strings.HasPrefix(strings.TrimSpace(text), "type ")

		syntax.Walk(stmt, func(n sitter.Node) bool {
			if n.Type() != "import_specifier" {
				return true
			}

			local := syntax.Field(n, "alias")
			if local.IsNull() {
				local = syntax.Field(n, "name")
			}

			imp.Names = append(imp.Names, tree.Text(local))
			imp.InsertAt = syntax.End(n)

			return false
		})

		out = append(out, imp)
	}

	return out
}
