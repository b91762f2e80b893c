package syntax

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Decorator is a class decorator call such as @Component({...}).
type Decorator struct {
	// Name is the called identifier.
	Name string
	// Class is the decorated class name, empty for anonymous classes.
	Class string
	// Call is the call expression node.
	Call sitter.Node
	// Metadata is the first object literal argument, or a null node.
	Metadata sitter.Node
}

// Decorators returns the class decorators calling name, in source order.
// Decorators sit either on the class declaration or, for exported classes,
// on the export statement.
func Decorators(tree *Tree, name string) []Decorator {
	var out []Decorator

	Walk(tree.Root, func(n sitter.Node) bool {
		switch n.Type() {
		case "class_declaration", "abstract_class_declaration", "class":
			out = append(out, decoratorsOf(tree, n, className(tree, n), name)...)
		case "export_statement":
			class := ""
			if decl := Field(n, "declaration"); !decl.IsNull() {
				class = className(tree, decl)
			}

			out = append(out, decoratorsOf(tree, n, class, name)...)
		}

		return true
	})

	return out
}

func className(tree *Tree, n sitter.Node) string {
	nameNode := Field(n, "name")
	if nameNode.IsNull() {
		return ""
	}

	return tree.Text(nameNode)
}

func decoratorsOf(tree *Tree, owner sitter.Node, class, name string) []Decorator {
	var out []Decorator

	for _, child := range NamedChildren(owner) {
		if child.Type() != "decorator" {
			continue
		}

		for _, expr := range NamedChildren(child) {
			if expr.Type() != "call_expression" {
				continue
			}

			fn := Field(expr, "function")
			if fn.IsNull() || tree.Text(fn) != name {
				continue
			}

			out = append(out, Decorator{
				Name:     name,
				Class:    class,
				Call:     expr,
				Metadata: firstObjectArgument(expr),
			})
		}
	}

	return out
}

func firstObjectArgument(call sitter.Node) sitter.Node {
	args := Field(call, "arguments")
	if args.IsNull() {
		return sitter.Node{}
	}

	for _, arg := range NamedChildren(args) {
		if arg.Type() == "object" {
			return arg
		}
	}

	return sitter.Node{}
}

// Property returns the value node of the object literal property key, or a null node.
func Property(tree *Tree, object sitter.Node, key string) sitter.Node {
	if object.IsNull() {
		return sitter.Node{}
	}

	for _, pair := range NamedChildren(object) {
		if pair.Type() != "pair" {
			continue
		}

		if PropertyName(tree, Field(pair, "key")) == key {
			return Field(pair, "value")
		}
	}

	return sitter.Node{}
}

// PropertyName returns the name of an object literal key, unquoting string keys.
func PropertyName(tree *Tree, key sitter.Node) string {
	if key.IsNull() {
		return ""
	}

	if key.Type() == "string" {
		return StringValue(tree, key)
	}

	return tree.Text(key)
}

// StringValue returns the body of a string or template literal without its quotes.
// Escape sequences are returned as written.
func StringValue(tree *Tree, n sitter.Node) string {
	text := tree.Text(n)
	if len(text) < 2 { //nolint:mnd // opening and closing quote
		return ""
	}

	quote := text[0]
	if quote != '\'' && quote != '"' && quote != '`' {
		return text
	}

	return strings.TrimSuffix(text[1:], string(quote))
}

// IsComment reports whether n is a comment node.
func IsComment(n sitter.Node) bool {
	return n.Type() == "comment"
}
