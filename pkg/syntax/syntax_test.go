package syntax_test

import (
	"context"
	"testing"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/syntax"
)

const component = `import { Component } from "@angular/core";

@Component({
    selector: 'app-root',
    'templateUrl': "./app.component.html",
})
export class AppComponent {}

@Injectable()
class Service {}
`

func parse(t *testing.T, grammar, src string) *syntax.Tree {
	t.Helper()

	tree, err := syntax.Parse(context.Background(), grammar, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	return tree
}

func TestParse_UnknownGrammar(t *testing.T) {
	t.Parallel()

	_, err := syntax.Parse(context.Background(), "cobol", []byte("x"))
	require.ErrorIs(t, err, syntax.ErrUnknownGrammar)
	assert.Nil(t, syntax.Language("cobol"))
}

func TestParse_HTML(t *testing.T) {
	t.Parallel()

	tree := parse(t, syntax.HTML, `<div class="a">x</div>`)

	var tags []string

	syntax.Walk(tree.Root, func(n sitter.Node) bool {
		if n.Type() == "tag_name" {
			tags = append(tags, tree.Text(n))
		}

		return true
	})

	assert.Equal(t, []string{"div", "div"}, tags)
	assert.Equal(t, 0, syntax.Start(tree.Root))
}

func TestDecorators(t *testing.T) {
	t.Parallel()

	tree := parse(t, syntax.TypeScript, component)

	decs := syntax.Decorators(tree, "Component")
	require.Len(t, decs, 1)

	dec := decs[0]
	assert.Equal(t, "Component", dec.Name)
	assert.Equal(t, "AppComponent", dec.Class)
	require.False(t, dec.Metadata.IsNull())

	selector := syntax.Property(tree, dec.Metadata, "selector")
	assert.Equal(t, "app-root", syntax.StringValue(tree, selector))

	url := syntax.Property(tree, dec.Metadata, "templateUrl")
	assert.Equal(t, "./app.component.html", syntax.StringValue(tree, url))
	assert.Equal(t, `"./app.component.html"`, tree.Text(url))

	assert.True(t, syntax.Property(tree, dec.Metadata, "template").IsNull())

	injectables := syntax.Decorators(tree, "Injectable")
	require.Len(t, injectables, 1)
	assert.Equal(t, "Service", injectables[0].Class)
	assert.True(t, injectables[0].Metadata.IsNull())
}

func TestChildren(t *testing.T) {
	t.Parallel()

	tree := parse(t, syntax.TypeScript, "const a = [1, 2];\n// done\n")

	var array sitter.Node

	syntax.Walk(tree.Root, func(n sitter.Node) bool {
		if n.Type() == "array" {
			array = n
		}

		return true
	})

	require.False(t, array.IsNull())
	assert.Len(t, syntax.NamedChildren(array), 2)
	assert.Len(t, syntax.Children(array), 5)
	assert.Equal(t, "[1, 2]", tree.Text(array))
	assert.Equal(t, 10, syntax.Start(array))
	assert.Equal(t, 16, syntax.End(array))

	comments := 0

	for _, n := range syntax.NamedChildren(tree.Root) {
		if syntax.IsComment(n) {
			comments++
		}
	}

	assert.Equal(t, 1, comments)
}
