package template_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/template"
)

const componentWithTemplateURL = `
@Component({templateUrl: './test.template.html'})
export class TestComponent {}
`

const componentInline = `
@Component({template: '<tui-group><div></div></tui-group>'})
export class TestComponentInline {
    aware = TUI_MOBILE_AWARE;
}
`

func newProject(t *testing.T, files map[string]string) *project.Context {
	t.Helper()

	p := project.New("")
	t.Cleanup(p.Dispose)

	for name, content := range files {
		require.NoError(t, p.CreateSourceFile(name, content))
	}

	return p
}

func TestLocate_External(t *testing.T) {
	t.Parallel()

	p := newProject(t, map[string]string{
		"test/app/test.component.ts":  componentWithTemplateURL,
		"test/app/test.template.html": "<tui-group></tui-group>",
	})

	res, ok, err := template.Locate(context.Background(), p, "test/app/test.component.ts")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, template.External, res.Kind)
	assert.Equal(t, "test/app/test.template.html", res.Path)
	assert.Equal(t, "test/app/test.component.ts", res.OwnerPath)
	assert.Equal(t, 0, res.Offset)
	assert.Zero(t, res.Quote)
	assert.Equal(t, "TestComponent", res.Component)

	text, err := template.Load(p, res)
	require.NoError(t, err)
	assert.Equal(t, "<tui-group></tui-group>", text)
}

func TestLocate_Inline(t *testing.T) {
	t.Parallel()

	p := newProject(t, map[string]string{"test/app/test-inline.component.ts": componentInline})

	res, ok, err := template.Locate(context.Background(), p, "test/app/test-inline.component.ts")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, template.Inline, res.Kind)
	assert.Equal(t, "test/app/test-inline.component.ts", res.Path)
	assert.Equal(t, strings.Index(componentInline, "<tui-group>"), res.Offset)
	assert.Equal(t, byte('\''), res.Quote)
	assert.Equal(t, "TestComponentInline", res.Component)

	text, err := template.Load(p, res)
	require.NoError(t, err)
	assert.Equal(t, "<tui-group><div></div></tui-group>", text)
}

func TestLocate_TemplateLiteralAndQuotedKey(t *testing.T) {
	t.Parallel()

	src := "@Component({\n    selector: 'app',\n    'template': `\n<tui-wrapper></tui-wrapper>\n`,\n})\nclass AppComponent {}\n"
	p := newProject(t, map[string]string{"app.component.ts": src})

	res, ok, err := template.Locate(context.Background(), p, "app.component.ts")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, strings.Index(src, "`")+1, res.Offset)
	assert.Equal(t, "AppComponent", res.Component)

	text, err := template.Load(p, res)
	require.NoError(t, err)
	assert.Equal(t, "\n<tui-wrapper></tui-wrapper>\n", text)
}

func TestLocateAll_SeveralComponents(t *testing.T) {
	t.Parallel()

	src := `
@Component({template: '<a></a>'})
export class First {}

@Component({templateUrl: '../shared/second.html'})
export class Second {}
`
	p := newProject(t, map[string]string{"src/app/two.component.ts": src})

	all, err := template.LocateAll(context.Background(), p, "src/app/two.component.ts")
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "First", all[0].Component)
	assert.Equal(t, template.Inline, all[0].Kind)
	assert.Equal(t, "Second", all[1].Component)
	assert.Equal(t, "src/shared/second.html", all[1].Path)

	_, err = template.Load(p, all[1])
	require.ErrorIs(t, err, template.ErrMissingTemplate)
}

func TestLocate_NotApplicable(t *testing.T) {
	t.Parallel()

	p := newProject(t, map[string]string{
		"plain.ts":           "export const x = 1;\n",
		"directive.ts":       "@Directive({selector: '[x]'})\nexport class X {}\n",
		"no-template.ts":     "@Component({selector: 'x'})\nexport class X {}\n",
		"test.template.html": "<div></div>",
	})

	for _, name := range []string{"plain.ts", "directive.ts", "no-template.ts", "test.template.html"} {
		_, ok, err := template.Locate(context.Background(), p, name)
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
}

func TestResource_Key(t *testing.T) {
	t.Parallel()

	res := template.Resource{Path: "a.ts", Offset: 12}

	assert.Equal(t, "a.ts@12", res.Key())
	assert.Equal(t, "inline", template.Inline.String())
	assert.Equal(t, "external", template.External.String())
}
