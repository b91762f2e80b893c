package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/backup"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/schematic"
)

const appComponent = `
@Component({selector: 'app-root', templateUrl: './app.component.html'})
export class AppComponent {}
`

const appTemplate = `<tui-group class="a"></tui-group>
<tui-select (hoveredChange)="onHover()"></tui-select>
`

const appModule = `import { NgModule } from "@angular/core";
import { AppComponent } from "./app.component";

@NgModule({
    declarations: [AppComponent],
    imports: [],
})
export class AppModule {}
`

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func writeProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"src/app/app.component.ts":   appComponent,
		"src/app/app.component.html": appTemplate,
		"src/app/app.module.ts":      appModule,
	}

	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	return dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)

	return string(data)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newUpdateCommandWithDeps(schematic.Run, func() time.Time { return fixedNow })

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestUpdate_MigratesAndBacksUp(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)

	out, err := execute(t, "--path", dir, "--no-color")
	require.NoError(t, err)

	template := readFile(t, dir, "src/app/app.component.html")
	assert.Contains(t, template, `<div tuiGroup class="a"></div>`)
	assert.Contains(t, template, `(tuiHoveredChange)="onHover()"`)

	module := readFile(t, dir, "src/app/app.module.ts")
	assert.Contains(t, module, "TuiHoveredModule")
	assert.Contains(t, module, `from "@taiga-ui/cdk"`)

	archive := filepath.Join(dir, backup.Name(fixedNow))
	assert.FileExists(t, archive)
	assert.Contains(t, out, "backup written to "+archive)
	assert.Contains(t, out, "src/app/app.component.html")

	entries, err := backup.List(archive)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpdate_SecondRunChangesNothing(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)

	_, err := execute(t, "--path", dir, "--no-backup")
	require.NoError(t, err)

	before := readFile(t, dir, "src/app/app.module.ts")

	_, err = execute(t, dir, "--no-backup")
	require.NoError(t, err)

	assert.Equal(t, before, readFile(t, dir, "src/app/app.module.ts"))
	assert.NoFileExists(t, filepath.Join(dir, backup.Name(fixedNow)))
}

func TestUpdate_DryRunLeavesFiles(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)

	out, err := execute(t, "--path", dir, "--dry-run", "--no-color")
	require.NoError(t, err)

	assert.Equal(t, appTemplate, readFile(t, dir, "src/app/app.component.html"))
	assert.NoFileExists(t, filepath.Join(dir, backup.Name(fixedNow)))

	assert.Contains(t, out, "--- a/src/app/app.component.html")
	assert.Contains(t, out, `-<tui-group class="a"></tui-group>`)
	assert.Contains(t, out, `+<div tuiGroup class="a"></div>`)
}

func TestUpdate_WritesReport(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	_, err := execute(t, "--path", dir, "--dry-run", "--report", reportPath)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report schematic.Report
	require.NoError(t, yaml.Unmarshal(data, &report))

	assert.Equal(t, 1, report.Templates)
	assert.Equal(t, []string{"TuiHoveredModule"}, report.Needs["AppComponent"])
	require.Len(t, report.Modules, 1)
	assert.Equal(t, "AppModule", report.Modules[0].Module)
}

func TestUpdate_CustomRulesFile(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`rules:
  - kind: attr-rename
    target: class
    replacement: ngClass
    tags: [tui-group]
`), 0o644))

	_, err := execute(t, "--path", dir, "--no-backup", "--rules", rulesPath)
	require.NoError(t, err)

	assert.Contains(t, readFile(t, dir, "src/app/app.component.html"), `<div tuiGroup ngClass="a"></div>`)
}

func TestUpdate_InvalidRulesFile(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)

	_, err := execute(t, "--path", dir, "--rules", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, appTemplate, readFile(t, dir, "src/app/app.component.html"))
}

func TestUpdate_RunnerErrorStillReports(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)
	errBoom := errors.New("boom")

	cmd := newUpdateCommandWithDeps(
		func(_ context.Context, _ *project.Context, _ schematic.Options) (*schematic.Report, error) {
			return &schematic.Report{Templates: 3}, errBoom
		},
		time.Now,
	)

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--path", dir, "--no-backup"})

	err := cmd.Execute()
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, out.String(), "3 templates")
}

func TestUpdate_ConfigFileDisablesBackup(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tuimigrate.yaml"), []byte("backup:\n  enabled: false\n"), 0o644))

	_, err := execute(t, "--path", dir)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, backup.Name(fixedNow)))
	assert.Contains(t, readFile(t, dir, "src/app/app.component.html"), "tuiGroup")
}

func TestRulesCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRulesCommand()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "tui-group")
	assert.Contains(t, text, "tuiResizableColumn")
	assert.Contains(t, text, "TuiHoveredModule from @taiga-ui/cdk")
}

func TestRulesCommand_BadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - kind: nope\n    target: x\n"), 0o644))

	cmd := NewRulesCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--rules", path})

	require.Error(t, cmd.Execute())
}

func TestRestoreCommand(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)

	_, err := execute(t, "--path", dir)
	require.NoError(t, err)

	archive := filepath.Join(dir, backup.Name(fixedNow))

	listCmd := NewRestoreCommand()

	var listed bytes.Buffer

	listCmd.SetOut(&listed)
	listCmd.SetArgs([]string{archive, "--list"})
	require.NoError(t, listCmd.Execute())
	assert.Contains(t, listed.String(), "src/app/app.module.ts")

	restoreCmd := NewRestoreCommand()

	var restored bytes.Buffer

	restoreCmd.SetOut(&restored)
	restoreCmd.SetArgs([]string{archive, "--path", dir})
	require.NoError(t, restoreCmd.Execute())

	assert.Contains(t, restored.String(), "restored src/app/app.component.html")
	assert.Equal(t, appTemplate, readFile(t, dir, "src/app/app.component.html"))
	assert.Equal(t, appModule, readFile(t, dir, "src/app/app.module.ts"))
}
