package ngmodule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/migration"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/textutil"
)

// Change describes the imports added to one module.
type Change struct {
	Path   string   `yaml:"path"`
	Module string   `yaml:"module"`
	Added  []string `yaml:"added"`
}

// Recorder receives module edits; [*edit.Recorder] satisfies it.
type Recorder interface {
	InsertLeft(offset int, text string)
	InsertRight(offset int, text string)
}

// Reconcile adds the imports needed by components to every module that
// declares them. needs maps component class names to required imports.
// Edits are recorded on the project's recorder of each module file.
func Reconcile(ctx context.Context, p *project.Context, needs map[string][]migration.Import) ([]Change, error) {
	if len(needs) == 0 {
		return nil, nil
	}

	var (
		changes []Change
		errs    []error
	)

	for _, path := range p.PathsWithSuffix(".ts") {
		if err := ctx.Err(); err != nil {
			return changes, err
		}

		src, err := p.ReadContent(path)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		decls, err := Parse(ctx, path, src)
		if err != nil {
			p.Logger().DebugContext(ctx, "skipping unparsable module file", "path", path, "error", err)

			continue
		}

		if len(decls) == 0 {
			continue
		}

		rec, err := p.Recorder(path)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		changes = append(changes, reconcileFile(src, decls, needs, rec)...)
	}

	return changes, errors.Join(errs...)
}

// reconcileFile records the edits for every module of one file. Import
// statements are shared by the modules of a file, so a symbol is added to
// them at most once.
func reconcileFile(src string, decls []Declaration, needs map[string][]migration.Import, rec Recorder) []Change {
	stated := make(map[string]bool)

	for _, stmt := range decls[0].Statements {
		for _, name := range stmt.Names {
			stated[name] = true
		}
	}

	var (
		changes []Change
		pending []migration.Import
	)

	for _, decl := range decls {
		required := Required(decl, needs)

		var added []string

		for _, imp := range required {
			if decl.Imports.Contains(imp.Name) {
				continue
			}

			added = append(added, imp.Name)

			if !stated[imp.Name] {
				stated[imp.Name] = true
				pending = append(pending, imp)
			}
		}

		if len(added) == 0 {
			continue
		}

		appendToArray(src, decl, added, rec)
		changes = append(changes, Change{Path: decl.Path, Module: decl.Class, Added: added})
	}

	addStatements(decls[0].Statements, pending, rec)

	return changes
}

// Required returns the imports needed by the components decl declares,
// deduplicated by name in first-seen order.
func Required(decl Declaration, needs map[string][]migration.Import) []migration.Import {
	seen := make(map[string]bool)

	var out []migration.Import

	for _, component := range decl.Declarations {
		for _, imp := range needs[component] {
			if seen[imp.Name] {
				continue
			}

			seen[imp.Name] = true
			out = append(out, imp)
		}
	}

	return out
}

// appendToArray adds names to the module's imports array, following the
// array's layout. A module without an imports property gets one.
func appendToArray(src string, decl Declaration, names []string, rec Recorder) {
	arr := decl.Imports

	switch {
	case arr == nil && decl.FirstPropertyStart < 0:
		rec.InsertLeft(decl.MetadataStart+1, fmt.Sprintf("%s: [%s]", propImports, strings.Join(names, ", ")))
	case arr == nil:
		sep := ", "
		if strings.Contains(src[decl.MetadataStart:decl.FirstPropertyStart], "\n") {
			sep = ",\n" + textutil.Indent(src, decl.FirstPropertyStart)
		}

		rec.InsertLeft(decl.FirstPropertyStart,
			fmt.Sprintf("%s: [%s]%s", propImports, strings.Join(names, ", "), sep))
	case arr.LastEnd < 0:
		rec.InsertLeft(arr.Start+1, strings.Join(names, ", "))
	case arr.Multiline:
		indent := textutil.Indent(src, arr.LastStart)

		var sb strings.Builder
		for _, name := range names {
			sb.WriteString(",\n" + indent + name)
		}

		rec.InsertRight(arr.LastEnd, sb.String())
	default:
		rec.InsertRight(arr.LastEnd, ", "+strings.Join(names, ", "))
	}
}

// addStatements merges imports into existing named imports from the same
// specifier and puts the rest into one new statement per specifier at the
// top of the file.
func addStatements(statements []ImportStatement, imports []migration.Import, rec Recorder) {
	var (
		order  []string
		bySpec = make(map[string][]string)
	)

	for _, imp := range imports {
		if stmt, ok := mergeTarget(statements, imp.From); ok {
			rec.InsertRight(stmt.InsertAt, ", "+imp.Name)

			continue
		}

		if _, ok := bySpec[imp.From]; !ok {
			order = append(order, imp.From)
		}

		bySpec[imp.From] = append(bySpec[imp.From], imp.Name)
	}

	for _, spec := range order {
		rec.InsertLeft(0, fmt.Sprintf("import { %s } from %q;\n", strings.Join(bySpec[spec], ", "), spec))
	}
}

func mergeTarget(statements []ImportStatement, source string) (ImportStatement, bool) {
	for _, stmt := range statements {
		if stmt.Source == source && stmt.InsertAt >= 0 && !stmt.TypeOnly {
			return stmt, true
		}
	}

	return ImportStatement{}, false
}
