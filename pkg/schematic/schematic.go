// Package schematic runs a migration over a whole project: it locates
// every component template, applies the migration steps, reconciles module
// imports and commits the edits file by file.
package schematic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/markup"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/migration"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/ngmodule"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/observability"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/template"
)

const tracerName = "tuimigrate/schematic"

// Skip reasons.
const (
	ReasonUnparsableSource   = "unparsable-source"
	ReasonMissingTemplate    = "missing-template"
	ReasonMalformedTemplate  = "malformed-template"
	ReasonUnparsableTemplate = "unparsable-template"
)

// Options configures a run. Zero values select the defaults.
type Options struct {
	// Rules defaults to [migration.V3Rules].
	Rules []migration.Rule
	// Logger defaults to the project's logger.
	Logger *slog.Logger
	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer
	// Metrics is optional.
	Metrics *observability.RunMetrics
}

// Skip records a template that was not migrated.
type Skip struct {
	Path   string `yaml:"path"`
	Owner  string `yaml:"owner"`
	Reason string `yaml:"reason"`
	Detail string `yaml:"detail,omitempty"`
}

// FileResult is the number of edits committed to one file.
type FileResult struct {
	Path  string `yaml:"path"`
	Edits int    `yaml:"edits"`
}

// Report summarizes a run.
type Report struct {
	Templates int                 `yaml:"templates"`
	Edits     int                 `yaml:"edits"`
	Files     []FileResult        `yaml:"files"`
	Modules   []ngmodule.Change   `yaml:"modules,omitempty"`
	Skipped   []Skip              `yaml:"skipped,omitempty"`
	Needs     map[string][]string `yaml:"needs,omitempty"`
	Duration  time.Duration       `yaml:"-"`
}

// Run migrates every template of p and commits the edits into p's files.
// Files are committed independently; a failure on one file is returned
// joined with others and leaves the rest committed.
func Run(ctx context.Context, p *project.Context, opts Options) (*Report, error) {
	started := time.Now()

	r := newRunner(p, opts)

	ctx, span := r.tracer.Start(ctx, "schematic.run")
	defer span.End()

	report, err := r.run(ctx)
	report.Duration = time.Since(started)

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(
		attribute.Int("templates", report.Templates),
		attribute.Int("edits", report.Edits),
		attribute.Int("files", len(report.Files)),
	)

	r.metrics.RunFinished(ctx, status, len(report.Files), report.Duration)
	r.logger.InfoContext(ctx, "migration finished",
		"templates", report.Templates,
		"edits", report.Edits,
		"files", len(report.Files),
		"skipped", len(report.Skipped),
		"duration", report.Duration)

	return report, err
}

type runner struct {
	p       *project.Context
	steps   []migration.Step
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RunMetrics
}

func newRunner(p *project.Context, opts Options) *runner {
	rules := opts.Rules
	if rules == nil {
		rules = migration.V3Rules()
	}

	logger := opts.Logger
	if logger == nil {
		logger = p.Logger()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &runner{
		p:       p,
		steps:   migration.Steps(rules),
		logger:  logger,
		tracer:  tracer,
		metrics: opts.Metrics,
	}
}

// group is one template text and the components that use it.
type group struct {
	res        template.Resource
	components []string
}

func (r *runner) run(ctx context.Context) (*Report, error) {
	report := &Report{Needs: make(map[string][]string)}

	groups, err := r.locate(ctx, report)
	if err != nil {
		return report, err
	}

	needs := make(map[string][]migration.Import)

	var errs []error

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		imports, err := r.migrate(ctx, g, report)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		for _, component := range g.components {
			needs[component] = append(needs[component], imports...)

			for _, imp := range imports {
				if !slices.Contains(report.Needs[component], imp.Name) {
					report.Needs[component] = append(report.Needs[component], imp.Name)
				}
			}
		}
	}

	changes, err := ngmodule.Reconcile(ctx, r.p, needs)
	if err != nil {
		errs = append(errs, fmt.Errorf("reconcile modules: %w", err))
	}

	report.Modules = changes

	counts, err := r.p.CommitAll()
	if err != nil {
		errs = append(errs, err)
	}

	for _, path := range slices.Sorted(maps.Keys(counts)) {
		report.Files = append(report.Files, FileResult{Path: path, Edits: counts[path]})
		report.Edits += counts[path]
	}

	if len(report.Needs) == 0 {
		report.Needs = nil
	}

	return report, errors.Join(errs...)
}

// locate finds every template resource, grouping components that share
// one template text.
func (r *runner) locate(ctx context.Context, report *Report) ([]*group, error) {
	var (
		groups []*group
		byKey  = make(map[string]*group)
	)

	for _, path := range r.p.PathsWithSuffix(".ts") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.metrics.FileVisited(ctx)

		resources, err := template.LocateAll(ctx, r.p, path)
		if err != nil {
			r.logger.DebugContext(ctx, "skipping unparsable source", "path", path, "error", err)
			r.skip(ctx, report, Skip{Path: path, Owner: path, Reason: ReasonUnparsableSource, Detail: err.Error()})

			continue
		}

		for _, res := range resources {
			g, ok := byKey[res.Key()]
			if !ok {
				g = &group{res: res}
				byKey[res.Key()] = g
				groups = append(groups, g)
			}

			if res.Component != "" && !slices.Contains(g.components, res.Component) {
				g.components = append(g.components, res.Component)
			}
		}
	}

	return groups, nil
}

// migrate runs every step over one template and returns the imports the
// migrated markup needs, in step order.
func (r *runner) migrate(ctx context.Context, g *group, report *Report) ([]migration.Import, error) {
	res := g.res
	ctx = observability.WithTemplate(ctx, res.Path, res.OwnerPath)

	text, err := template.Load(r.p, res)
	if err != nil {
		reason := ReasonMalformedTemplate

		switch {
		case errors.Is(err, template.ErrMissingTemplate):
			reason = ReasonMissingTemplate
		case !errors.Is(err, template.ErrMalformed):
			return nil, err
		}

		r.logger.DebugContext(ctx, "skipping template", "error", err)
		r.skip(ctx, report, Skip{Path: res.Path, Owner: res.OwnerPath, Reason: reason, Detail: err.Error()})

		return nil, nil
	}

	doc, err := markup.Parse(ctx, text)
	if err != nil {
		r.logger.DebugContext(ctx, "skipping template", "error", err)
		r.skip(ctx, report, Skip{Path: res.Path, Owner: res.OwnerPath, Reason: ReasonUnparsableTemplate, Detail: err.Error()})

		return nil, nil
	}

	rec, err := r.p.Recorder(res.Path)
	if err != nil {
		return nil, err
	}

	before := rec.Len()
	tpl := &migration.Template{Resource: res, Text: text, Doc: doc}

	var imports []migration.Import

	for _, step := range r.steps {
		imports = append(imports, step.Apply(tpl, rec)...)
	}

	recorded := rec.Len() - before

	report.Templates++
	r.metrics.TemplateMigrated(ctx, res.Kind.String())
	r.metrics.EditsRecorded(ctx, recorded)
	r.logger.DebugContext(ctx, "template migrated",
		"kind", res.Kind.String(),
		"components", strings.Join(g.components, ","),
		"edits", recorded)

	return imports, nil
}

func (r *runner) skip(ctx context.Context, report *Report, s Skip) {
	report.Skipped = append(report.Skipped, s)
	r.metrics.ResourceSkipped(ctx, s.Reason)
}
