package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/backup"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/config"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/observability"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/schematic"
)

const reportFileMode = 0o644

type migrationRunner func(ctx context.Context, p *project.Context, opts schematic.Options) (*schematic.Report, error)

// UpdateCommand holds configuration and dependencies for the update command.
type UpdateCommand struct {
	path       string
	rulesFiles []string
	reportPath string
	backupDir  string
	strict     bool
	dryRun     bool
	noBackup   bool
	noColor    bool
	verbose    bool

	run migrationRunner
	now func() time.Time
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	return newUpdateCommandWithDeps(schematic.Run, time.Now)
}

func newUpdateCommandWithDeps(run migrationRunner, now func() time.Time) *cobra.Command {
	uc := &UpdateCommand{run: run, now: now}

	cmd := &cobra.Command{
		Use:   "update [path]",
		Short: "Migrate a project to Taiga UI v3",
		Long: `Migrate the templates and module imports of a project to Taiga UI v3.

Files are rewritten in place after a backup archive of their previous
contents is written to the project root. Use --dry-run to print a diff
instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: uc.runE,
	}

	cmd.Flags().StringVarP(&uc.path, "path", "p", ".", "Project root to migrate")
	cmd.Flags().StringSliceVar(&uc.rulesFiles, "rules", nil, "Extra rule files applied after the built-in v3 rules")
	cmd.Flags().StringVar(&uc.reportPath, "report", "", "Write the run report as YAML to this file")
	cmd.Flags().StringVar(&uc.backupDir, "backup-dir", "", "Directory for the backup archive (default: project root)")
	cmd.Flags().BoolVar(&uc.strict, "strict", false, "Reject overlapping edits instead of applying them")
	cmd.Flags().BoolVar(&uc.dryRun, "dry-run", false, "Print a diff and leave files untouched")
	cmd.Flags().BoolVar(&uc.noBackup, "no-backup", false, "Do not write a backup archive")
	cmd.Flags().BoolVar(&uc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&uc.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func (uc *UpdateCommand) runE(cmd *cobra.Command, args []string) error {
	root := uc.path
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	uc.applyFlags(cmd, cfg)

	mode := observability.ModeApply
	if uc.dryRun {
		mode = observability.ModeDryRun
	}

	providers, err := startTelemetry(cfg, mode, uc.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer shutdownTelemetry(providers)

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	rules, err := buildRules(cfg.Migration.Rules)
	if err != nil {
		return err
	}

	loadOpts, err := cfg.Project.LoadOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := project.Load(ctx, root, loadOpts,
		project.WithLogger(providers.Logger),
		project.WithStrict(cfg.Migration.Strict))
	if err != nil {
		return err
	}
	defer p.Dispose()

	report, runErr := uc.run(ctx, p, schematic.Options{
		Rules:   rules,
		Logger:  providers.Logger,
		Tracer:  providers.Tracer,
		Metrics: metrics,
	})
	if report == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	changed := p.Changed()

	if uc.dryRun {
		if err := writeDiff(out, p, changed, uc.noColor); err != nil {
			return err
		}
	} else if err := uc.persist(p, cfg, changed, out); err != nil {
		return errors.Join(runErr, err)
	}

	if err := writeSummary(out, p, report, uc.noColor); err != nil {
		return errors.Join(runErr, err)
	}

	if uc.reportPath != "" {
		if err := writeReport(uc.reportPath, report); err != nil {
			return errors.Join(runErr, err)
		}
	}

	return runErr
}

// applyFlags lets explicitly set flags override the file configuration.
func (uc *UpdateCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("strict") {
		cfg.Migration.Strict = uc.strict
	}

	if cmd.Flags().Changed("no-backup") {
		cfg.Backup.Enabled = !uc.noBackup
	}

	if cmd.Flags().Changed("backup-dir") {
		cfg.Backup.Dir = uc.backupDir
	}

	cfg.Migration.Rules = append(cfg.Migration.Rules, uc.rulesFiles...)
}

// persist backs up and saves the changed files.
func (uc *UpdateCommand) persist(p *project.Context, cfg *config.Config, changed []string, out io.Writer) error {
	if len(changed) == 0 {
		return nil
	}

	if cfg.Backup.Enabled {
		dir := cfg.Backup.Dir
		if dir == "" {
			dir = p.Root()
		}

		archive := filepath.Join(dir, backup.Name(uc.now()))
		if err := backup.Create(archive, p, changed); err != nil {
			return fmt.Errorf("backup: %w", err)
		}

		fmt.Fprintf(out, "backup written to %s\n", archive)
	}

	if _, err := p.Save(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	return nil
}

func writeReport(path string, report *schematic.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(path, data, reportFileMode); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
