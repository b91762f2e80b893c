package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/safeconv"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/schematic"
)

// writeSummary renders the per-file table, module changes and skipped resources.
func writeSummary(w io.Writer, p *project.Context, report *schematic.Report, noColor bool) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Edits", "Size"})

	for _, fr := range report.Files {
		size := "-"
		if f, err := p.File(fr.Path); err == nil {
			size = humanize.Bytes(safeconv.MustInt64ToUint64(int64(len(f.Content))))
		}

		tbl.AppendRow(table.Row{fr.Path, fr.Edits, size})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d files", len(report.Files)),
		report.Edits,
		"",
	})
	tbl.Render()

	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	if noColor {
		ok.DisableColor()
		warn.DisableColor()
	}

	for _, change := range report.Modules {
		ok.Fprintf(w, "%s: %s += %s\n", change.Path, change.Module, strings.Join(change.Added, ", "))
	}

	for _, skip := range report.Skipped {
		warn.Fprintf(w, "skipped %s (%s)", skip.Path, skip.Reason)

		if skip.Detail != "" {
			warn.Fprintf(w, ": %s", skip.Detail)
		}

		fmt.Fprintln(w)
	}

	_, err := fmt.Fprintf(w, "%s templates, %s edits in %s\n",
		humanize.Comma(int64(report.Templates)),
		humanize.Comma(int64(report.Edits)),
		report.Duration.Round(time.Millisecond))

	return err
}
