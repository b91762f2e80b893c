package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

type diffPalette struct {
	header, added, removed, hunk *color.Color
}

func newDiffPalette(noColor bool) diffPalette {
	pal := diffPalette{
		header:  color.New(color.Bold),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		hunk:    color.New(color.FgCyan),
	}

	if noColor {
		for _, c := range []*color.Color{pal.header, pal.added, pal.removed, pal.hunk} {
			c.DisableColor()
		}
	}

	return pal
}

// writeDiff prints a line diff of every changed file against its pristine text.
func writeDiff(w io.Writer, p *project.Context, paths []string, noColor bool) error {
	pal := newDiffPalette(noColor)
	dmp := diffmatchpatch.New()

	for _, path := range paths {
		f, err := p.File(path)
		if err != nil {
			return err
		}

		pal.header.Fprintf(w, "--- a/%s\n+++ b/%s\n", path, path)

		before, after, lines := dmp.DiffLinesToChars(f.Original, f.Content)
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(before, after, false), lines)

		writeHunks(w, pal, diffs)
	}

	return nil
}

func writeHunks(w io.Writer, pal diffPalette, diffs []diffmatchpatch.Diff) {
	for i, d := range diffs {
		lines := splitLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				pal.added.Fprintf(w, "+%s\n", line)
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				pal.removed.Fprintf(w, "-%s\n", line)
			}
		case diffmatchpatch.DiffEqual:
			writeContext(w, pal, lines, i > 0, i < len(diffs)-1)
		}
	}
}

// writeContext prints the unchanged lines next to the neighbouring changes
// and elides the rest.
func writeContext(w io.Writer, pal diffPalette, lines []string, afterChange, beforeChange bool) {
	var head, tail []string

	if afterChange {
		head = lines[:min(diffContext, len(lines))]
		lines = lines[len(head):]
	}

	if beforeChange {
		tail = lines[max(0, len(lines)-diffContext):]
		lines = lines[:len(lines)-len(tail)]
	}

	for _, line := range head {
		fmt.Fprintf(w, " %s\n", line)
	}

	if len(lines) > 0 && beforeChange {
		pal.hunk.Fprintf(w, "@@ %d unchanged lines @@\n", len(lines))
	}

	for _, line := range tail {
		fmt.Fprintf(w, " %s\n", line)
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
