package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/backup"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/safeconv"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand() *cobra.Command {
	var (
		root string
		list bool
	)

	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore files from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if list {
				entries, err := backup.List(args[0])
				if err != nil {
					return err
				}

				writeEntries(out, entries)

				return nil
			}

			restored, err := backup.Restore(args[0], root)
			for _, path := range restored {
				fmt.Fprintf(out, "restored %s\n", path)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&root, "path", "p", ".", "Project root to restore into")
	cmd.Flags().BoolVar(&list, "list", false, "List the archive contents without restoring")

	return cmd
}

func writeEntries(w io.Writer, entries []backup.Entry) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Mode", "Size"})

	for _, e := range entries {
		tbl.AppendRow(table.Row{e.Path, e.Mode, humanize.IBytes(safeconv.MustInt64ToUint64(e.Size))})
	}

	tbl.Render()
}
