package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/migration"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the migration rules in application order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := buildRules(files)
			if err != nil {
				return err
			}

			writeRules(cmd.OutOrStdout(), rules)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "rules", nil, "Extra rule files to validate and list")

	return cmd
}

func writeRules(w io.Writer, rules []migration.Rule) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Kind", "Target", "Replacement", "Tags", "Import"})

	for i, r := range rules {
		imp := ""
		if r.Import != nil {
			imp = fmt.Sprintf("%s from %s", r.Import.Name, r.Import.From)
		}

		tags := strings.Join(r.Tags, ",")
		if len(r.WithAttrs) > 0 {
			tags += "[" + strings.Join(r.WithAttrs, ",") + "]"
		}

		tbl.AppendRow(table.Row{i + 1, r.Kind, r.Target, r.Replacement, tags, imp})
	}

	tbl.Render()
}
