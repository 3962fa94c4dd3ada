package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/strume/internal/deps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the external tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			missing := deps.MissingRequired(statuses)

			if ctx.jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					state := "ok"
					switch {
					case !s.Available && s.Optional:
						state = "missing (optional)"
					case !s.Available:
						state = "missing"
					}
					rows = append(rows, []string{s.Name, s.Command, state, s.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Tool", "Command", "State", "Detail"},
					rows,
					nil,
				))
			}

			if len(missing) > 0 {
				return fmt.Errorf("%d required tool(s) missing", len(missing))
			}
			return nil
		},
	}
}
