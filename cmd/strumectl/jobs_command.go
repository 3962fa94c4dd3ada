package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cesargomez89/strume/internal/app"
	"github.com/cesargomez89/strume/internal/http/dto"
	"github.com/cesargomez89/strume/internal/store"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recent separations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := store.NewSQLiteDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			jobs := app.NewJobService(db, ctx.logger(cmd.ErrOrStderr()))
			list, err := jobs.ListJobs(limit)
			if err != nil {
				return err
			}
			stats, err := jobs.GetJobStats()
			if err != nil {
				return err
			}

			if ctx.jsonOutput {
				return writeJSON(cmd, dto.NewJobListResponse(list, stats))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d total, %d running, %d completed, %d failed\n",
				stats.Total, stats.Running, stats.Completed, stats.Failed)
			if len(list) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, job := range list {
				rows = append(rows, []string{
					job.ID,
					job.InputName,
					string(job.Status),
					strconv.Itoa(int(job.Progress)),
					humanize.Time(job.UpdatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Input", "Status", "Progress", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", app.DefaultJobListLimit, "Number of jobs to show")
	return cmd
}
