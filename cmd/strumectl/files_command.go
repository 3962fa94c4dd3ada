package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cesargomez89/strume/internal/metadata"
)

type fileRow struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Genre    string `json:"genre"`
	Size     int64  `json:"size"`
	Missing  bool   `json:"missing,omitempty"`
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the kept instrumentals of an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := metadata.NewStore(cfg.MetadataPath, ctx.logger(cmd.ErrOrStderr()))
			records, err := store.List(email)
			if err != nil {
				return err
			}

			rows := make([]fileRow, 0, len(records))
			for _, r := range records {
				row := fileRow{Filename: r.Filename, Title: r.Title, Artist: r.Artist, Genre: r.Genre}
				if info, err := os.Stat(filepath.Join(cfg.StoredDir, filepath.Base(r.Filename))); err == nil {
					row.Size = info.Size()
				} else {
					row.Missing = true
				}
				rows = append(rows, row)
			}

			if ctx.jsonOutput {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No files for %s\n", email)
				return nil
			}

			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				size := "missing"
				if !row.Missing {
					size = humanize.Bytes(uint64(row.Size))
				}
				table = append(table, []string{row.Filename, row.Title, row.Artist, row.Genre, size})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Title", "Artist", "Genre", "Size"},
				table,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Owner whose files to list")
	return cmd
}
