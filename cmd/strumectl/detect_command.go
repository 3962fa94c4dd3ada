package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/strume/internal/app"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Identify an audio file by its fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := app.NewServices(cfg, ctx.model, ctx.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer svc.Close(context.Background())
			if ctx.fingerprinter != nil {
				svc.Detector.Fingerprinter = ctx.fingerprinter
			}
			if ctx.lookup != nil {
				svc.Detector.Lookup = ctx.lookup
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := svc.Detector.Detect(cmd.Context(), f, filepath.Base(args[0]))
			if err != nil {
				return err
			}

			if ctx.jsonOutput {
				return writeJSON(cmd, info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:  %s\n", info.Title)
			fmt.Fprintf(out, "Artist: %s\n", info.Artist)
			fmt.Fprintf(out, "Genre:  %s\n", info.Genre)
			return nil
		},
	}
}
