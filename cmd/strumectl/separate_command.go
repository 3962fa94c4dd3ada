package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cesargomez89/strume/internal/app"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/progress"
	"github.com/cesargomez89/strume/internal/storage"
)

const progressRedraw = 200 * time.Millisecond

func newSeparateCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		keep      bool
		email     string
		title     string
		artist    string
		genre     string
	)

	cmd := &cobra.Command{
		Use:   "separate <file>",
		Short: "Strip the vocals from an audio file",
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

			input := args[0]
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			taskID := uuid.New().String()
			done := make(chan struct{})
			rendered := make(chan struct{})
			go func() {
				defer close(rendered)
				renderProgress(cmd.ErrOrStderr(), svc.Registry, taskID, done)
			}()

			res, err := svc.Separations.Separate(cmd.Context(), app.SeparateRequest{
				Upload:   f,
				Filename: filepath.Base(input),
				TaskID:   taskID,
				Keep:     keep,
				Owner:    email,
				Title:    title,
				Artist:   artist,
				Genre:    genre,
			})
			if err != nil {
				close(done)
				<-rendered
				return err
			}
			defer res.Finish()

			dest := filepath.Join(outputDir, res.DownloadName)
			copyErr := storage.CopyFile(res.Path, dest)
			close(done)
			<-rendered
			if copyErr != nil {
				return fmt.Errorf("write %s: %w", dest, copyErr)
			}

			out := cmd.OutOrStdout()
			size := "?"
			if info, err := os.Stat(dest); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			fmt.Fprintf(out, "Wrote %s (%s)\n", dest, size)
			if res.StoredName != "" {
				fmt.Fprintf(out, "Stored as %s\n", res.StoredName)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory to write the instrumental to")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep a copy in the stored library")
	cmd.Flags().StringVar(&email, "email", "", "Owner to record the kept copy under")
	cmd.Flags().StringVar(&title, "title", "", "Title of the kept copy")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist of the kept copy")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre of the kept copy")

	return cmd
}

// renderProgress prints each new progress value until done is closed.
// Terminals get a single redrawn line.
func renderProgress(w io.Writer, registry *progress.Registry, taskID string, done <-chan struct{}) {
	tty := isTerminal(w)
	ticker := time.NewTicker(progressRedraw)
	defer ticker.Stop()

	last := domain.Progress(-2)
	for {
		value, changed := registry.Watch(taskID)
		if changed != nil && value != last {
			if tty {
				fmt.Fprintf(w, "\rprogress: %3d%%", int(value))
			} else {
				fmt.Fprintf(w, "progress: %d%%\n", int(value))
			}
			last = value
		}

		select {
		case <-done:
			if tty && last != -2 {
				fmt.Fprintln(w)
			}
			return
		case <-changed:
		case <-ticker.C:
		}
	}
}
