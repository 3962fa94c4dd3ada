package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cesargomez89/strume/internal/constants"
)

// Transcode converts a WAV artifact into the given stored format.
func (f *FFmpeg) Transcode(ctx context.Context, src, dest, format string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn",
	}

	switch format {
	case constants.FormatFLAC:
		args = append(args, "-c:a", "flac")
	case constants.FormatMP3:
		args = append(args, "-c:a", "libmp3lame", "-q:a", "2")
	case constants.FormatWAV:
		args = append(args, "-c:a", "pcm_s16le")
	default:
		return fmt.Errorf("transcode: unsupported format %q", format)
	}
	args = append(args, dest)

	cmd := exec.CommandContext(ctx, f.Binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg transcode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
