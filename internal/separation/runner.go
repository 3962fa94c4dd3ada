// Package separation runs one vocal-removal job: decode, separate, mix the
// non-vocal stems and write the instrumental, reporting progress as it goes.
package separation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cesargomez89/strume/internal/audio"
	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/separator"
)

// ProgressSink receives checkpoint values for a task.
type ProgressSink interface {
	Set(id string, value domain.Progress) bool
}

// Runner turns an input file into `<base>_instrumental.wav`.
type Runner struct {
	model   separator.Model
	decoder audio.Decoder
	sink    ProgressSink
	logger  *logger.Logger
}

func NewRunner(model separator.Model, decoder audio.Decoder, sink ProgressSink, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		model:   model,
		decoder: decoder,
		sink:    sink,
		logger:  log.WithComponent("separation"),
	}
}

// OutputName returns the artifact name produced for an input file.
func OutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + constants.InstrumentalSuffix + constants.ExtWAV
}

// Run executes the job and returns the artifact path. Progress goes
// 10, 30, 70, 95 on success; the caller writes 100 once the artifact has
// been delivered. Any failure leaves the task at -1 with no partial output
// and returns a *domain.SeparationError.
func (r *Runner) Run(ctx context.Context, taskID, inputPath, destDir string) (outPath string, err error) {
	log := r.logger.WithTask(taskID)
	outPath = filepath.Join(destDir, OutputName(inputPath))

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: model panicked: %v", domain.ErrModelOutput, rec)
		}
		if err != nil {
			if rmErr := os.Remove(outPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warn("Failed to remove partial output", "path", outPath, "error", rmErr)
			}
			r.sink.Set(taskID, domain.ProgressFailed)
			log.Error("Separation failed", "input", inputPath, "error", err)
			err = &domain.SeparationError{TaskID: taskID, Err: err}
			outPath = ""
		}
	}()

	if err := checkReadable(inputPath); err != nil {
		return "", err
	}
	r.sink.Set(taskID, domain.ProgressLoaded)

	mix, err := r.decoder.Decode(ctx, inputPath, r.model.SampleRate(), r.model.Channels())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	r.sink.Set(taskID, domain.ProgressDecoded)
	log.Debug("Decoded input", "seconds", mix.Duration(), "model", r.model.Name())

	stems, err := r.model.Separate(ctx, mix)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelOutput, err)
	}
	r.sink.Set(taskID, domain.ProgressSeparated)

	if len(stems) < len(separator.StemNames) {
		return "", fmt.Errorf("%w: got %d stems, want %d", domain.ErrModelOutput, len(stems), len(separator.StemNames))
	}

	// drums + bass + other; vocals (index 3) is dropped
	instrumental, err := audio.Sum(stems[0], stems[1], stems[2])
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelOutput, err)
	}
	instrumental.PeakNormalize()

	if err := audio.WriteWAV(outPath, instrumental); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: output missing after write: %s", domain.ErrIO, outPath)
	}
	r.sink.Set(taskID, domain.ProgressSaved)

	log.Info("Instrumental written", "output", outPath, "seconds", instrumental.Duration())
	return outPath, nil
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open input: %v", domain.ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat input: %v", domain.ErrIO, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: input is a directory: %s", domain.ErrIO, path)
	}
	return nil
}
