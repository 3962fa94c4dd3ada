package separator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cesargomez89/strume/internal/audio"
	"github.com/cesargomez89/strume/internal/constants"
)

// DemucsConfig configures the demucs command line.
type DemucsConfig struct {
	Binary     string
	Model      string
	Device     string
	SampleRate int
	Channels   int
}

// Demucs runs the demucs CLI once per call in a private temp directory,
// so one instance can serve concurrent jobs.
type Demucs struct {
	cfg DemucsConfig
}

func NewDemucs(cfg DemucsConfig) *Demucs {
	if cfg.Binary == "" {
		cfg.Binary = constants.DefaultDemucsPath
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultDemucsModel
	}
	if cfg.Device == "" {
		cfg.Device = constants.DefaultDemucsDevice
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = constants.DefaultModelSampleRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = constants.DefaultModelChannels
	}
	return &Demucs{cfg: cfg}
}

func (d *Demucs) Name() string { return d.cfg.Model }
func (d *Demucs) SampleRate() int { return d.cfg.SampleRate }
func (d *Demucs) Channels() int { return d.cfg.Channels }
func (d *Demucs) Binary() string { return d.cfg.Binary }

func (d *Demucs) Separate(ctx context.Context, mix *audio.Waveform) ([]*audio.Waveform, error) {
	tmp, err := os.MkdirTemp("", "strume-demucs-")
	if err != nil {
		return nil, fmt.Errorf("demucs temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	const track = "mix"
	input := filepath.Join(tmp, track+constants.ExtWAV)
	if err := audio.WriteWAV(input, mix); err != nil {
		return nil, fmt.Errorf("demucs input: %w", err)
	}

	outDir := filepath.Join(tmp, "out")
	args := []string{
		"-n", d.cfg.Model,
		"-d", d.cfg.Device,
		"-o", outDir,
		input,
	}
	cmd := exec.CommandContext(ctx, d.cfg.Binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("demucs: %w: %s", err, lastLine(string(output)))
	}

	stemDir := filepath.Join(outDir, d.cfg.Model, track)
	var stems []*audio.Waveform
	for _, name := range StemNames {
		path := filepath.Join(stemDir, name+constants.ExtWAV)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// a short stem list is reported by the caller
			continue
		}
		stem, err := audio.ReadWAV(path)
		if err != nil {
			return nil, fmt.Errorf("demucs stem %s: %w", name, err)
		}
		stems = append(stems, stem)
	}
	return stems, nil
}

// demucs prints a progress bar per chunk; only the tail matters on failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
