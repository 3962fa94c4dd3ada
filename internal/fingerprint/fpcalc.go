// Package fingerprint computes Chromaprint fingerprints with fpcalc.
package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is what AcoustID needs to identify a recording.
type Result struct {
	Fingerprint string
	Duration    int // whole seconds
}

// Fingerprinter is implemented by FPCalc and by test fakes.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (Result, error)
}

type FPCalc struct {
	Binary string
}

func NewFPCalc(binary string) *FPCalc {
	if binary == "" {
		binary = "fpcalc"
	}
	return &FPCalc{Binary: binary}
}

type fpcalcOutput struct {
	Fingerprint string  `json:"fingerprint"`
	Duration    float64 `json:"duration"`
}

func (f *FPCalc) Fingerprint(ctx context.Context, path string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Binary, "-json", path) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("fpcalc: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var out fpcalcOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return Result{}, fmt.Errorf("fpcalc: parse output: %w", err)
	}
	if out.Fingerprint == "" {
		return Result{}, errors.New("fpcalc: fingerprint missing")
	}

	return Result{Fingerprint: out.Fingerprint, Duration: int(out.Duration)}, nil
}
