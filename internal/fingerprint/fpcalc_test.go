package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fpcalc")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestFingerprint(t *testing.T) {
	stub := writeStub(t, `echo '{"duration": 187.43, "fingerprint": "AQADtMmybfGO8NCNEESLnzHyXNOHeHnG"}'`+"\n")

	res, err := NewFPCalc(stub).Fingerprint(context.Background(), "clip.mp3")
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if res.Duration != 187 {
		t.Errorf("Expected duration 187, got %d", res.Duration)
	}
	if res.Fingerprint != "AQADtMmybfGO8NCNEESLnzHyXNOHeHnG" {
		t.Errorf("Unexpected fingerprint %q", res.Fingerprint)
	}
}

func TestFingerprintFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-zero exit", "echo 'ERROR: Could not open the input file' >&2\nexit 2\n"},
		{"bad json", "echo 'FINGERPRINT=abc'\n"},
		{"empty fingerprint", `echo '{"duration": 3, "fingerprint": ""}'` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := writeStub(t, tt.body)
			if _, err := NewFPCalc(stub).Fingerprint(context.Background(), "clip.mp3"); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
