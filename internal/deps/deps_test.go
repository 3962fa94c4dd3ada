package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cesargomez89/strume/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail != `binary "clearly-not-present-binary" not found` {
		t.Fatalf("unexpected detail message: %s", results[1].Detail)
	}

	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %s", results[2].Detail)
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "Demucs", Available: false},
		{Name: "fpcalc", Available: false, Optional: true},
	}

	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "Demucs" {
		t.Fatalf("expected only Demucs to be missing, got %#v", missing)
	}
}

func TestRequirementsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DemucsPath = "/opt/demucs/bin/demucs"

	reqs := Requirements(cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}

	found := false
	for _, r := range reqs {
		if r.Name == "Demucs" && r.Command == "/opt/demucs/bin/demucs" {
			found = true
		}
		if r.Name == "fpcalc" && !r.Optional {
			t.Fatal("expected fpcalc to be optional")
		}
	}
	if !found {
		t.Fatal("expected Demucs requirement to use configured path")
	}
}
