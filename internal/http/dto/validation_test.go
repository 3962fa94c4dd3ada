package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/strume/internal/domain"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "file", Message: "is required"}
	if err.Error() != "file: is required" {
		t.Errorf("Error() = %q, want %q", err.Error(), "file: is required")
	}
}

func TestToMap(t *testing.T) {
	errs := []ValidationError{
		{Field: "file", Message: "is required"},
		{Field: "email", Message: "is required"},
	}
	m := ToMap(errs)
	if len(m) != 2 {
		t.Errorf("ToMap() returned %d items, want 2", len(m))
	}
	if m["email"] != "is required" {
		t.Errorf("ToMap()[email] = %q, want %q", m["email"], "is required")
	}
}

func TestToResponse(t *testing.T) {
	errs := []ValidationError{
		{Field: "file", Message: "is required"},
		{Field: "keep_file", Message: "must be a boolean"},
	}
	resp := ToResponse(errs)
	expected := "file: is required; keep_file: must be a boolean"
	if resp != expected {
		t.Errorf("ToResponse() = %q, want %q", resp, expected)
	}
}

func TestParseFormBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"true", true, false},
		{"True", true, false},
		{"1", true, false},
		{"on", true, false},
		{"yes", true, false},
		{"false", false, false},
		{"0", false, false},
		{"off", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		got, err := ParseFormBool(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormBool(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSeparateForm_Validate(t *testing.T) {
	tests := []struct {
		name     string
		form     SeparateForm
		wantErrs int
		wantKeep bool
	}{
		{"empty form", SeparateForm{}, 0, false},
		{"keep", SeparateForm{KeepFile: "true", TaskID: "abc-123"}, 0, true},
		{"bad keep", SeparateForm{KeepFile: "sure"}, 1, false},
		{"slash in task id", SeparateForm{TaskID: "a/b"}, 1, false},
		{"long task id", SeparateForm{TaskID: strings.Repeat("x", 200)}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if len(errs) != tt.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
			if tt.form.Keep != tt.wantKeep {
				t.Errorf("Keep = %v, want %v", tt.form.Keep, tt.wantKeep)
			}
		})
	}
}

func TestDeleteRequest_Validate(t *testing.T) {
	if errs := (&DeleteRequest{File: "f.wav", Email: "a@x.io"}).Validate(); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
	if errs := (&DeleteRequest{}).Validate(); len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %v", errs)
	}
}

func TestJobResponse_NewJobResponse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := "decode failed"
	j := &domain.Separation{
		ID:        "job-1",
		Status:    domain.JobStatusFailed,
		Progress:  domain.ProgressFailed,
		InputName: "a.mp3",
		Error:     &msg,
		CreatedAt: now,
		UpdatedAt: now,
	}

	resp := NewJobResponse(j)
	if resp.Status != "failed" {
		t.Errorf("Status = %q, want failed", resp.Status)
	}
	if resp.Progress != -1 {
		t.Errorf("Progress = %d, want -1", resp.Progress)
	}
	if resp.Error != msg {
		t.Errorf("Error = %q, want %q", resp.Error, msg)
	}
	if resp.CreatedAt != "2024-05-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q", resp.CreatedAt)
	}
}

func TestJobResponse_NewJobResponse_NilError(t *testing.T) {
	resp := NewJobResponse(&domain.Separation{ID: "j", Status: domain.JobStatusRunning})
	if resp.Error != "" {
		t.Errorf("Expected empty error, got %q", resp.Error)
	}
}
