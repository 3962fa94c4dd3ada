package constants

import (
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	if DefaultPort != "8000" {
		t.Errorf("Expected DefaultPort to be '8000', got '%s'", DefaultPort)
	}

	if DefaultDBPath != "strume.db" {
		t.Errorf("Expected DefaultDBPath to be 'strume.db', got '%s'", DefaultDBPath)
	}

	if DefaultStoredFormat != FormatWAV {
		t.Errorf("Expected DefaultStoredFormat to be '%s', got '%s'", FormatWAV, DefaultStoredFormat)
	}

	if DefaultDemucsModel != "htdemucs" {
		t.Errorf("Expected DefaultDemucsModel to be 'htdemucs', got '%s'", DefaultDemucsModel)
	}
}

func TestProgressCheckpoints(t *testing.T) {
	checkpoints := []int{
		ProgressLoaded,
		ProgressDecoded,
		ProgressSeparated,
		ProgressSaved,
		ProgressComplete,
	}

	for i := 1; i < len(checkpoints); i++ {
		if checkpoints[i] <= checkpoints[i-1] {
			t.Errorf("Checkpoint %d (%d) is not after %d", i, checkpoints[i], checkpoints[i-1])
		}
	}

	if ProgressFailed != -1 {
		t.Errorf("Expected ProgressFailed to be -1, got %d", ProgressFailed)
	}
}

func TestFormats(t *testing.T) {
	formats := []string{FormatWAV, FormatFLAC, FormatMP3}

	for _, f := range formats {
		if f == "" {
			t.Error("Format constant should not be empty")
		}
	}
}

func TestTimeouts(t *testing.T) {
	if DefaultPollInterval != 500*time.Millisecond {
		t.Errorf("Expected DefaultPollInterval to be 500ms, got %v", DefaultPollInterval)
	}

	if DefaultRetryBase != 1*time.Second {
		t.Errorf("Expected DefaultRetryBase to be 1 second, got %v", DefaultRetryBase)
	}
}

func TestConcurrency(t *testing.T) {
	if DefaultConcurrency != 1 {
		t.Errorf("Expected DefaultConcurrency to be 1, got %d", DefaultConcurrency)
	}
}
