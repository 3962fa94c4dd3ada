package domain

import (
	"strings"
	"time"

	"github.com/cesargomez89/strume/internal/constants"
)

// Progress is the percent-complete signal of a separation task.
// -1 means failed, 100 means complete.
type Progress int

const (
	ProgressNotStarted Progress = 0
	ProgressLoaded     Progress = constants.ProgressLoaded
	ProgressDecoded    Progress = constants.ProgressDecoded
	ProgressSeparated  Progress = constants.ProgressSeparated
	ProgressSaved      Progress = constants.ProgressSaved
	ProgressComplete   Progress = constants.ProgressComplete
	ProgressFailed     Progress = constants.ProgressFailed
)

// Terminal reports whether no further progress can follow.
func (p Progress) Terminal() bool {
	return p == ProgressComplete || p == ProgressFailed
}

// FileRecord describes one kept instrumental in an owner's library.
type FileRecord struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Genre    string `json:"genre"`
}

// Normalize replaces blank descriptive fields with "Unknown".
func (r *FileRecord) Normalize() {
	r.Title = orUnknown(r.Title)
	r.Artist = orUnknown(r.Artist)
	r.Genre = orUnknown(r.Genre)
}

// TrackInfo is the result of metadata detection.
type TrackInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
}

// Normalize replaces blank fields with "Unknown".
func (t *TrackInfo) Normalize() {
	t.Title = orUnknown(t.Title)
	t.Artist = orUnknown(t.Artist)
	t.Genre = orUnknown(t.Genre)
}

// UnknownTrack is returned when nothing matched.
func UnknownTrack() TrackInfo {
	return TrackInfo{
		Title:  constants.UnknownValue,
		Artist: constants.UnknownValue,
		Genre:  constants.UnknownValue,
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return constants.UnknownValue
	}
	return s
}

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Separation is the persisted history of one separation request.
type Separation struct {
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	Error      *string   `json:"error,omitempty" db:"error"`
	ID         string    `json:"id" db:"id"`
	Status     JobStatus `json:"status" db:"status"`
	InputName  string    `json:"input_name" db:"input_name"`
	OutputName string    `json:"output_name" db:"output_name"`
	StoredName string    `json:"stored_name,omitempty" db:"stored_name"`
	Owner      string    `json:"owner,omitempty" db:"owner"`
	Progress   Progress  `json:"progress" db:"progress"`
}
