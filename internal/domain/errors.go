package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode means the input could not be read as audio.
	ErrDecode = errors.New("audio decode failed")
	// ErrModelOutput means the model returned fewer than four stems.
	ErrModelOutput = errors.New("unexpected model output")
	ErrIO          = errors.New("file i/o failed")
	// ErrRemoteService covers fingerprinting and lookup failures.
	ErrRemoteService = errors.New("remote service failed")
	ErrNotFound      = errors.New("not found")
	// ErrTaskInUse means a live job already owns the task id.
	ErrTaskInUse       = errors.New("task id already in use")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrBusy            = errors.New("separation pool closed")
)

// SeparationError reports a failed separation task.
type SeparationError struct {
	Err    error
	TaskID string
}

func (e *SeparationError) Error() string {
	return fmt.Sprintf("separation %s: %v", e.TaskID, e.Err)
}

func (e *SeparationError) Unwrap() error {
	return e.Err
}
