package dto

import "strings"

// SeparateForm is the non-file part of a POST /separate upload.
type SeparateForm struct {
	TaskID   string
	KeepFile string
	Email    string
	Title    string
	Artist   string
	Genre    string
	Keep     bool
}

// Validate parses KeepFile into Keep and checks the task id.
func (f *SeparateForm) Validate() []ValidationError {
	var errs []ValidationError
	f.TaskID = strings.TrimSpace(f.TaskID)
	errs = append(errs, validateTaskID(f.TaskID)...)

	keep, err := ParseFormBool(f.KeepFile)
	if err != nil {
		errs = append(errs, ValidationError{Field: "keep_file", Message: "must be a boolean"})
	}
	f.Keep = keep
	return errs
}

// DeleteRequest is the JSON body of DELETE /delete.
type DeleteRequest struct {
	File  string `json:"file"`
	Email string `json:"email"`
}

func (r *DeleteRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRequired("file", r.File)...)
	errs = append(errs, validateRequired("email", r.Email)...)
	return errs
}
