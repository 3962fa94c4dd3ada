package dto

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const maxTaskIDLength = 128

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ParseFormBool accepts the spellings HTML forms and JS clients send.
// An empty value is false.
func ParseFormBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return false, nil
	case "yes", "on", "y":
		return true, nil
	case "no", "off", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(v))
}

func validateTaskID(id string) []ValidationError {
	var errs []ValidationError
	if len(id) > maxTaskIDLength {
		errs = append(errs, ValidationError{Field: "task_id", Message: fmt.Sprintf("must be at most %d characters", maxTaskIDLength)})
	}
	if strings.ContainsFunc(id, func(r rune) bool { return unicode.IsControl(r) || r == '/' }) {
		errs = append(errs, ValidationError{Field: "task_id", Message: "must not contain '/' or control characters"})
	}
	return errs
}

func validateRequired(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{Field: field, Message: "is required"}}
	}
	return nil
}
