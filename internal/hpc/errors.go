package hpc

import "strings"

// ValidationError carries the individual problems that made an input
// unacceptable. HTTP maps it to 422.
type ValidationError struct {
	Msg      string
	Problems []string
}

func NewValidationError(msg string, problems ...string) *ValidationError {
	return &ValidationError{Msg: msg, Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Problems, "; ")
}
