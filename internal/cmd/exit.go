package cmd

import (
	"errors"

	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/postgres"
)

// Exit codes. Tables that fail to load never change the exit code.
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitConfigError     = 10
	ExitConnectionError = 11
)

// ExitCodeForError returns ExitSuccess for nil, a semantic code for known
// errors and ExitGeneralError otherwise.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, postgres.ErrConnection):
		return ExitConnectionError
	}
	return ExitGeneralError
}
