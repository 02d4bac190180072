package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/postgres"
)

func TestExitCodeForError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitSuccess},
		{"config", &config.Error{Fields: []string{"nasr_db.password"}, Err: errors.New("is required")}, ExitConfigError},
		{"wrapped config", fmt.Errorf("load: %w", &config.Error{Err: errors.New("bad")}), ExitConfigError},
		{"connection", fmt.Errorf("%w: refused", postgres.ErrConnection), ExitConnectionError},
		{"other", errors.New("boom"), ExitGeneralError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExitCodeForError(tc.err))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"load", "config"}, names)
}
