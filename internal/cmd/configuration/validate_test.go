package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/nasr-loader/internal/config"
)

func TestValidateCommand(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		invalid bool
	}{
		{"valid", "../load/testdata/config.yml", false},
		{"missing password", "../load/testdata/malformed.yml", true},
		{"unknown load order file", "../load/testdata/missing_file.yml", true},
		{"missing file", "testdata/nope.yml", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewCommand()
			cmd.SetArgs([]string{"validate", "-c", tc.path})

			err := cmd.Execute()
			if !tc.invalid {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
