package cmd

import (
	"github.com/spf13/cobra"

	"github.com/turbolytics/nasr-loader/internal/cmd/configuration"
	"github.com/turbolytics/nasr-loader/internal/cmd/load"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "nasr",
		Short: "Loads NASR CSV distributions into PostgreSQL/PostGIS",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(load.NewCommand())
	cmd.AddCommand(configuration.NewCommand())

	return cmd
}

// Execute runs the root command and returns the process exit code.
// This is called by main.main().
func Execute() int {
	cmd := NewRootCommand()
	return ExitCodeForError(cmd.Execute())
}
