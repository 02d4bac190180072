package configuration

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/loader"
)

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Loads and validates a config file without touching the database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("nasr.config.validate")

			c, err := config.NewConfigurationFromFile(configPath)
			if err != nil {
				l.Error("invalid config", zap.Error(err))
				return err
			}

			plan, err := loader.Plan(c)
			if err != nil {
				l.Error("invalid load order", zap.Error(err))
				return err
			}

			files := make([]string, 0, len(plan))
			for _, s := range plan {
				files = append(files, s.FileName)
			}

			l.Info("config valid",
				zap.String("path", configPath),
				zap.String("data_dir", c.DataDir),
				zap.Int("dict_tables", len(c.DictTables)),
				zap.Strings("load_order", files),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	return cmd
}
