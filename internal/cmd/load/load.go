package load

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/loader"
	"github.com/turbolytics/nasr-loader/internal/logging"
)

// sink is the connected database a load appends to.
type sink interface {
	internal.Sink
	Close(ctx context.Context) error
}

type connectFunc func(ctx context.Context, c *config.Configuration, l *zap.Logger) (sink, error)

func connect(ctx context.Context, c *config.Configuration, l *zap.Logger) (sink, error) {
	s, err := config.InitializeSink(ctx, c, l)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func NewCommand() *cobra.Command {
	return newCommand(connect)
}

func newCommand(connect connectFunc) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "load",
		Short:        "Loads the dictionary tables and every NASR data file into the database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := logging.Setup(
				v.GetString("log_dir"),
				logging.WithMaxSize(v.GetInt("log_max_size")),
			)
			if err != nil {
				return err
			}
			defer closeLog()

			l := logger.Named("nasr.load").With(zap.String("run_id", uuid.NewString()))
			l.Info("starting load", zap.String("config", v.GetString("config")))

			c, err := config.NewConfigurationFromFile(
				v.GetString("config"),
				config.WithDBPassword(v.GetString("db_password")),
			)
			if err != nil {
				l.Error("loading config", zap.Error(err))
				return err
			}

			// a bad load order must fail before anything is inserted
			if _, err := loader.Plan(c); err != nil {
				l.Error("planning load", zap.Error(err))
				return err
			}

			source, err := config.InitializeSource(c, l)
			if err != nil {
				l.Error("initializing data source", zap.Error(err))
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := connect(ctx, c, l)
			if err != nil {
				l.Error("connecting to database", zap.Error(err))
				return err
			}
			defer db.Close(ctx)

			return loader.NewOrchestrator(c, source, db, l).Run(ctx)
		},
	}

	cmd.Flags().StringP("config", "c", "config.yaml", "Path to config file")
	cmd.Flags().String("log-dir", "logs", "Directory for log.txt and its rotated backups")
	cmd.Flags().Int("log-max-size", logging.DefaultMaxSize, "Size in megabytes at which log.txt is rotated")
	cmd.Flags().String("db-password", "", "Overrides nasr_db.password")

	v.BindPFlag("config", cmd.Flags().Lookup("config"))
	v.BindPFlag("log_dir", cmd.Flags().Lookup("log-dir"))
	v.BindPFlag("log_max_size", cmd.Flags().Lookup("log-max-size"))
	v.BindPFlag("db_password", cmd.Flags().Lookup("db-password"))
	v.SetEnvPrefix("NASR")
	v.AutomaticEnv()

	return cmd
}
