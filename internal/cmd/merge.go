package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campwatch/campwatch/internal"
	"github.com/campwatch/campwatch/internal/config"
	"github.com/campwatch/campwatch/internal/merger"
)

func newMergeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "merge <YYYY-MM>",
		Short: "Merges all fetched artifacts into one availability index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := internal.ParseMonth(args[0])
			if err != nil {
				return err
			}

			c, err := config.NewCampwatchFromFile(configPath)
			if err != nil {
				return err
			}

			logger := newLogger(c)
			defer logger.Sync()
			l := logger.Named("campwatch.merge")

			repo, err := newRepository(c, l)
			if err != nil {
				return err
			}

			m := merger.New(
				merger.WithLogger(l),
				merger.WithRepository(repo),
			)

			stats, err := m.MergeAll(cmd.Context(), month)
			if err != nil {
				return err
			}

			l.Info("merge finished",
				zap.String("key", stats.Key),
				zap.Int("merged", stats.NumMerged),
				zap.Int("skipped", stats.NumSkipped),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
