package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campwatch/campwatch/internal"
	"github.com/campwatch/campwatch/internal/config"
	"github.com/campwatch/campwatch/internal/facility"
	"github.com/campwatch/campwatch/internal/fetcher"
	"github.com/campwatch/campwatch/internal/merger"
)

// run is the thin driver composing the two pipeline stages: fetch
// everything, then rebuild the merged index from whatever artifacts exist.
func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run <YYYY-MM>",
		Short: "Fetches availability and merges it into the monthly index",
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
			l := logger.Named("campwatch.run")

			repo, err := newRepository(c, l)
			if err != nil {
				return err
			}

			ids, err := facility.NewSource(
				c.Fetcher.FacilitiesCSV,
				facility.WithLogger(l),
			).IDs()
			if err != nil {
				return err
			}

			f := fetcher.New(
				fetcher.WithLogger(l),
				fetcher.WithRepository(repo),
				fetcher.WithClient(fetcher.NewClient(c.Fetcher.BaseURL, c.Fetcher.Timeout.Std())),
				fetcher.WithLimiter(fetcher.NewIntervalLimiter(c.Fetcher.Interval.Std())),
				fetcher.WithWorkers(c.Fetcher.Workers),
				fetcher.WithFailurePolicy(fetcher.FailurePolicy(c.Fetcher.OnFailure)),
				fetcher.WithMaxRetries(c.Fetcher.MaxRetries),
			)

			if _, err := f.FetchAll(cmd.Context(), ids, month); err != nil {
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

			l.Info("pipeline finished",
				zap.String("month", month.String()),
				zap.String("index", stats.Key),
				zap.Int("facilities", stats.NumMerged),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
