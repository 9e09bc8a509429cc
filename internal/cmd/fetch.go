package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campwatch/campwatch/internal"
	"github.com/campwatch/campwatch/internal/config"
	"github.com/campwatch/campwatch/internal/facility"
	"github.com/campwatch/campwatch/internal/fetcher"
)

func newFetchCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "fetch <YYYY-MM>",
		Short: "Fetches one month of availability for every facility in the input list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Month is validated before any I/O happens.
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
			l := logger.Named("campwatch.fetch")

			repo, err := newRepository(c, l)
			if err != nil {
				return err
			}

			source := facility.NewSource(
				c.Fetcher.FacilitiesCSV,
				facility.WithLogger(l),
			)

			ids, err := source.IDs()
			if err != nil {
				return err
			}

			l.Info("facility list loaded",
				zap.String("path", c.Fetcher.FacilitiesCSV),
				zap.Int("count", len(ids)),
			)

			f := fetcher.New(
				fetcher.WithLogger(l),
				fetcher.WithRepository(repo),
				fetcher.WithClient(fetcher.NewClient(c.Fetcher.BaseURL, c.Fetcher.Timeout.Std())),
				fetcher.WithLimiter(fetcher.NewIntervalLimiter(c.Fetcher.Interval.Std())),
				fetcher.WithWorkers(c.Fetcher.Workers),
				fetcher.WithFailurePolicy(fetcher.FailurePolicy(c.Fetcher.OnFailure)),
				fetcher.WithMaxRetries(c.Fetcher.MaxRetries),
			)

			cat, err := f.FetchAll(cmd.Context(), ids, month)
			if cat != nil {
				l.Info("fetch run finished",
					zap.String("run_id", cat.RunID),
					zap.Int("fetched", cat.NumFetched),
					zap.Int("skipped", cat.NumSkipped),
					zap.Int("failed", cat.NumFailed),
					zap.Bool("completed", cat.Completed),
				)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
