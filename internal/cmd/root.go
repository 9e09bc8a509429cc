package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campwatch/campwatch/internal"
	"github.com/campwatch/campwatch/internal/config"
	"github.com/campwatch/campwatch/internal/local"
	"github.com/campwatch/campwatch/internal/s3"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "campwatch",
		Short: "Campsite-availability ingestion pipeline for recreation.gov",
		Long: `campwatch fetches one month of campsite availability for a list of
facilities, persists each result durably, and merges everything into one
index keyed by facility ID.`,
	}

	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newBuildCSVCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger(c *config.Campwatch) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if level, err := zap.ParseAtomicLevel(c.Global.Logger.Level); err == nil {
		cfg.Level = level
	}
	logger, _ := cfg.Build()
	return logger
}

func newRepository(c *config.Campwatch, l *zap.Logger) (internal.Repository, error) {
	switch c.Repository.Type {
	case "local":
		return local.New(
			c.Repository.Local.Path,
			local.WithLogger(l),
		), nil
	case "s3":
		return s3.New(
			s3.WithLogger(l),
			s3.WithRegion(c.Repository.S3.Region),
			s3.WithBucket(c.Repository.S3.Bucket),
			s3.WithPrefix(c.Repository.S3.Prefix),
			s3.WithEndpoint(c.Repository.S3.Endpoint),
			s3.WithForcePathStyle(c.Repository.S3.ForcePathStyle),
		), nil
	default:
		return nil, fmt.Errorf("unknown repository type: %s", c.Repository.Type)
	}
}
