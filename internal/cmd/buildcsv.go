package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/campwatch/campwatch/internal/config"
	"github.com/campwatch/campwatch/internal/ridb"
)

func newBuildCSVCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "build-csv",
		Short: "Builds the facility input list from the RIDB full export",
		Long: `Downloads the RIDB full CSV export (cached once on disk), keeps
reservable campgrounds within the given distance of a center point, and
writes them to download.csv sorted nearest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.NewCampwatchFromFile(configPath)
			if err != nil {
				return err
			}

			logger := newLogger(c)
			defer logger.Sync()
			l := logger.Named("campwatch.build-csv")

			distance := viper.GetFloat64("distance")
			location := viper.GetString("location")

			lat, lon := ridb.DefaultLatitude, ridb.DefaultLongitude
			if location != "" {
				lat, lon, err = ridb.Geocode(cmd.Context(), location)
				if err != nil {
					return err
				}
				l.Info("geocoded location",
					zap.String("location", location),
					zap.Float64("lat", lat),
					zap.Float64("lon", lon),
				)
			}

			opts := []ridb.Option{
				ridb.WithLogger(l),
				ridb.WithCenter(lat, lon),
				ridb.WithMaxDistance(distance),
			}
			if c.RIDB.ExportURL != "" {
				opts = append(opts, ridb.WithExportURL(c.RIDB.ExportURL))
			}
			if c.RIDB.ZipPath != "" {
				opts = append(opts, ridb.WithZipPath(c.RIDB.ZipPath))
			}
			if c.RIDB.OutputCSV != "" {
				opts = append(opts, ridb.WithOutputCSV(c.RIDB.OutputCSV))
			}

			return ridb.NewBuilder(opts...).Build(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.PersistentFlags().Float64P("distance", "d", ridb.DefaultDistance, "Maximum distance in miles from the center point")
	cmd.PersistentFlags().StringP("location", "l", "", "Location to search around instead of San Francisco")
	viper.BindPFlag("distance", cmd.PersistentFlags().Lookup("distance"))
	viper.BindPFlag("location", cmd.PersistentFlags().Lookup("location"))
	viper.AutomaticEnv()
	viper.SetEnvPrefix("CAMPWATCH")

	return cmd
}
