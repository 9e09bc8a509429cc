package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCampwatchFromFile(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		c, err := NewCampwatchFromFile("")
		require.NoError(t, err)
		assert.Equal(t, "local", c.Repository.Type)
		assert.Equal(t, 600*time.Millisecond, c.Fetcher.Interval.Std())
		assert.Equal(t, "abort", c.Fetcher.OnFailure)
		assert.Equal(t, 1, c.Fetcher.Workers)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		raw := `
global:
  logger:
    level: debug

fetcher:
  interval: 250ms
  workers: 4
  on_failure: retry
  max_retries: 5

repository:
  type: s3
  s3:
    bucket: campwatch
    region: us-west-2
    prefix: availability
`
		path := filepath.Join(t.TempDir(), "campwatch.yml")
		require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

		c, err := NewCampwatchFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", c.Global.Logger.Level)
		assert.Equal(t, 250*time.Millisecond, c.Fetcher.Interval.Std())
		assert.Equal(t, 4, c.Fetcher.Workers)
		assert.Equal(t, "retry", c.Fetcher.OnFailure)
		assert.Equal(t, 5, c.Fetcher.MaxRetries)
		assert.Equal(t, "s3", c.Repository.Type)
		assert.Equal(t, "campwatch", c.Repository.S3.Bucket)

		// untouched defaults survive
		assert.Equal(t, "https://www.recreation.gov", c.Fetcher.BaseURL)
		assert.Equal(t, "download.csv", c.Fetcher.FacilitiesCSV)
	})

	t.Run("rejects unknown repository type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "campwatch.yml")
		require.NoError(t, os.WriteFile(path, []byte("repository:\n  type: gcs\n"), 0644))

		_, err := NewCampwatchFromFile(path)
		assert.Error(t, err)
	})

	t.Run("rejects unknown failure policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "campwatch.yml")
		require.NoError(t, os.WriteFile(path, []byte("fetcher:\n  on_failure: shrug\n"), 0644))

		_, err := NewCampwatchFromFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewCampwatchFromFile(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}
