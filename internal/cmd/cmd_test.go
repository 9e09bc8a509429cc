package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, baseURL, csvPath string) string {
	t.Helper()

	cfg := fmt.Sprintf(`
fetcher:
  base_url: %q
  interval: 1ms
  timeout: 5s
  facilities_csv: %q

repository:
  type: local
  local:
    path: %q
`, baseURL, csvPath, filepath.Join(dir, "artifacts"))

	path := filepath.Join(dir, "campwatch.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestFetchCommandUsageErrors(t *testing.T) {
	t.Run("missing month", func(t *testing.T) {
		cmd := newFetchCommand()
		cmd.SetArgs([]string{})
		assert.Error(t, cmd.Execute())
	})

	t.Run("malformed month", func(t *testing.T) {
		cmd := newFetchCommand()
		cmd.SetArgs([]string{"august-2025"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM")
	})

	t.Run("extra arguments", func(t *testing.T) {
		cmd := newFetchCommand()
		cmd.SetArgs([]string{"2025-08", "2025-09"})
		assert.Error(t, cmd.Execute())
	})
}

func TestMergeCommandEmptyStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "http://unused.invalid", filepath.Join(dir, "download.csv"))

	cmd := newMergeCommand()
	cmd.SetArgs([]string{"2025-08", "--config", configPath})
	require.NoError(t, cmd.ExecuteContext(ctx))

	out, err := os.ReadFile(filepath.Join(dir, "artifacts", "all_avail_2025-08.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestRunCommandPipeline(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
	}))
	defer server.Close()

	csvPath := filepath.Join(dir, "download.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("FacilityID,FacilityName\n1,One\n2,Two\n"), 0644))

	configPath := writeConfig(t, dir, server.URL, csvPath)

	cmd := newRunCommand()
	cmd.SetArgs([]string{"2025-08", "--config", configPath})
	require.NoError(t, cmd.ExecuteContext(ctx))

	out, err := os.ReadFile(filepath.Join(dir, "artifacts", "all_avail_2025-08.json"))
	require.NoError(t, err)

	var merged map[string]map[string]string
	require.NoError(t, json.Unmarshal(out, &merged))
	require.Len(t, merged, 2)
	assert.Equal(t, "/api/camps/availability/campground/1/month", merged["1"]["path"])
	assert.Equal(t, "/api/camps/availability/campground/2/month", merged["2"]["path"])
}
