package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campwatch/campwatch/internal/local"
)

func TestCatalogSave(t *testing.T) {
	ctx := context.Background()
	repo := local.New(t.TempDir())

	c := &Catalog{
		RunID:         "run-1",
		Month:         "2025-08",
		StartTime:     time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2025, 8, 31, 12, 10, 0, 0, time.UTC),
		NumFacilities: 3,
		NumFetched:    2,
		NumSkipped:    1,
		Completed:     true,
	}

	require.NoError(t, c.Save(ctx, repo))

	bs, err := repo.Read(ctx, "catalog_2025-08.json")
	require.NoError(t, err)

	var got Catalog
	require.NoError(t, json.Unmarshal(bs, &got))
	assert.Equal(t, *c, got)
}
