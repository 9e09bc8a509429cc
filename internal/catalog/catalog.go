package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campwatch/campwatch/internal"
)

/*
The catalog is a record of one fetch run. It is a primitive for verifying,
inventorying and auditing what the pipeline has already done.
*/

// Catalog summarizes a fetch run over one month.
type Catalog struct {
	RunID         string    `json:"run_id"`
	Month         string    `json:"month"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	NumFacilities int       `json:"num_facilities"`
	NumFetched    int       `json:"num_fetched"`
	NumSkipped    int       `json:"num_skipped"`
	NumFailed     int       `json:"num_failed"`
	FailedIDs     []string  `json:"failed_ids,omitempty"`
	Completed     bool      `json:"completed"`
}

func (c *Catalog) Key() string {
	return fmt.Sprintf("catalog_%s.json", c.Month)
}

// Save persists the catalog next to the artifacts it describes.
func (c *Catalog) Save(ctx context.Context, repo internal.Repository) error {
	bs, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return repo.Write(ctx, c.Key(), bytes.NewReader(bs))
}
