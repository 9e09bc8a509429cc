package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	artifactPrefix = "avail_"
	artifactSuffix = ".json"
)

// Month is a calendar month in YYYY-MM form.
type Month struct {
	t time.Time
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return Month{t: t}, nil
}

func (m Month) String() string {
	return m.t.Format("2006-01")
}

// Start is the start-of-month timestamp the availability endpoint expects.
func (m Month) Start() string {
	return m.t.Format("2006-01-02T15:04:05.000Z")
}

// IndexKey is the well-known key of the merged index for this month.
func (m Month) IndexKey() string {
	return fmt.Sprintf("all_avail_%s.json", m)
}

// ArtifactKey names the durable artifact for one facility.
func ArtifactKey(facilityID string) string {
	return artifactPrefix + facilityID + artifactSuffix
}

// FacilityIDFromKey recovers the facility ID from an artifact key. The
// second return is false for keys that are not fetch artifacts.
func FacilityIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, artifactPrefix) || !strings.HasSuffix(key, artifactSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, artifactPrefix), artifactSuffix)
	if id == "" {
		return "", false
	}
	return id, true
}

// ArtifactPrefix is the List prefix selecting all fetch artifacts.
func ArtifactPrefix() string {
	return artifactPrefix
}
