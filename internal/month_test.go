package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMonth(t *testing.T) {
	t.Run("valid month", func(t *testing.T) {
		m, err := ParseMonth("2025-08")
		assert.NoError(t, err)
		assert.Equal(t, "2025-08", m.String())
		assert.Equal(t, "2025-08-01T00:00:00.000Z", m.Start())
		assert.Equal(t, "all_avail_2025-08.json", m.IndexKey())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{"", "2025", "2025-13", "08-2025", "2025-08-01", "next month"} {
			_, err := ParseMonth(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestArtifactKeys(t *testing.T) {
	assert.Equal(t, "avail_232450.json", ArtifactKey("232450"))

	id, ok := FacilityIDFromKey("avail_232450.json")
	assert.True(t, ok)
	assert.Equal(t, "232450", id)

	for _, key := range []string{"all_avail_2025-08.json", "avail_.json", "catalog_2025-08.json", "avail_123.txt"} {
		_, ok := FacilityIDFromKey(key)
		assert.False(t, ok, "key %q", key)
	}
}
