package facility

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadIDs(t *testing.T) {
	t.Run("skips the header row", func(t *testing.T) {
		csv := "FacilityID,FacilityName\n232450,Kirby Cove\n232447,Bicentennial\n"
		ids, err := ReadIDs(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, []string{"232450", "232447"}, ids)
	})

	t.Run("drops blank and whitespace entries", func(t *testing.T) {
		csv := "FacilityID\n232450\n\n   \n232447\n"
		ids, err := ReadIDs(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, []string{"232450", "232447"}, ids)
	})

	t.Run("deduplicates preserving first occurrence", func(t *testing.T) {
		csv := "FacilityID\n232450\n232447\n232450\n"
		ids, err := ReadIDs(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, []string{"232450", "232447"}, ids)
	})

	t.Run("header-only file yields no IDs", func(t *testing.T) {
		ids, err := ReadIDs(strings.NewReader("FacilityID,FacilityName\n"))
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
