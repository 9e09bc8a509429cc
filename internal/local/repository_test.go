package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestRepositoryWriteRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := New(dir)

	err := r.Write(ctx, "avail_1.json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)

	bs, err := r.Read(ctx, "avail_1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(bs))
}

func TestRepositoryWriteIsAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := New(dir)

	err := r.Write(ctx, "avail_1.json", &failingReader{data: `{"part`})
	require.Error(t, err)

	// The final key must not exist, and no temp debris is left behind.
	_, statErr := os.Stat(filepath.Join(dir, "avail_1.json"))
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepositoryExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := New(dir)

	t.Run("absent key", func(t *testing.T) {
		ok, err := r.Exists(ctx, "avail_1.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty file is treated as absent", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "avail_2.json"), nil, 0644))
		ok, err := r.Exists(ctx, "avail_2.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-empty file", func(t *testing.T) {
		require.NoError(t, r.Write(ctx, "avail_3.json", strings.NewReader("{}")))
		ok, err := r.Exists(ctx, "avail_3.json")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestRepositoryList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := New(dir)

	t.Run("missing directory lists empty", func(t *testing.T) {
		keys, err := New(filepath.Join(dir, "nope")).List(ctx, "avail_")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	require.NoError(t, r.Write(ctx, "avail_2.json", strings.NewReader("{}")))
	require.NoError(t, r.Write(ctx, "avail_10.json", strings.NewReader("{}")))
	require.NoError(t, r.Write(ctx, "all_avail_2025-08.json", strings.NewReader("{}")))

	keys, err := r.List(ctx, "avail_")
	require.NoError(t, err)
	assert.Equal(t, []string{"avail_10.json", "avail_2.json"}, keys)
}

func TestRepositoryPrefix(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := New(dir, WithPrefix("2025-08"))

	require.NoError(t, r.Write(ctx, "avail_1.json", strings.NewReader("{}")))

	_, err := os.Stat(filepath.Join(dir, "2025-08", "avail_1.json"))
	assert.NoError(t, err)
}
