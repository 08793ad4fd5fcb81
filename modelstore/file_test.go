package modelstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelName(t *testing.T) {
	assert.Equal(t, "trained_model_20241106", ModelName(time.Date(2024, 11, 6, 23, 0, 0, 0, time.UTC)))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "models")
	s, err := NewFileStore(dir, CodecS2)
	require.Nil(t, err)

	_, _, err = s.Latest(ctx)
	assert.ErrorIs(t, err, ErrModelNotFound)
	_, err = s.Load(ctx, "trained_model_20240101")
	assert.ErrorIs(t, err, ErrModelNotFound)

	b, _ := newTestBundle(t)
	require.Nil(t, s.Save(ctx, "trained_model_20241106", b))
	require.Nil(t, s.Save(ctx, "trained_model_20241201", b))
	require.Nil(t, s.Save(ctx, "trained_model_20240930", b))

	// stray files are ignored
	require.Nil(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	names, err := s.List(ctx)
	require.Nil(t, err)
	assert.Equal(t, []string{"trained_model_20240930", "trained_model_20241106", "trained_model_20241201"}, names)

	name, latest, err := s.Latest(ctx)
	require.Nil(t, err)
	assert.Equal(t, "trained_model_20241201", name)
	assert.Equal(t, b, latest)

	loaded, err := s.Load(ctx, "trained_model_20241106")
	require.Nil(t, err)
	assert.Equal(t, b, loaded)

	fromFile, err := LoadFile(s.Path("trained_model_20241106"))
	require.Nil(t, err)
	assert.Equal(t, b, fromFile)

	// overwrite keeps a single file
	require.Nil(t, s.Save(ctx, "trained_model_20241106", b))
	entries, err := os.ReadDir(dir)
	require.Nil(t, err)
	assert.Len(t, entries, 4)
}

func TestFileStoreErrors(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), CodecNone)
	require.Nil(t, err)
	b, _ := newTestBundle(t)

	testData := map[string]struct {
		name string
	}{
		"empty":     {""},
		"traversal": {"../model"},
		"separator": {"a/b"},
		"hidden":    {".model"},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(ctx, td.name, b), ErrInvalidName)
			_, err := s.Load(ctx, td.name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}

	require.Nil(t, os.WriteFile(s.Path("broken"), []byte("SFM1\x00checksumpayload"), 0o644))
	_, err = s.Load(ctx, "broken")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Save(cancelled, "model", b), context.Canceled)

	_, err = NewFileStore(t.TempDir(), CodecType(42))
	assert.ErrorIs(t, err, ErrUnknownCodec)
}
