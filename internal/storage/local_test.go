package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/")
	require.NoError(t, err)
	return store, dir
}

func TestLocalStore_SaveAndRemove(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	stored, err := store.Save(ctx, strings.NewReader("audio-bytes"), KindMusic, "song.MP3")
	require.NoError(t, err)

	assert.Equal(t, int64(len("audio-bytes")), stored.Size)
	assert.True(t, strings.HasPrefix(stored.URL, "http://localhost:8080/uploads/music/"), stored.URL)
	assert.True(t, strings.HasSuffix(stored.URL, ".mp3"), "extension is lowercased: %s", stored.URL)

	name := stored.URL[strings.LastIndex(stored.URL, "/")+1:]
	onDisk := filepath.Join(dir, "music", name)
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))

	require.NoError(t, store.Remove(ctx, stored.URL))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	require.NoError(t, store.Remove(ctx, stored.URL))
}

func TestLocalStore_RandomizedNames(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, strings.NewReader("a"), KindImage, "avatar.png")
	require.NoError(t, err)
	second, err := store.Save(ctx, strings.NewReader("b"), KindImage, "avatar.png")
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
	assert.NotContains(t, first.URL, "avatar", "original name must not leak into the URL")
}

func TestLocalStore_RejectsExtensions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		kind Kind
		name string
	}{
		{KindMusic, "script.exe"},
		{KindMusic, "image.png"},
		{KindImage, "song.mp3"},
		{KindImage, "noextension"},
	}
	for _, tc := range cases {
		_, err := store.Save(ctx, strings.NewReader("x"), tc.kind, tc.name)
		assert.Error(t, err, "%s as %s", tc.name, tc.kind)
	}
}

func TestLocalStore_RemoveGuards(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	secret := filepath.Join(dir, "..", "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep"), 0o600))

	err := store.Remove(ctx, "http://localhost:8080/uploads/music/../../secret.txt")
	require.NoError(t, err, "cleaned path resolves inside the store and simply does not exist")
	_, statErr := os.Stat(secret)
	assert.NoError(t, statErr, "file outside the store must survive")

	err = store.Remove(ctx, "http://evil.example.com/uploads/music/x.mp3")
	assert.ErrorIs(t, err, ErrOutsideStore)
}
