package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileSessionStore(path)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated())

	require.NoError(t, store.Save(Session{Token: "tok", Email: "a@b.com"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sess, err = NewFileSessionStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "tok", Email: "a@b.com"}, sess)
	assert.True(t, sess.IsAuthenticated())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	sess, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestFileSessionStoreIgnoresPartialSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"tok"}`), 0o600))

	sess, err := NewFileSessionStore(path).Load()
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated())
}

func TestFileSessionStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := NewFileSessionStore(path).Load()
	assert.Error(t, err)
}
