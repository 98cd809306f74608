package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nopaper", credentialsFile), zap.NewNop())
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := tempStore(t)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, creds)
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	store := tempStore(t)
	want := Credentials{Email: "reader@example.com", Token: "tok-abc", Role: "user"}

	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Credentials are private to the user.
	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_LoadCorruptFile(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	// Corruption reads as logged out, never as an error.
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, creds)
}

func TestStore_Clear(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(Credentials{Email: "reader@example.com", Token: "t", Role: "user"}))

	require.NoError(t, store.Clear())
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func waitForSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("no watch event within 3s")
	}
}

func TestStore_Watch(t *testing.T) {
	store := tempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(Credentials{Email: "reader@example.com", Token: "t1", Role: "user"}))
	waitForSignal(t, events)

	// Drain any coalesced signal before the next mutation.
	select {
	case <-events:
	default:
	}

	require.NoError(t, store.Clear())
	waitForSignal(t, events)

	// Other files in the directory do not signal.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(store.Path()), "unrelated.txt"), []byte("x"), 0o600))
	select {
	case <-events:
		t.Fatal("unrelated file change must not signal")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}
