package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
)

func newWatchedStore(t *testing.T) (*filestore.Store, *StoreWatcher) {
	t.Helper()
	store := filestore.New(filepath.Join(t.TempDir(), "money_config.json"), logger.Nop())
	_, err := store.Load()
	require.NoError(t, err)

	sw, err := NewStoreWatcher(store, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(sw.Stop)
	return store, sw
}

func TestStoreWatcher_CheckClassifiesChanges(t *testing.T) {
	store, sw := newWatchedStore(t)
	sw.lastRev = sw.currentRevision()

	_, changed := sw.Check()
	assert.False(t, changed, "nothing changed since start")

	snap, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, snap.Config.ReplaceLinks("管理部", []domain.Link{{Name: "X", URL: "https://x"}}))
	_, err = store.Save(snap.Config)
	require.NoError(t, err)

	c, changed := sw.Check()
	require.True(t, changed)
	assert.Equal(t, ChangeOwn, c.Kind)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"departments": {}}`), 0o644))
	c, changed = sw.Check()
	require.True(t, changed)
	assert.Equal(t, ChangeExternal, c.Kind)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{not json`), 0o644))
	c, changed = sw.Check()
	require.True(t, changed)
	assert.Equal(t, ChangeCorrupt, c.Kind)
	assert.Error(t, c.Err)

	require.NoError(t, os.Remove(store.Path()))
	c, changed = sw.Check()
	require.True(t, changed)
	assert.Equal(t, ChangeRemoved, c.Kind)

	_, changed = sw.Check()
	assert.False(t, changed, "removal is reported once")
}

func TestStoreWatcher_ReportsExternalEdit(t *testing.T) {
	store, sw := newWatchedStore(t)

	changes := make(chan Change, 4)
	sw.OnChange = func(c Change) { changes <- c }
	sw.debounce = 10 * time.Millisecond

	require.NoError(t, sw.Start(context.Background()))

	tmp := filepath.Join(filepath.Dir(store.Path()), "edit.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"departments": {}}`), 0o644))
	require.NoError(t, os.Rename(tmp, store.Path()))

	select {
	case c := <-changes:
		assert.Equal(t, ChangeExternal, c.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestStoreWatcher_StopWithoutStart(t *testing.T) {
	_, sw := newWatchedStore(t)
	sw.Stop()
}
