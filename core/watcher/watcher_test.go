package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/tsmock/core/cache"
	"go.uber.org/goleak"
)

func TestShouldExcludePath(t *testing.T) {
	fw, err := NewFileWatcher("/repo", []string{"node_modules", "dist/out"}, []string{".ts"}, time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	assert.True(t, fw.shouldExcludePath("/repo/.git/HEAD"))
	assert.True(t, fw.shouldExcludePath("/repo/node_modules/x/index.ts"))
	assert.True(t, fw.shouldExcludePath("/repo/domain/node_modules/x.ts"))
	assert.True(t, fw.shouldExcludePath("/repo/dist/out/a.ts"))
	assert.False(t, fw.shouldExcludePath("/repo/domain/dist/a.ts"))
	assert.False(t, fw.shouldExcludePath("/repo/domain/foo.ts"))
}

func TestWatchDebouncesAndSkipsCompanions(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	domain := filepath.Join(dir, "domain")
	require.NoError(t, os.MkdirAll(domain, 0o755))

	fw, err := NewFileWatcher(dir, nil, []string{".ts"}, 50*time.Millisecond)
	require.NoError(t, err)
	fw.Cache = cache.NewContentCache(afero.NewOsFs())

	var mu sync.Mutex
	var changed []string
	got := make(chan struct{}, 8)
	fw.FileWatcher.AddOnChangeFunc(func(path string) error {
		mu.Lock()
		changed = append(changed, path)
		mu.Unlock()
		got <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	started := make(chan struct{})
	fw.FileWatcher.AddOnStartFunc(func() error {
		close(started)
		return nil
	})
	go func() { done <- fw.Watch(ctx) }()
	<-started

	source := filepath.Join(domain, "foo.ts")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(source, []byte("export function a() {}\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(domain, "foo.mock.ts"), []byte("//\n"), 0o644))

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	time.Sleep(100 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, fw.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{source}, changed)
}
