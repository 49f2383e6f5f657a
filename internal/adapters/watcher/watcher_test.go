package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/watcher"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func collect(events <-chan ports.WatchEvent, want string, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if ev.Path == want {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func start(t *testing.T, root string) <-chan ports.WatchEvent {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(logger, ".cleardep")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, root))
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})

	ch := make(chan ports.WatchEvent, 100)
	go func() {
		defer close(ch)
		for ev := range w.Events() {
			ch <- ev
		}
	}()
	return ch
}

func TestWatcher_ReportsWrites(t *testing.T) {
	root := t.TempDir()
	events := start(t, root)

	path := filepath.Join(root, "a.src")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))
	assert.True(t, collect(events, path, 5*time.Second))
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	events := start(t, root)

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o750))
	require.True(t, collect(events, dir, 5*time.Second))

	path := filepath.Join(dir, "b.src")
	require.Eventually(t, func() bool {
		return os.WriteFile(path, []byte("b"), 0o600) == nil && collect(events, path, 200*time.Millisecond)
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_SkipsStateDirectory(t *testing.T) {
	root := t.TempDir()
	state := filepath.Join(root, ".cleardep")
	require.NoError(t, os.Mkdir(state, 0o750))
	events := start(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(state, "a.dep"), []byte("x"), 0o600))
	marker := filepath.Join(root, "marker")
	require.NoError(t, os.WriteFile(marker, []byte("m"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			require.NotEqual(t, filepath.Join(state, "a.dep"), ev.Path)
			if ev.Path == marker {
				return
			}
		case <-deadline:
			t.Fatal("marker event not received")
		}
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := watcher.NewWatcher(mocks.NewMockLogger(ctrl))
	assert.NoError(t, w.Stop())
}
