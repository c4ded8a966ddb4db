package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, path string, reload func() error) {
	t.Helper()
	w, err := New(path, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, reload)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWatcher_Directory(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	start(t, dir, func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load(), "non-definition files are ignored")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.yaml"), []byte("name: users\n"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "defs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: a\n"), 0o600))

	var calls atomic.Int32
	start(t, file, func() error {
		calls.Add(1)
		return errors.New("keeps watching")
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("name: b\n"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load(), "sibling files are ignored")

	require.NoError(t, os.WriteFile(file, []byte("name: c\n"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	// a failed reload does not stop the watch
	before := calls.Load()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("name: d\n"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_ReloadsDoNotOverlap(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "defs.yaml")
	var active, peak, calls atomic.Int32
	start(t, dir, func() error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(80 * time.Millisecond)
		calls.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte("name: a\n"), 0o600))
		time.Sleep(25 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return calls.Load() >= 2 && active.Load() == 0 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), peak.Load())
}

func TestNew_MissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "defs.yaml"))
	assert.Error(t, err)
}

func TestDebouncer_Coalesces(t *testing.T) {
	var calls atomic.Int32
	d := &debouncer{interval: 30 * time.Millisecond, fire: func() { calls.Add(1) }}
	for i := 0; i < 5; i++ {
		d.trigger()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	d.stop()
	d.trigger()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
