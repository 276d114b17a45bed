package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// start runs Watch in the background and waits until it is registered.
func start(t *testing.T, w *Watcher, fn ReloadFunc) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx, fn) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)
	// fsnotify.Add happens just after running is set.
	time.Sleep(50 * time.Millisecond)
	return cancelCtx, errCh
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.xml")
	writeFile(t, path, `<fetch><entity name="account"/></fetch>`)

	w, err := New(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	var calls atomic.Int32
	cancel, done := start(t, w, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	writeFile(t, path, `<fetch><entity name="contact"/></fetch>`)

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.xml")
	writeFile(t, path, "")

	w, err := New(path, WithDebounce(200*time.Millisecond))
	require.NoError(t, err)

	var calls atomic.Int32
	cancel, done := start(t, w, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		writeFile(t, path, "<fetch/>")
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.xml")
	writeFile(t, path, "")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	var calls atomic.Int32
	cancel, done := start(t, w, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	writeFile(t, filepath.Join(dir, "other.xml"), "<fetch/>")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_AlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.xml")
	writeFile(t, path, "")

	w, err := New(path)
	require.NoError(t, err)

	cancel, done := start(t, w, func(context.Context) error { return nil })

	err = w.Watch(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRunning)

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope", "query.xml"))
	require.NoError(t, err)

	err = w.Watch(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestNew_Options(t *testing.T) {
	w, err := New("query.xml", WithDebounce(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.interval)
	assert.True(t, filepath.IsAbs(w.Path()))

	w, err = New("query.xml", WithDebounce(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, w.interval)
}

func TestWatch_Stop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.xml")
	writeFile(t, path, "")

	w, err := New(path)
	require.NoError(t, err)
	w.Stop()

	_, done := start(t, w, func(context.Context) error { return nil })
	w.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after Stop")
	}
}
