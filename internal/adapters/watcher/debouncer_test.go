package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ward/internal/adapters/watcher"
)

func TestDebouncer_Add_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, paths)
		})

		d.Add("/project/src/main.go")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/project/src/main.go"}, calls[0])
	})
}

func TestDebouncer_Add_BurstCoalesced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, paths)
		})

		// An editor writing a file as rename-over-temp produces several
		// events within the window; they must yield a single batch.
		d.Add("/project/src/main.go")
		time.Sleep(20 * time.Millisecond)
		d.Add("/project/src/main.go")
		d.Add("/project/src/util.go")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, calls, 1)
		assert.ElementsMatch(t, []string{"/project/src/main.go", "/project/src/util.go"}, calls[0])
	})
}

func TestDebouncer_Add_WindowResetsOnNewEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, paths)
		})

		d.Add("/a")
		time.Sleep(80 * time.Millisecond)
		d.Add("/b")
		time.Sleep(80 * time.Millisecond)

		mu.Lock()
		assert.Empty(t, calls)
		mu.Unlock()

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, calls, 1)
		assert.ElementsMatch(t, []string{"/a", "/b"}, calls[0])
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls [][]string

		d := watcher.NewDebouncer(50*time.Millisecond, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, paths)
		})

		d.Add("/a")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add("/b")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, calls, 2)
		assert.Equal(t, []string{"/a"}, calls[0])
		assert.Equal(t, []string{"/b"}, calls[1])
	})
}

func TestDebouncer_Flush(t *testing.T) {
	var mu sync.Mutex
	var calls [][]string

	d := watcher.NewDebouncer(time.Hour, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, paths)
	})

	d.Add("/a")
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"/a"}, calls[0])
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	called := false
	d := watcher.NewDebouncer(time.Hour, func([]string) { called = true })

	d.Flush()
	assert.False(t, called)
}
