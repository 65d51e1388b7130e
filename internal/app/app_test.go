package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ward/internal/adapters/config"
	"go.trai.ch/ward/internal/adapters/fs"
	"go.trai.ch/ward/internal/adapters/shell"
	"go.trai.ch/ward/internal/adapters/state"
	adapterwatcher "go.trai.ch/ward/internal/adapters/watcher"
	"go.trai.ch/ward/internal/app"
	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/engine/scheduler"
	"go.trai.ch/ward/internal/engine/supervisor"
	"go.trai.ch/zerr"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

// newApp wires an App from real adapters rooted at dir.
func newApp(t *testing.T, dir string) *app.App {
	t.Helper()

	log := nopLogger{}
	store := state.NewStore(domain.StatePath(dir))
	hasher := fs.NewHasher(fs.NewWalker())
	executor := shell.NewExecutor(log)
	sup := supervisor.New(log, time.Second)
	sched := scheduler.New(executor, store, hasher, sup, log)

	w, err := adapterwatcher.NewWatcher()
	require.NoError(t, err)

	return app.New(&config.FileConfigLoader{}, sched, w, adapterwatcher.NewHashCache(), store, log).WithDir(dir)
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func readLog(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		return nil
	}
	return strings.Fields(string(data))
}

func TestApp_Run_DependencyOrder(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
a:
  build: [echo a >> log.txt]
b:
  dependencies: [a]
  build: [echo b >> log.txt]
`,
	})

	err := newApp(t, dir).Run(context.Background(), []string{"b"}, app.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, readLog(t, dir))
}

func TestApp_Run_SkipsUnchangedInputs(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  input_paths: [src]
  build: [echo built >> log.txt]
`,
		"src/x": "hello",
	})

	a := newApp(t, dir)

	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))
	require.Equal(t, []string{"built"}, readLog(t, dir))

	// Unchanged inputs: the build command must not run again.
	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))
	require.Equal(t, []string{"built"}, readLog(t, dir))

	// Changed inputs: it runs once more.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "x"), []byte("world"), 0o600))
	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))
	assert.Equal(t, []string{"built", "built"}, readLog(t, dir))
}

func TestApp_Run_ForceRebuildsUnchangedInputs(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  input_paths: [src]
  build: [echo built >> log.txt]
`,
		"src/x": "hello",
	})

	a := newApp(t, dir)

	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))
	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{Force: true}))

	assert.Equal(t, []string{"built", "built"}, readLog(t, dir))
}

func TestApp_Run_BuildFailure(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  input_paths: [src]
  build: [false]
`,
		"src/x": "hello",
	})

	err := newApp(t, dir).Run(context.Background(), []string{"t"}, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)

	// No fingerprint is recorded for a failed build.
	_, statErr := os.Stat(domain.FingerprintPath(dir, "t"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestApp_Run_FailedTargetRetriesNextInvocation(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  input_paths: [src]
  build: [sh ./build.sh]
`,
		"src/x":    "hello",
		"build.sh": "exit 1\n",
	})

	a := newApp(t, dir)
	require.Error(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))

	// Fix the build script (not an input): the target is still stale
	// because no fingerprint was recorded, so the retry runs and succeeds.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.sh"), []byte("echo ok >> log.txt\n"), 0o600))
	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))
	assert.Equal(t, []string{"ok"}, readLog(t, dir))
}

func TestApp_Run_UnknownTarget(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: "t: {build: [true]}\n",
	})

	err := newApp(t, dir).Run(context.Background(), []string{"ghost"}, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestApp_Run_ReportsAllUnknownTargetsTogether(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  build: [echo built >> log.txt]
`,
	})

	err := newApp(t, dir).Run(context.Background(), []string{"ghost", "t", "phantom"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrTargetNotFound)

	// Every invalid name is reported in one error, and nothing is built.
	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "ghost, phantom", zErr.Metadata()["targets"])
	assert.Empty(t, readLog(t, dir))
}

func TestApp_Run_NoTargets(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: "t: {build: [true]}\n",
	})

	err := newApp(t, dir).Run(context.Background(), nil, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestApp_Run_MissingConfig(t *testing.T) {
	err := newApp(t, t.TempDir()).Run(context.Background(), []string{"t"}, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestApp_Run_OnlyActiveSetIsBuilt(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
a:
  build: [echo a >> log.txt]
b:
  build: [echo b >> log.txt]
`,
	})

	require.NoError(t, newApp(t, dir).Run(context.Background(), []string{"a"}, app.RunOptions{}))
	assert.Equal(t, []string{"a"}, readLog(t, dir))
}

func TestApp_Run_WatchModeStopsOnCancel(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
svc:
  build: [echo built >> log.txt]
  service: sleep 60
`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newApp(t, dir).Run(ctx, []string{"svc"}, app.RunOptions{})
	}()

	// Give the engine time to build and enter the watch loop, then signal.
	time.Sleep(500 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("engine did not shut down after cancellation")
	}

	assert.Equal(t, []string{"built"}, readLog(t, dir))
}

func TestApp_Clean_All(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  input_paths: [src]
  build: [true]
`,
		"src/x": "hello",
	})

	a := newApp(t, dir)
	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))
	_, err := os.Stat(domain.FingerprintPath(dir, "t"))
	require.NoError(t, err)

	require.NoError(t, a.Clean(context.Background(), nil))
	_, err = os.Stat(domain.StatePath(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestApp_Clean_SingleTarget(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
a:
  input_paths: [src]
  build: [true]
b:
  input_paths: [src]
  build: [true]
`,
		"src/x": "hello",
	})

	a := newApp(t, dir)
	require.NoError(t, a.Run(context.Background(), []string{"a", "b"}, app.RunOptions{}))

	require.NoError(t, a.Clean(context.Background(), []string{"a"}))

	_, err := os.Stat(domain.FingerprintPath(dir, "a"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(domain.FingerprintPath(dir, "b"))
	assert.NoError(t, err)
}

func TestApp_Clean_UnknownTarget(t *testing.T) {
	dir := writeProject(t, map[string]string{
		domain.WardFileName: `
t:
  input_paths: [src]
  build: [true]
`,
		"src/x": "hello",
	})

	a := newApp(t, dir)
	require.NoError(t, a.Run(context.Background(), []string{"t"}, app.RunOptions{}))

	err := a.Clean(context.Background(), []string{"t", "ghost", "phantom"})
	require.ErrorIs(t, err, domain.ErrTargetNotFound)

	// All invalid names are reported together, and nothing is cleared when
	// any name fails validation.
	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "ghost, phantom", zErr.Metadata()["targets"])
	_, statErr := os.Stat(domain.FingerprintPath(dir, "t"))
	assert.NoError(t, statErr)
}
