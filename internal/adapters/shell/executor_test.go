package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ward/internal/adapters/shell"
	"go.trai.ch/ward/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

func buildTarget(name string, commands ...string) *domain.Target {
	return &domain.Target{
		Name:          domain.NewInternedString(name),
		BuildCommands: commands,
	}
}

func TestRunBuild_Success(t *testing.T) {
	dir := t.TempDir()
	executor := shell.NewExecutor(nopLogger{})

	err := executor.RunBuild(context.Background(), buildTarget("app", "echo hello > out.txt"), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRunBuild_CommandsRunInOrder(t *testing.T) {
	dir := t.TempDir()
	executor := shell.NewExecutor(nopLogger{})

	err := executor.RunBuild(context.Background(), buildTarget("app",
		"echo one >> log.txt",
		"echo two >> log.txt",
	), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestRunBuild_AbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	executor := shell.NewExecutor(nopLogger{})

	err := executor.RunBuild(context.Background(), buildTarget("app",
		"false",
		"echo reached > should-not-exist.txt",
	), dir)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "should-not-exist.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBuild_NoCommandsIsANoop(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})
	err := executor.RunBuild(context.Background(), buildTarget("app"), t.TempDir())
	assert.NoError(t, err)
}

func TestRunBuild_ContextCancellationKillsCommand(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- executor.RunBuild(ctx, buildTarget("app", "sleep 60"), t.TempDir())
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("build did not stop after context cancellation")
	}
}

func TestStartService_StopTerminatesProcessGroup(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})

	// The shell spawns a child; both live in the same process group.
	handle, err := executor.StartService(context.Background(), "sleep 60 & wait", t.TempDir())
	require.NoError(t, err)

	require.NoError(t, handle.Stop(2*time.Second))

	select {
	case <-handle.Done():
	default:
		t.Fatal("service still alive after Stop")
	}
}

func TestStartService_DoneClosesOnSelfExit(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})

	handle, err := executor.StartService(context.Background(), "true", t.TempDir())
	require.NoError(t, err)

	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done not closed after service exited on its own")
	}

	// Stop after self-exit is a no-op.
	assert.NoError(t, handle.Stop(time.Second))
}

func TestStartService_SpawnFailure(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})

	// A missing working directory makes the spawn itself fail.
	_, err := executor.StartService(context.Background(), "true", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestStartService_GraceEscalation(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})

	// The trap ignores SIGTERM, forcing the SIGKILL escalation path.
	handle, err := executor.StartService(context.Background(), `trap "" TERM; sleep 60`, t.TempDir())
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, handle.Stop(200*time.Millisecond))
	assert.Less(t, time.Since(start), 5*time.Second)

	select {
	case <-handle.Done():
	default:
		t.Fatal("service survived SIGKILL escalation")
	}
}
