package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pgvanniekerk/ezpool/pkg/threadpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	out := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ezpool version dev\n", out.String())
}

func TestServeCommand_ZeroWorkers(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--workers", "0", "--addr", "127.0.0.1:0", "--log-level", "error"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, threadpool.ErrPoolCreation)
}

func TestServeCommand_InvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--log-level", "chatty"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--workers", "2", "--addr", "127.0.0.1:0", "--log-level", "error"})

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the context was canceled")
	}
}
