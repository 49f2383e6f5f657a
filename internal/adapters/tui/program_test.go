package tui_test

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	"go.trai.ch/cleardep/internal/adapters/telemetry"
	"go.trai.ch/cleardep/internal/adapters/tui"
)

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer()}
}

func TestRun(t *testing.T) {
	err := tui.Run(context.Background(), []string{"core"}, func(ctx context.Context, w progrock.Writer) error {
		rec := telemetry.NewRecorder(w)
		_, v := rec.Record(ctx, "core")
		_, _ = v.Stdout().Write([]byte("hello\n"))
		v.Complete(nil)
		return rec.Close()
	}, headless()...)
	require.NoError(t, err)
}

func TestRun_BuildError(t *testing.T) {
	boom := errors.New("boom")
	err := tui.Run(context.Background(), nil, func(context.Context, progrock.Writer) error {
		return boom
	}, headless()...)
	require.ErrorIs(t, err, boom)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := tui.Run(ctx, nil, func(ctx context.Context, _ progrock.Writer) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}, headless()...)
	assert.ErrorIs(t, err, context.Canceled)
}
