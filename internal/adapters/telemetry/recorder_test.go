package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/telemetry"
	"go.trai.ch/cleardep/internal/core/ports"
)

var (
	_ ports.Telemetry = (*telemetry.Recorder)(nil)
	_ ports.Telemetry = telemetry.NoOp{}
)

func TestRecorder_Lifecycle(t *testing.T) {
	recorder := telemetry.New()

	ctx := context.Background()
	vctx, vertex := recorder.Record(ctx, "Task_0()[a]")
	fromCtx, ok := ports.VertexFromContext(vctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("compiling a\n"))
	require.NoError(t, err)
	_, err = vertex.Stderr().Write([]byte("warning\n"))
	require.NoError(t, err)
	vertex.Complete(nil)

	_, failed := recorder.Record(ctx, "Task_1()[b]")
	failed.Complete(errors.New("exit status 1"))

	_, cached := recorder.Record(ctx, "Task_2()[c]")
	cached.Cached()

	require.NoError(t, recorder.Close())
}

func TestNoOp(t *testing.T) {
	recorder := telemetry.NewNoOp()

	_, vertex := recorder.Record(context.Background(), "x")
	n, err := vertex.Stdout().Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	vertex.Complete(nil)
	vertex.Cached()
	assert.NoError(t, recorder.Close())
}
