package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/shell"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestExecutor_LogsOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info("hello")
	logger.EXPECT().Info("world")
	logger.EXPECT().Warn("oops")

	err := shell.NewExecutor(logger).Execute(context.Background(), &domain.Command{
		Args: []string{"sh", "-c", "printf 'hello\\nworld'; echo oops >&2"},
	})
	require.NoError(t, err)
}

func TestExecutor_Writers(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var stdout, stderr bytes.Buffer
	dir := t.TempDir()
	err := shell.NewExecutor(logger).Execute(context.Background(), &domain.Command{
		Args:        []string{"sh", "-c", "pwd; echo $GREETING >&2"},
		WorkingDir:  dir,
		Environment: map[string]string{"GREETING": "hi"},
		Stdout:      &stdout,
		Stderr:      &stderr,
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), dir)
	assert.Equal(t, "hi\n", stderr.String())
}

func TestExecutor_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	err := shell.NewExecutor(logger).Execute(context.Background(), &domain.Command{
		Args: []string{"sh", "-c", "exit 3"},
	})
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
	assert.Equal(t, "sh -c exit 3", zErr.Metadata()["command"])
}

func TestExecutor_EmptyCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	err := shell.NewExecutor(mocks.NewMockLogger(ctrl)).Execute(context.Background(), &domain.Command{})
	assert.NoError(t, err)
}

func TestExecutor_Terminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var out bytes.Buffer
	err := shell.NewExecutor(logger).Execute(context.Background(), &domain.Command{
		Args:     []string{"sh", "-c", "if [ -t 1 ]; then echo tty; fi; echo oops >&2"},
		Stdout:   &out,
		Terminal: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "tty")
	assert.Contains(t, out.String(), "oops")
}

func TestExecutor_TerminalFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	err := shell.NewExecutor(logger).Execute(context.Background(), &domain.Command{
		Args:     []string{"sh", "-c", "echo failing; exit 4"},
		Terminal: true,
	})
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 4, zErr.Metadata()["exit_code"])
}
