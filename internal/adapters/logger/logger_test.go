package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/logger"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Logger = (*logger.Logger)(nil)

func newLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)
	return l, &buf
}

func TestLogger_InfoWarn(t *testing.T) {
	l, buf := newLogger(t)

	l.Info("reading manifest")
	l.Warn("state file unreadable")

	g := goldie.New(t)
	g.Assert(t, "logger_info_warn", buf.Bytes())
}

func TestLogger_ErrorChain(t *testing.T) {
	l, buf := newLogger(t)

	err := zerr.With(zerr.Wrap(domain.ErrCycleDetected, "validate"), "path", "a -> b -> a")
	l.Error(zerr.Wrap(err, "build failed"))

	g := goldie.New(t)
	g.Assert(t, "logger_error_chain", buf.Bytes())
}

func TestLogger_ErrorPlain(t *testing.T) {
	l, buf := newLogger(t)

	l.Error(errors.New("boom"))
	l.Error(nil)

	g := goldie.New(t)
	g.Assert(t, "logger_error_plain", buf.Bytes())
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newLogger(t)
	l.SetJSON(true)

	l.Error(zerr.With(zerr.Wrap(domain.ErrUnitNotFound, "lookup"), "unit", "core"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "core", record["unit"])
	assert.Contains(t, record["msg"], "lookup")
}
