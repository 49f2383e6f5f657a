package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"go.trai.ch/cleardep/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info level", level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "warn level", level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error level", level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
		{name: "debug level filtered", level: slog.LevelDebug, msg: "debug message", goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = true

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(context.Background(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	tests := []struct {
		name       string
		log        func(lg *slog.Logger)
		goldenName string
	}{
		{
			name: "record attributes",
			log: func(lg *slog.Logger) {
				lg.Info("compiled", "unit", "core", "task", 1)
			},
			goldenName: "handler_attrs_record",
		},
		{
			name: "handler attributes first",
			log: func(lg *slog.Logger) {
				lg.With("schedule", "rebuild-all").Info("compiled", "unit", "core")
			},
			goldenName: "handler_attrs_with",
		},
		{
			name: "group prefixes keys",
			log: func(lg *slog.Logger) {
				lg.WithGroup("driver").Warn("skipped", "unit", "app")
			},
			goldenName: "handler_attrs_group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = true

			buf := &bytes.Buffer{}
			tt.log(slog.New(logger.NewPrettyHandler(buf, nil)))

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}
