// Package telemetry records build progress with progrock.
package telemetry

import (
	"context"
	"io"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/cleardep/internal/core/ports"
)

// Recorder implements ports.Telemetry on a progrock tape.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a Recorder writing to a fresh tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts a vertex named after the task being compiled. The vertex is attached to the
// returned context.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := &vertex{v: r.rec.Vertex(digest.FromString(name), name)}
	return ports.ContextWithVertex(ctx, v), v
}

// Close closes the underlying writer if it supports closing.
func (r *Recorder) Close() error {
	if c, ok := r.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type vertex struct {
	v *progrock.VertexRecorder
}

func (v *vertex) Stdout() io.Writer { return v.v.Stdout() }

func (v *vertex) Stderr() io.Writer { return v.v.Stderr() }

func (v *vertex) Complete(err error) { v.v.Done(err) }

func (v *vertex) Cached() { v.v.Cached() }
