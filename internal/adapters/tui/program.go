package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

// Writer implements progrock.Writer by forwarding every update to a running program.
type Writer struct {
	p    *tea.Program
	once sync.Once
}

// NewWriter creates a Writer sending to p.
func NewWriter(p *tea.Program) *Writer {
	return &Writer{p: p}
}

// WriteStatus implements progrock.Writer.
func (w *Writer) WriteStatus(update *progrock.StatusUpdate) error {
	w.p.Send(MsgStatusUpdate{Update: update})
	return nil
}

// Close tells the program that the build has ended.
func (w *Writer) Close() error {
	w.once.Do(func() {
		w.p.Send(MsgBuildEnded{})
	})
	return nil
}

// Run shows tasks while build runs. build records its progress to the writer it receives.
// Quitting the view cancels the context passed to build. Run returns once both the view and
// build are done.
func Run(
	ctx context.Context,
	tasks []string,
	build func(ctx context.Context, w progrock.Writer) error,
	opts ...tea.ProgramOption,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(tasks), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	w := NewWriter(p)

	done := make(chan error, 1)
	go func() {
		err := build(ctx, w)
		_ = w.Close()
		done <- err
	}()

	_, uiErr := p.Run()
	cancel()
	buildErr := <-done

	if errors.Is(uiErr, tea.ErrProgramKilled) {
		uiErr = nil
	}
	return errors.Join(buildErr, uiErr)
}
