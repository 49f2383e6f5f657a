package app

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/cleardep/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Watch builds once and then rebuilds whenever files below the project root change. Build
// failures are logged and watching continues. Watch returns when ctx is done.
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	m, err := a.configLoader.Load(dir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	opts.Dir = m.Root
	opts.TUI = false
	state := (&Project{Manifest: m}).stateDir()

	if err := a.Build(ctx, opts); err != nil {
		a.logger.Error(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := a.watcher.Start(ctx, m.Root); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if within(state, event.Path) {
				continue
			}
			debouncer.Add(event.Path)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case paths := <-changes:
				a.logger.Info("change detected: " + strings.Join(relative(m.Root, paths), ", "))
				if err := a.Build(ctx, opts); err != nil && ctx.Err() == nil {
					a.logger.Error(err)
				}
			}
		}
	})

	return g.Wait()
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func relative(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
		out = append(out, p)
	}
	return out
}
