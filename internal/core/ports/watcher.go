package ports

import (
	"context"
	"iter"
)

//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// Op is the kind of a file system change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// WatchEvent is a file system change.
type WatchEvent struct {
	Path      string
	Operation Op
}

// Watcher reports file system changes below a root directory.
type Watcher interface {
	// Start begins watching root recursively until ctx is done.
	Start(ctx context.Context, root string) error
	// Stop releases all resources.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
