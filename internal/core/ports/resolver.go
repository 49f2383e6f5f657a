package ports

// SourceResolver resolves source patterns to concrete files.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type SourceResolver interface {
	// ResolveSources expands glob patterns relative to root into a sorted list of files.
	ResolveSources(patterns []string, root string) ([]string, error)
}
