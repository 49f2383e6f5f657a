package ports

// Verifier checks that the files a command was expected to produce exist.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// Missing returns the paths that do not exist.
	Missing(paths []string) ([]string, error)
}
