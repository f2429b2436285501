package ports

// Hasher defines the interface for computing content digests.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeTreeHash digests every file below root, including relative paths.
	ComputeTreeHash(root string) (string, error)
}
