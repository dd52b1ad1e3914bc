package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every manifest file found under the given paths, resolves
	// relative paths, expands source directories and returns the merged,
	// validated manifest.
	Load(ctx context.Context, paths ...string) (*Manifest, error)
}
