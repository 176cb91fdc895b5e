// Package cache stores rendered artifacts between CLI runs.
//
// Rendering a flowchart through Graphviz is the slowest step of the tool,
// and the output depends only on the DOT source and the output settings.
// [RenderKey] hashes those inputs; a [FileCache] keeps the result on disk
// under the XDG cache directory. [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
