// Package titles resolves the AniDB titles dump through an ordered cascade
// of cache tiers, falling back to the remote service.
package titles

import (
	"context"

	"github.com/justchokingaround/anidb/internal/anidb"
)

// Backend is one cache tier of the cascade
type Backend interface {
	// Name identifies the tier in logs
	Name() string
	// Load returns the cached index, or a miss when the tier has no usable data
	Load(ctx context.Context) LoadResult
	// Save replaces the cached index wholesale
	Save(ctx context.Context, index anidb.TitlesIndex) error
}

// LoadResult is the outcome of Backend.Load: either a hit carrying an
// index or a miss carrying the reason.
type LoadResult struct {
	index anidb.TitlesIndex
	miss  *anidb.CacheMissingError
}

// Hit wraps a successfully loaded index
func Hit(index anidb.TitlesIndex) LoadResult {
	return LoadResult{index: index}
}

// Miss reports that tier has no usable data. err may be nil.
func Miss(tier string, err error) LoadResult {
	return LoadResult{miss: &anidb.CacheMissingError{Tier: tier, Err: err}}
}

// Found reports whether the load was a hit
func (r LoadResult) Found() bool {
	return r.miss == nil
}

// Index returns the loaded index; zero on a miss
func (r LoadResult) Index() anidb.TitlesIndex {
	return r.index
}

// Err returns the *anidb.CacheMissingError of a miss, nil on a hit
func (r LoadResult) Err() error {
	if r.miss == nil {
		return nil
	}
	return r.miss
}
