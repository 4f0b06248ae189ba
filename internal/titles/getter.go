package titles

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/justchokingaround/anidb/internal/anidb"
	"github.com/justchokingaround/anidb/internal/config"
)

// Getter binds a resolver to a fixed tier list and remote source
type Getter struct {
	resolver *Resolver
	tiers    []Backend
	remote   RemoteFunc
}

// NewGetter creates a Getter
func NewGetter(resolver *Resolver, tiers []Backend, remote RemoteFunc) *Getter {
	return &Getter{resolver: resolver, tiers: tiers, remote: remote}
}

// Get resolves the titles index; force bypasses every cache tier
func (g *Getter) Get(ctx context.Context, force bool) (anidb.TitlesIndex, error) {
	return g.resolver.Resolve(ctx, g.tiers, g.remote, force)
}

// Tiers returns the configured tiers in probe order
func (g *Getter) Tiers() []Backend {
	return g.tiers
}

// Clearer is implemented by tiers that can drop their cached data
type Clearer interface {
	Clear(ctx context.Context) error
}

// TiersFromConfig builds the tiers named in cfg.Tiers, in order. db backs
// the database tier and may be nil when that tier is not listed.
func TiersFromConfig(cfg *config.CacheConfig, db *gorm.DB) ([]Backend, error) {
	tiers := make([]Backend, 0, len(cfg.Tiers))
	for _, name := range cfg.Tiers {
		switch name {
		case config.TierSnapshot:
			tiers = append(tiers, NewSnapshotCache(filepath.Join(cfg.Dir, SnapshotFile)))
		case config.TierDocument:
			tiers = append(tiers, NewDocumentCache(filepath.Join(cfg.Dir, DocumentFile)))
		case config.TierDatabase:
			if db == nil {
				return nil, errors.New("database tier configured without a database")
			}
			tiers = append(tiers, NewDatabaseCache(db))
		default:
			return nil, fmt.Errorf("unknown cache tier %q", name)
		}
	}
	return tiers, nil
}

// UsesDatabase reports whether cfg lists the database tier
func UsesDatabase(cfg *config.CacheConfig) bool {
	for _, name := range cfg.Tiers {
		if name == config.TierDatabase {
			return true
		}
	}
	return false
}
