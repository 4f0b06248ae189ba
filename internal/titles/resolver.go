package titles

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/justchokingaround/anidb/internal/anidb"
)

// RemoteFunc fetches a fresh index from the remote service
type RemoteFunc func(ctx context.Context) (anidb.TitlesIndex, error)

// Resolver runs the cache cascade.
//
// Tiers are probed cheapest first and probing stops at the first hit.
// Tiers probed before the hit are repopulated; tiers after it are left
// alone. Population runs in reverse probe order.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver that reports to logger
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger.With("component", "titles")}
}

// Resolve returns the titles index from the first tier that has it, or
// from remote. With forceRefresh every tier is treated as missing. Errors
// from remote are returned unchanged; failures writing a tier are logged
// and otherwise ignored.
func (r *Resolver) Resolve(ctx context.Context, tiers []Backend, remote RemoteFunc, forceRefresh bool) (anidb.TitlesIndex, error) {
	log := r.logger.With("run_id", uuid.NewString())

	var (
		index   anidb.TitlesIndex
		found   bool
		missing []Backend
	)

	if forceRefresh {
		log.Debug("forced refresh, skipping cache tiers", "tiers", len(tiers))
		missing = append(missing, tiers...)
	} else {
		for i, tier := range tiers {
			log.Debug("probing cache tier", "state", "probe", "position", i, "tier", tier.Name())
			res := tier.Load(ctx)
			if res.Found() {
				index = res.Index()
				found = true
				log.Debug("cache hit", "tier", tier.Name(), "entries", index.Len())
				break
			}
			log.Debug("cache miss", "tier", tier.Name(), "reason", res.Err())
			missing = append(missing, tier)
		}
	}

	if !found {
		log.Debug("fetching titles from remote", "state", "fetch")
		var err error
		index, err = remote(ctx)
		if err != nil {
			return anidb.TitlesIndex{}, err
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		tier := missing[i]
		log.Debug("populating cache tier", "state", "populate", "tier", tier.Name())
		if err := tier.Save(ctx, index); err != nil {
			log.Warn("failed to populate cache tier", "tier", tier.Name(), "error", err)
		}
	}

	log.Debug("titles resolved", "state", "done", "entries", index.Len(), "populated", len(missing))
	return index, nil
}
