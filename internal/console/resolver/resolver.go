package resolver

import (
	"context"

	"go.uber.org/zap"

	"hradmin/internal/console/refcache"
	"hradmin/internal/domain/core"
)

// Fetcher loads one reference entity on a cache miss.
type Fetcher interface {
	GetReference(ctx context.Context, kind core.ReferenceKind, id string) (core.Reference, error)
}

// Resolver turns employee foreign keys into display labels, cache first.
// Concurrent misses for the same id may both fetch; the duplicate write is
// harmless because the values are identical.
type Resolver struct {
	cache   *refcache.Cache
	fetcher Fetcher
	logger  *zap.Logger
}

func New(cache *refcache.Cache, fetcher Fetcher, logger *zap.Logger) *Resolver {
	return &Resolver{cache: cache, fetcher: fetcher, logger: logger.Named("resolver")}
}

func (r *Resolver) RoleName(ctx context.Context, emp core.Employee) string {
	return r.Resolve(ctx, core.ReferenceRole, emp.RoleID)
}

func (r *Resolver) LevelName(ctx context.Context, emp core.Employee) string {
	return r.Resolve(ctx, core.ReferenceLevel, emp.LevelID)
}

func (r *Resolver) OrganisationAbbreviation(ctx context.Context, emp core.Employee) string {
	return r.Resolve(ctx, core.ReferenceOrganisation, emp.OrganisationID)
}

// Resolve returns the label for (kind, id), or "N/A" when id is empty or the
// entity cannot be fetched.
func (r *Resolver) Resolve(ctx context.Context, kind core.ReferenceKind, id string) string {
	if id == "" {
		return core.NotApplicable
	}
	if ref, ok := r.cache.Get(kind, id); ok {
		return ref.Label
	}
	ref, err := r.fetcher.GetReference(ctx, kind, id)
	if err != nil {
		r.logger.Warn("reference lookup failed",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
		return core.NotApplicable
	}
	r.cache.Put(kind, id, ref)
	return ref.Label
}
