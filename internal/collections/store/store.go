// Package store defines the narrow lookup predicates the matching engine
// consumes. The full CRUD surface of the registry lives elsewhere; the engine
// only ever reads through these interfaces.
package store

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"collreg/internal/collections/models"
)

// CodeHit is an entity returned by a code search, tagged with whether the hit
// was on an alternative code rather than the primary one.
type CodeHit[T models.Entity] struct {
	Entity          T
	AlternativeCode bool
}

// Store exposes the read-only lookup predicates for one entity type. All
// string predicates compare trimmed and case-folded values; implementations
// own the normalization of stored values.
//
// FindByKey returns sentinel.ErrNotFound when no entity has the key.
// FindByIdentifier never matches identifiers of the internal GRSCICOLL_ID
// type. FindMappings returns the entities whose occurrence mappings match the
// dataset; a mapping with an empty code or identifier is a wildcard for that
// field within its dataset.
type Store[T models.Entity] interface {
	FindByKey(ctx context.Context, key uuid.UUID) (*T, error)
	FindByIdentifier(ctx context.Context, identifier string) ([]T, error)
	FindByCode(ctx context.Context, code string) ([]CodeHit[T], error)
	FindByName(ctx context.Context, name string) ([]T, error)
	FindMappings(ctx context.Context, datasetKey uuid.UUID, code, identifier string) ([]T, error)
}

// InstitutionStore and CollectionStore are the concrete interfaces wired into
// the lookup service.
type (
	InstitutionStore = Store[models.Institution]
	CollectionStore  = Store[models.Collection]
)
