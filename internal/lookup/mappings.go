package lookup

import (
	"context"

	"github.com/google/uuid"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store"
)

// resolveMapping runs the dataset explicit-mapping stage for one entity type.
// A unique mapping resolves the match outright and generic matching is
// skipped. More than one applicable mapping is a curation conflict: the
// result is NONE with AMBIGUOUS_EXPLICIT_MAPPINGS and generic matching is
// still skipped, so a misconfigured dataset never silently falls back to
// fuzzy matching. No mapping at all falls through to the generic stages.
func resolveMapping[T models.Entity](ctx context.Context, st store.Store[T], datasetKey uuid.UUID, code, identifier string) (Match[T], bool, error) {
	mapped, err := st.FindMappings(ctx, datasetKey, cleanHint(code), cleanIdentifier(identifier))
	if err != nil {
		return NoMatch[T](""), false, err
	}
	switch len(mapped) {
	case 0:
		return NoMatch[T](""), false, nil
	case 1:
		entity := mapped[0]
		return Match[T]{
			MatchType: MatchTypeExplicitMapping,
			Status:    StatusAccepted,
			Entity:    &entity,
		}, true, nil
	default:
		return NoMatch[T](StatusAmbiguousExplicitMappings), true, nil
	}
}
