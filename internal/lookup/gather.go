package lookup

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store"
	"collreg/pkg/platform/sentinel"
)

// gatherer runs the independent lookup predicates for one entity type and
// merges the hits into reason-annotated candidates.
type gatherer[T models.Entity] struct {
	store store.Store[T]
	// pathMarker is the canonical URL fragment a key can be extracted from,
	// e.g. "/grscicoll/institution/".
	pathMarker string
}

// gather issues the key, identifier and code predicates concurrently, joins
// the results, and falls back to a name search only when none of them
// produced a candidate. A missing key is a non-hit; any other store error
// fails the gather.
func (g gatherer[T]) gather(ctx context.Context, code, identifier string, country models.Country) ([]candidate[T], error) {
	code = cleanHint(code)
	identifier = cleanIdentifier(identifier)

	var (
		byKey        *T
		byIdentifier []T
		byCode       []store.CodeHit[T]
	)

	eg, egCtx := errgroup.WithContext(ctx)
	if key, ok := extractKey(identifier, g.pathMarker); ok {
		eg.Go(func() error {
			entity, err := g.store.FindByKey(egCtx, key)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			byKey = entity
			return nil
		})
	}
	if identifier != "" {
		eg.Go(func() error {
			var err error
			byIdentifier, err = g.store.FindByIdentifier(egCtx, identifier)
			return err
		})
	}
	if code != "" {
		eg.Go(func() error {
			var err error
			byCode, err = g.store.FindByCode(egCtx, code)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	acc := newAccumulator[T]()
	if byKey != nil {
		acc.add(*byKey, ReasonKeyMatch)
	}
	for _, entity := range byIdentifier {
		acc.add(entity, ReasonIdentifierMatch)
	}
	for _, hit := range byCode {
		reason := ReasonCodeMatch
		if hit.AlternativeCode {
			reason = ReasonAlternativeCodeMatch
		}
		acc.add(hit.Entity, reason)
	}

	if acc.empty() {
		if err := g.gatherByName(ctx, acc, code, identifier); err != nil {
			return nil, err
		}
	}

	candidates := acc.candidates()
	if country != models.CountryUnknown {
		for i := range candidates {
			if candidates[i].entity.EntityCountry() == country {
				candidates[i].reasons.Add(ReasonCountryMatch)
			}
		}
	}
	return candidates, nil
}

// gatherByName tries both supplied hints as entity names. Publishers routinely
// put the full name in the code field, so both are worth trying.
func (g gatherer[T]) gatherByName(ctx context.Context, acc *accumulator[T], code, identifier string) error {
	var byCodeName, byIdentifierName []T

	eg, egCtx := errgroup.WithContext(ctx)
	if code != "" {
		eg.Go(func() error {
			var err error
			byCodeName, err = g.store.FindByName(egCtx, code)
			return err
		})
	}
	if identifier != "" {
		eg.Go(func() error {
			var err error
			byIdentifierName, err = g.store.FindByName(egCtx, identifier)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, entity := range byCodeName {
		acc.add(entity, ReasonNameMatch)
	}
	for _, entity := range byIdentifierName {
		acc.add(entity, ReasonNameMatch)
	}
	return nil
}

// accumulator merges hits from independent predicates into one candidate per
// entity, unioning reasons. Insertion order is preserved so classification is
// deterministic.
type accumulator[T models.Entity] struct {
	order []uuid.UUID
	byKey map[uuid.UUID]*candidate[T]
}

func newAccumulator[T models.Entity]() *accumulator[T] {
	return &accumulator[T]{byKey: make(map[uuid.UUID]*candidate[T])}
}

func (a *accumulator[T]) add(entity T, reasons ...Reason) {
	key := entity.EntityKey()
	c, ok := a.byKey[key]
	if !ok {
		c = &candidate[T]{entity: entity}
		a.byKey[key] = c
		a.order = append(a.order, key)
	}
	for _, r := range reasons {
		c.reasons.Add(r)
	}
}

func (a *accumulator[T]) empty() bool { return len(a.order) == 0 }

func (a *accumulator[T]) candidates() []candidate[T] {
	if len(a.order) == 0 {
		return nil
	}
	out := make([]candidate[T], 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.byKey[key])
	}
	return out
}
