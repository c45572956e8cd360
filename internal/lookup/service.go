package lookup

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store"
	"collreg/internal/lookup/metrics"
	dErrors "collreg/pkg/domain-errors"
)

var tracer = otel.Tracer("collreg/internal/lookup")

const (
	institutionPathMarker = "/grscicoll/institution/"
	collectionPathMarker  = "/grscicoll/collection/"
)

// Notifier receives resolved lookups for asynchronous fan-out. Implementations
// must not block; a slow notifier delays the caller.
type Notifier interface {
	LookupResolved(ctx context.Context, params LookupParams, result LookupResult)
}

// Service resolves lookup requests against the institution and collection
// stores. It holds no mutable state and is safe for concurrent use.
type Service struct {
	institutions gatherer[models.Institution]
	collections  gatherer[models.Collection]
	metrics      *metrics.Metrics
	logger       *slog.Logger
	notifier     Notifier
}

// NewService wires the lookup engine. metrics and notifier may be nil; logger
// falls back to slog.Default.
func NewService(institutions store.InstitutionStore, collections store.CollectionStore, m *metrics.Metrics, logger *slog.Logger, notifier Notifier) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		institutions: gatherer[models.Institution]{store: institutions, pathMarker: institutionPathMarker},
		collections:  gatherer[models.Collection]{store: collections, pathMarker: collectionPathMarker},
		metrics:      m,
		logger:       logger,
		notifier:     notifier,
	}
}

// stage holds the per-entity-type outcome of the mapping and gathering phase.
// Either the mapping stage settled the match (settled=true) or candidates are
// ready for classification.
type stage[T models.Entity] struct {
	settled    bool
	match      Match[T]
	candidates []candidate[T]
}

// Lookup resolves both entity types for one request. No match is a normal
// outcome; only store failures return an error.
func (s *Service) Lookup(ctx context.Context, params LookupParams) (LookupResult, error) {
	ctx, span := tracer.Start(ctx, "lookup.Lookup",
		trace.WithAttributes(attribute.Bool("lookup.verbose", params.Verbose)))
	defer span.End()
	start := time.Now()

	var (
		inst stage[models.Institution]
		coll stage[models.Collection]
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		inst, err = runStage(egCtx, s.institutions, params.InstitutionCode, params.InstitutionID, params, s.metrics, "institution")
		return err
	})
	eg.Go(func() error {
		var err error
		coll, err = runStage(egCtx, s.collections, params.CollectionCode, params.CollectionID, params, s.metrics, "collection")
		return err
	})
	if err := eg.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "lookup failed", slog.Any("error", err))
		return LookupResult{}, dErrors.Wrap(dErrors.CodeUnavailable, "resolving lookup candidates", err)
	}

	instMatch, instAlts := s.classifyInstitution(inst, params)
	collMatch, collAlts := s.classifyCollection(coll, instMatch)
	collMatch, collAlts = reconcile(instMatch, collMatch, collAlts)

	result := LookupResult{
		InstitutionMatch: instMatch,
		CollectionMatch:  collMatch,
	}
	if params.Verbose {
		result.AlternativeMatches = AlternativeMatches{
			InstitutionMatches: instAlts,
			CollectionMatches:  collAlts,
		}
	}

	span.SetAttributes(
		attribute.String("lookup.institution_match_type", string(instMatch.MatchType)),
		attribute.String("lookup.collection_match_type", string(collMatch.MatchType)),
	)
	s.metrics.IncrementOutcome("institution", string(instMatch.MatchType))
	s.metrics.IncrementOutcome("collection", string(collMatch.MatchType))
	s.metrics.ObserveLookupLatency(time.Since(start))
	s.logger.DebugContext(ctx, "lookup resolved",
		slog.String("institution_match_type", string(instMatch.MatchType)),
		slog.String("collection_match_type", string(collMatch.MatchType)),
	)

	if s.notifier != nil {
		s.notifier.LookupResolved(ctx, params, result)
	}
	return result, nil
}

// runStage performs the explicit-mapping stage and, unless it settles the
// outcome, gathers generic candidates. An entity type with no hints at all
// settles immediately as NONE.
func runStage[T models.Entity](ctx context.Context, g gatherer[T], code, identifier string, params LookupParams, m *metrics.Metrics, entity string) (stage[T], error) {
	if cleanHint(code) == "" && cleanIdentifier(identifier) == "" {
		return stage[T]{settled: true, match: NoMatch[T]("")}, nil
	}

	if params.DatasetKey != nil {
		mappingStart := time.Now()
		match, settled, err := resolveMapping(ctx, g.store, *params.DatasetKey, code, identifier)
		m.ObserveQueryLatency(entity, "mapping", time.Since(mappingStart))
		if err != nil {
			return stage[T]{}, err
		}
		if settled {
			return stage[T]{settled: true, match: match}, nil
		}
	}

	gatherStart := time.Now()
	candidates, err := g.gather(ctx, code, identifier, params.Country)
	m.ObserveQueryLatency(entity, "gather", time.Since(gatherStart))
	if err != nil {
		return stage[T]{}, err
	}
	return stage[T]{candidates: candidates}, nil
}

// classifyInstitution annotates institution candidates with the owner hint
// before classification. A candidate the supplied owner code does not match
// is flagged, which both surfaces the inconsistency on the final match and
// steers tie-breaking toward owner-consistent candidates.
func (s *Service) classifyInstitution(st stage[models.Institution], params LookupParams) (Match[models.Institution], []Match[models.Institution]) {
	if st.settled {
		return st.match, nil
	}
	if owner := cleanHint(params.OwnerInstitutionCode); owner != "" {
		for i := range st.candidates {
			if !ownerMatches(st.candidates[i].entity, owner) {
				st.candidates[i].reasons.Add(ReasonDifferentOwner)
			}
		}
	}
	return classify(st.candidates)
}

// classifyCollection annotates collection candidates whose owning institution
// agrees with the resolved institution match, then classifies. The annotation
// boosts institution-consistent candidates during tie-breaking and stays on
// the final match as a reported reason. Any resolved institution counts,
// fuzzy included.
func (s *Service) classifyCollection(st stage[models.Collection], instMatch Match[models.Institution]) (Match[models.Collection], []Match[models.Collection]) {
	if st.settled {
		return st.match, nil
	}
	if instMatch.MatchType != MatchTypeNone {
		instKey := instMatch.EntityKey()
		for i := range st.candidates {
			owner := st.candidates[i].entity.InstitutionKey
			if owner != nil && *owner == instKey {
				st.candidates[i].reasons.Add(ReasonBelongsToInstitutionMatched)
			}
		}
	}
	return classify(st.candidates)
}

// reconcile applies the institution/collection consistency check. A collection
// resolved through a strong identity signal keeps its match and is merely
// flagged; a fuzzy collection match owned by a different institution than the
// one resolved is demoted to an alternative.
func reconcile(instMatch Match[models.Institution], collMatch Match[models.Collection], collAlts []Match[models.Collection]) (Match[models.Collection], []Match[models.Collection]) {
	if instMatch.MatchType == MatchTypeNone {
		return collMatch, collAlts
	}
	if collMatch.MatchType != MatchTypeExact && collMatch.MatchType != MatchTypeFuzzy {
		return collMatch, collAlts
	}
	owner := collMatch.Entity.InstitutionKey
	if owner != nil && *owner == instMatch.EntityKey() {
		return collMatch, collAlts
	}

	if collMatch.Reasons.ContainsAny(ReasonKeyMatch, ReasonIdentifierMatch) {
		collMatch.Reasons.Add(ReasonInstitutionCollectionMismatch)
		return collMatch, collAlts
	}

	demoted := collMatch
	demoted.Status = ""
	demoted.Reasons = demoted.Reasons.Clone()
	demoted.Reasons.Add(ReasonInstitutionCollectionMismatch)
	return NoMatch[models.Collection](StatusAmbiguousInstitutionMismatch), append([]Match[models.Collection]{demoted}, collAlts...)
}
