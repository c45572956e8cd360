package lookup

import (
	"collreg/internal/collections/models"
)

// candidate is one entity under consideration, carrying the reasons
// accumulated for it across the independent gathering predicates.
type candidate[T models.Entity] struct {
	entity  T
	reasons ReasonSet
}

func (c candidate[T]) toMatch(matchType MatchType, status Status) Match[T] {
	entity := c.entity
	return Match[T]{
		MatchType: matchType,
		Status:    status,
		Reasons:   c.reasons.Clone(),
		Entity:    &entity,
	}
}

// tier is one row of the precedence table: the reasons that place a candidate
// in the tier and the match type and status a unique winner receives.
type tier struct {
	reasons   []Reason
	matchType MatchType
	status    Status
}

// precedence is ordered highest first. Key and identifier equality share the
// top tier; both are strong identity signals.
var precedence = []tier{
	{[]Reason{ReasonKeyMatch, ReasonIdentifierMatch}, MatchTypeExact, StatusAccepted},
	{[]Reason{ReasonCodeMatch}, MatchTypeFuzzy, StatusDoubtful},
	{[]Reason{ReasonAlternativeCodeMatch}, MatchTypeFuzzy, StatusDoubtful},
	{[]Reason{ReasonNameMatch}, MatchTypeFuzzy, StatusDoubtful},
}

// classify selects the primary match from the gathered candidates and returns
// it together with the rejected candidates as alternatives. An empty
// candidate set, an ambiguous tier, or a duplicated identifier all yield a
// NONE primary; a more specific status is only ever attached by the caller's
// reconciliation rules.
func classify[T models.Entity](candidates []candidate[T]) (Match[T], []Match[T]) {
	if len(candidates) == 0 {
		return NoMatch[T](""), nil
	}

	// An identifier shared by two distinct entities identifies neither.
	if countWith(candidates, ReasonIdentifierMatch) > 1 {
		return NoMatch[T](""), alternatives(candidates, nil)
	}

	for _, t := range precedence {
		tied := filterByReasons(candidates, t.reasons)
		if len(tied) == 0 {
			continue
		}
		if winner, ok := breakTie(tied); ok {
			return winner.toMatch(t.matchType, t.status), alternatives(candidates, &winner)
		}
		return NoMatch[T](""), alternatives(candidates, nil)
	}

	return NoMatch[T](""), alternatives(candidates, nil)
}

// breakTie resolves a multi-candidate tier. Each disambiguator is applied to
// the full tied set and wins only when it singles out exactly one candidate;
// otherwise the next one is tried.
func breakTie[T models.Entity](tied []candidate[T]) (candidate[T], bool) {
	if len(tied) == 1 {
		return tied[0], true
	}
	disambiguators := []func(candidate[T]) bool{
		func(c candidate[T]) bool { return c.reasons.Contains(ReasonBelongsToInstitutionMatched) },
		func(c candidate[T]) bool { return !c.reasons.Contains(ReasonDifferentOwner) },
		func(c candidate[T]) bool { return c.reasons.Contains(ReasonCountryMatch) },
		func(c candidate[T]) bool { return c.entity.EntityActive() },
	}
	for _, keep := range disambiguators {
		if winner, ok := unique(tied, keep); ok {
			return winner, true
		}
	}
	var zero candidate[T]
	return zero, false
}

func unique[T models.Entity](candidates []candidate[T], keep func(candidate[T]) bool) (candidate[T], bool) {
	var (
		winner candidate[T]
		found  bool
	)
	for _, c := range candidates {
		if !keep(c) {
			continue
		}
		if found {
			var zero candidate[T]
			return zero, false
		}
		winner, found = c, true
	}
	return winner, found
}

func filterByReasons[T models.Entity](candidates []candidate[T], reasons []Reason) []candidate[T] {
	var out []candidate[T]
	for _, c := range candidates {
		if c.reasons.ContainsAny(reasons...) {
			out = append(out, c)
		}
	}
	return out
}

func countWith[T models.Entity](candidates []candidate[T], reason Reason) int {
	n := 0
	for _, c := range candidates {
		if c.reasons.Contains(reason) {
			n++
		}
	}
	return n
}

// alternatives converts every candidate except the winner into an alternative
// match carrying its own reasons and no status.
func alternatives[T models.Entity](candidates []candidate[T], winner *candidate[T]) []Match[T] {
	var out []Match[T]
	for _, c := range candidates {
		if winner != nil && c.entity.EntityKey() == winner.entity.EntityKey() {
			continue
		}
		out = append(out, c.toMatch(matchTypeFor(c.reasons), ""))
	}
	return out
}

// matchTypeFor derives the match type an alternative would have had from its
// strongest reason.
func matchTypeFor(reasons ReasonSet) MatchType {
	if reasons.ContainsAny(ReasonKeyMatch, ReasonIdentifierMatch) {
		return MatchTypeExact
	}
	return MatchTypeFuzzy
}
