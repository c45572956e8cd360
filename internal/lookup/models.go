// Package lookup implements the entity-resolution engine: given fragmentary
// identifying hints from a publisher, it resolves the most likely institution
// and collection records, explains why each candidate matched, and flags
// uncertain or contradictory results.
package lookup

import (
	"encoding/json"

	"github.com/google/uuid"

	"collreg/internal/collections/models"
)

// MatchType classifies how a primary match was resolved.
type MatchType string

const (
	// MatchTypeNone means no candidate survived classification.
	MatchTypeNone MatchType = "NONE"
	// MatchTypeExact means the match was resolved via a key or identifier.
	MatchTypeExact MatchType = "EXACT"
	// MatchTypeFuzzy means the match was resolved via code, alternative code
	// or name equality only.
	MatchTypeFuzzy MatchType = "FUZZY"
	// MatchTypeExplicitMapping means a dataset-scoped occurrence mapping
	// resolved the match, bypassing generic matching.
	MatchTypeExplicitMapping MatchType = "EXPLICIT_MAPPING"
)

// Status qualifies the primary match. Alternative matches never carry one.
type Status string

const (
	StatusAccepted                     Status = "ACCEPTED"
	StatusDoubtful                     Status = "DOUBTFUL"
	StatusAmbiguousInstitutionMismatch Status = "AMBIGUOUS_INSTITUTION_MISMATCH"
	StatusAmbiguousExplicitMappings    Status = "AMBIGUOUS_EXPLICIT_MAPPINGS"
)

// Reason records one independent justification for a match.
type Reason string

const (
	ReasonKeyMatch                      Reason = "KEY_MATCH"
	ReasonIdentifierMatch               Reason = "IDENTIFIER_MATCH"
	ReasonCodeMatch                     Reason = "CODE_MATCH"
	ReasonAlternativeCodeMatch          Reason = "ALTERNATIVE_CODE_MATCH"
	ReasonNameMatch                     Reason = "NAME_MATCH"
	ReasonCountryMatch                  Reason = "COUNTRY_MATCH"
	ReasonBelongsToInstitutionMatched   Reason = "BELONGS_TO_INSTITUTION_MATCHED"
	ReasonDifferentOwner                Reason = "DIFFERENT_OWNER"
	ReasonInstitutionCollectionMismatch Reason = "INST_COLL_MISMATCH"
)

// reasonOrder fixes the display order of reason sets. Set membership is what
// matters for equality; iteration stays stable for clients.
var reasonOrder = []Reason{
	ReasonKeyMatch,
	ReasonIdentifierMatch,
	ReasonCodeMatch,
	ReasonAlternativeCodeMatch,
	ReasonNameMatch,
	ReasonCountryMatch,
	ReasonBelongsToInstitutionMatched,
	ReasonDifferentOwner,
	ReasonInstitutionCollectionMismatch,
}

// ReasonSet is a set of match reasons with stable iteration order.
type ReasonSet struct {
	members map[Reason]struct{}
}

// NewReasonSet builds a set from the given reasons.
func NewReasonSet(reasons ...Reason) ReasonSet {
	var s ReasonSet
	for _, r := range reasons {
		s.Add(r)
	}
	return s
}

// Add inserts a reason; duplicates are ignored.
func (s *ReasonSet) Add(r Reason) {
	if s.members == nil {
		s.members = make(map[Reason]struct{}, 4)
	}
	s.members[r] = struct{}{}
}

// Contains reports set membership.
func (s ReasonSet) Contains(r Reason) bool {
	_, ok := s.members[r]
	return ok
}

// ContainsAny reports whether any of the given reasons is present.
func (s ReasonSet) ContainsAny(reasons ...Reason) bool {
	for _, r := range reasons {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// Len returns the number of reasons in the set.
func (s ReasonSet) Len() int { return len(s.members) }

// Slice returns the reasons in canonical order.
func (s ReasonSet) Slice() []Reason {
	if len(s.members) == 0 {
		return nil
	}
	out := make([]Reason, 0, len(s.members))
	for _, r := range reasonOrder {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s ReasonSet) Clone() ReasonSet {
	var c ReasonSet
	for r := range s.members {
		c.Add(r)
	}
	return c
}

// MarshalJSON encodes the set as an array in canonical order.
func (s ReasonSet) MarshalJSON() ([]byte, error) {
	reasons := s.Slice()
	if reasons == nil {
		reasons = []Reason{}
	}
	return json.Marshal(reasons)
}

// UnmarshalJSON decodes an array of reasons.
func (s *ReasonSet) UnmarshalJSON(data []byte) error {
	var reasons []Reason
	if err := json.Unmarshal(data, &reasons); err != nil {
		return err
	}
	*s = NewReasonSet(reasons...)
	return nil
}

// Match is the outcome of resolving one entity type. Entity is nil when
// MatchType is NONE; Status is empty on alternative matches and on NONE
// results without an applicable ambiguity rule.
type Match[T models.Entity] struct {
	MatchType MatchType `json:"matchType"`
	Status    Status    `json:"status,omitempty"`
	Reasons   ReasonSet `json:"reasons"`
	Entity    *T        `json:"entityMatched,omitempty"`
}

// NoMatch builds a NONE match with an optional status.
func NoMatch[T models.Entity](status Status) Match[T] {
	return Match[T]{MatchType: MatchTypeNone, Status: status}
}

// EntityKey returns the matched entity's key, or uuid.Nil for NONE matches.
func (m Match[T]) EntityKey() uuid.UUID {
	if m.Entity == nil {
		return uuid.Nil
	}
	return (*m.Entity).EntityKey()
}

// LookupParams carries the raw hints supplied by the publisher. All strings
// may be empty; they are normalized before comparison.
type LookupParams struct {
	InstitutionCode      string
	InstitutionID        string
	CollectionCode       string
	CollectionID         string
	OwnerInstitutionCode string
	Country              models.Country
	DatasetKey           *uuid.UUID
	Verbose              bool
}

// AlternativeMatches lists the rejected candidates per entity type, populated
// only for verbose lookups.
type AlternativeMatches struct {
	InstitutionMatches []Match[models.Institution] `json:"institutionMatches"`
	CollectionMatches  []Match[models.Collection]  `json:"collectionMatches"`
}

// LookupResult is the full answer for one lookup call. Exactly one primary
// match exists per entity type; absence is a NONE match, never an omission.
type LookupResult struct {
	InstitutionMatch   Match[models.Institution] `json:"institutionMatch"`
	CollectionMatch    Match[models.Collection]  `json:"collectionMatch"`
	AlternativeMatches AlternativeMatches        `json:"alternativeMatches"`
}
