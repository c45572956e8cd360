package lookup

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collreg/internal/collections/models"
)

func institutionCandidate(active bool, reasons ...Reason) candidate[models.Institution] {
	return candidate[models.Institution]{
		entity:  models.Institution{Key: uuid.New(), Code: "X", Name: "X", Active: active},
		reasons: NewReasonSet(reasons...),
	}
}

func TestClassifyPrecedence(t *testing.T) {
	t.Run("identifier outranks code", func(t *testing.T) {
		byIdentifier := institutionCandidate(false, ReasonIdentifierMatch)
		byCode := institutionCandidate(true, ReasonCodeMatch)

		match, alternatives := classify([]candidate[models.Institution]{byCode, byIdentifier})

		assert.Equal(t, MatchTypeExact, match.MatchType)
		assert.Equal(t, StatusAccepted, match.Status)
		assert.Equal(t, byIdentifier.entity.Key, match.EntityKey())
		require.Len(t, alternatives, 1)
		assert.Equal(t, byCode.entity.Key, alternatives[0].EntityKey())
	})

	t.Run("code outranks alternative code", func(t *testing.T) {
		byAlternative := institutionCandidate(true, ReasonAlternativeCodeMatch)
		byCode := institutionCandidate(false, ReasonCodeMatch)

		match, _ := classify([]candidate[models.Institution]{byAlternative, byCode})

		assert.Equal(t, MatchTypeFuzzy, match.MatchType)
		assert.Equal(t, StatusDoubtful, match.Status)
		assert.Equal(t, byCode.entity.Key, match.EntityKey())
	})

	t.Run("alternative code outranks name", func(t *testing.T) {
		byName := institutionCandidate(true, ReasonNameMatch)
		byAlternative := institutionCandidate(false, ReasonAlternativeCodeMatch)

		match, _ := classify([]candidate[models.Institution]{byName, byAlternative})

		assert.Equal(t, byAlternative.entity.Key, match.EntityKey())
	})

	t.Run("empty set is none", func(t *testing.T) {
		match, alternatives := classify[models.Institution](nil)

		assert.Equal(t, MatchTypeNone, match.MatchType)
		assert.Empty(t, match.Status)
		assert.Nil(t, match.Entity)
		assert.Empty(t, alternatives)
	})
}

func TestClassifyTieBreaks(t *testing.T) {
	t.Run("active wins over inactive", func(t *testing.T) {
		idle := institutionCandidate(false, ReasonCodeMatch)
		active := institutionCandidate(true, ReasonCodeMatch)

		match, alternatives := classify([]candidate[models.Institution]{idle, active})

		assert.Equal(t, active.entity.Key, match.EntityKey())
		assert.Len(t, alternatives, 1)
	})

	t.Run("country wins before active", func(t *testing.T) {
		activeElsewhere := institutionCandidate(true, ReasonCodeMatch)
		idleLocal := institutionCandidate(false, ReasonCodeMatch, ReasonCountryMatch)

		match, _ := classify([]candidate[models.Institution]{activeElsewhere, idleLocal})

		assert.Equal(t, idleLocal.entity.Key, match.EntityKey())
	})

	t.Run("institution consistency wins first", func(t *testing.T) {
		local := institutionCandidate(true, ReasonCodeMatch, ReasonCountryMatch)
		owned := institutionCandidate(false, ReasonCodeMatch, ReasonBelongsToInstitutionMatched)

		match, _ := classify([]candidate[models.Institution]{local, owned})

		assert.Equal(t, owned.entity.Key, match.EntityKey())
	})

	t.Run("no disambiguator means none", func(t *testing.T) {
		first := institutionCandidate(true, ReasonCodeMatch)
		second := institutionCandidate(true, ReasonCodeMatch)

		match, alternatives := classify([]candidate[models.Institution]{first, second})

		assert.Equal(t, MatchTypeNone, match.MatchType)
		assert.Empty(t, match.Status)
		assert.Len(t, alternatives, 2)
	})
}

func TestClassifyDuplicatedIdentifier(t *testing.T) {
	first := institutionCandidate(true, ReasonIdentifierMatch)
	second := institutionCandidate(true, ReasonIdentifierMatch, ReasonCodeMatch)

	match, alternatives := classify([]candidate[models.Institution]{first, second})

	assert.Equal(t, MatchTypeNone, match.MatchType)
	assert.Len(t, alternatives, 2)
}

func TestAlternativeMatchType(t *testing.T) {
	assert.Equal(t, MatchTypeExact, matchTypeFor(NewReasonSet(ReasonIdentifierMatch)))
	assert.Equal(t, MatchTypeExact, matchTypeFor(NewReasonSet(ReasonKeyMatch, ReasonCodeMatch)))
	assert.Equal(t, MatchTypeFuzzy, matchTypeFor(NewReasonSet(ReasonNameMatch)))
}
