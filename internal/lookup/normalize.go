package lookup

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"collreg/internal/collections/models"
)

const urnUUIDPrefix = "urn:uuid:"

// cleanHint trims a raw hint. Comparisons downstream are case-insensitive, so
// trimming is all the engine itself needs to do.
func cleanHint(s string) string {
	return strings.TrimSpace(s)
}

// cleanIdentifier additionally strips the urn:uuid: prefix publishers often
// wrap identifiers in.
func cleanIdentifier(s string) string {
	s = cleanHint(s)
	if len(s) >= len(urnUUIDPrefix) && strings.EqualFold(s[:len(urnUUIDPrefix)], urnUUIDPrefix) {
		s = s[len(urnUUIDPrefix):]
	}
	return s
}

// extractKey tries to read a primary key out of an identifier hint: a raw
// UUID, a urn:uuid form, or a canonical entity URL containing pathMarker
// (e.g. "/grscicoll/institution/"). A hint that is not key-shaped simply
// yields ok=false; it is never an error.
func extractKey(identifier, pathMarker string) (uuid.UUID, bool) {
	s := cleanIdentifier(identifier)
	if s == "" {
		return uuid.Nil, false
	}

	if key, err := uuid.Parse(s); err == nil {
		return key, true
	}

	idx := strings.Index(strings.ToLower(s), pathMarker)
	if idx < 0 {
		return uuid.Nil, false
	}
	rest := s[idx+len(pathMarker):]
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	key, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return key, true
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName reduces a display name for lenient comparison: accents stripped,
// whitespace removed, case folded.
func foldName(s string) string {
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ownerMatches applies the lenient owner-hint comparison: the supplied owner
// code matches an entity when it equals its code, its folded name, or one of
// its matchable identifiers.
func ownerMatches(entity models.Entity, ownerCode string) bool {
	owner := cleanHint(ownerCode)
	if owner == "" {
		return true
	}
	if strings.EqualFold(entity.EntityCode(), owner) {
		return true
	}
	if foldName(entity.EntityName()) == foldName(owner) {
		return true
	}
	for _, id := range entity.EntityIdentifiers() {
		if id.Matchable() && strings.EqualFold(id.Identifier, owner) {
			return true
		}
	}
	return false
}
