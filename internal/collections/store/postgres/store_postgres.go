// Package postgres persists the registry snapshot the lookup engine searches.
// Institutions and collections share one entity table with a type
// discriminator; identifiers, alternative codes and occurrence mappings hang
// off it. All string predicates compare lower(trim()) on both sides.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store"
	"collreg/pkg/platform/sentinel"
)

const (
	entityTypeInstitution = "institution"
	entityTypeCollection  = "collection"
)

const entitySelect = `
SELECT e.key, e.code, e.name, e.active, e.country, e.institution_key, o.code, o.name
FROM grscicoll_entity e
LEFT JOIN grscicoll_entity o ON o.key = e.institution_key`

// Store is a PostgreSQL-backed lookup store for one entity type.
type Store[T models.Entity] struct {
	db         *sql.DB
	entityType string
	build      func(entityRow, []models.Identifier, []models.AlternativeCode) T
}

// NewInstitutions constructs a PostgreSQL-backed institution store.
func NewInstitutions(db *sql.DB) *Store[models.Institution] {
	return &Store[models.Institution]{
		db:         db,
		entityType: entityTypeInstitution,
		build:      buildInstitution,
	}
}

// NewCollections constructs a PostgreSQL-backed collection store.
func NewCollections(db *sql.DB) *Store[models.Collection] {
	return &Store[models.Collection]{
		db:         db,
		entityType: entityTypeCollection,
		build:      buildCollection,
	}
}

type entityRow struct {
	key             uuid.UUID
	code            string
	name            string
	active          bool
	country         sql.NullString
	institutionKey  uuid.NullUUID
	institutionCode sql.NullString
	institutionName sql.NullString
}

func (r *entityRow) scan(scanner interface{ Scan(...any) error }) error {
	return scanner.Scan(
		&r.key, &r.code, &r.name, &r.active, &r.country,
		&r.institutionKey, &r.institutionCode, &r.institutionName,
	)
}

func buildInstitution(row entityRow, identifiers []models.Identifier, alternativeCodes []models.AlternativeCode) models.Institution {
	return models.Institution{
		Key:              row.key,
		Code:             row.code,
		Name:             row.name,
		Active:           row.active,
		Country:          models.Country(row.country.String),
		Identifiers:      identifiers,
		AlternativeCodes: alternativeCodes,
	}
}

func buildCollection(row entityRow, identifiers []models.Identifier, alternativeCodes []models.AlternativeCode) models.Collection {
	collection := models.Collection{
		Key:              row.key,
		Code:             row.code,
		Name:             row.name,
		Active:           row.active,
		Country:          models.Country(row.country.String),
		InstitutionCode:  row.institutionCode.String,
		InstitutionName:  row.institutionName.String,
		Identifiers:      identifiers,
		AlternativeCodes: alternativeCodes,
	}
	if row.institutionKey.Valid {
		key := row.institutionKey.UUID
		collection.InstitutionKey = &key
	}
	return collection
}

func (s *Store[T]) FindByKey(ctx context.Context, key uuid.UUID) (*T, error) {
	query := entitySelect + ` WHERE e.key = $1 AND e.entity_type = $2`

	var row entityRow
	if err := row.scan(s.db.QueryRowContext(ctx, query, key, s.entityType)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find %s by key: %w", s.entityType, err)
	}

	entities, err := s.hydrate(ctx, []entityRow{row})
	if err != nil {
		return nil, err
	}
	return &entities[0], nil
}

func (s *Store[T]) FindByIdentifier(ctx context.Context, identifier string) ([]T, error) {
	query := entitySelect + `
JOIN entity_identifier i ON i.entity_key = e.key
WHERE e.entity_type = $1
  AND i.type <> $2
  AND lower(trim(i.identifier)) = lower(trim($3))`

	rows, err := s.queryRows(ctx, query, s.entityType, models.IdentifierTypeGRSciCollID, identifier)
	if err != nil {
		return nil, fmt.Errorf("find %s by identifier: %w", s.entityType, err)
	}
	return s.hydrate(ctx, rows)
}

func (s *Store[T]) FindByCode(ctx context.Context, code string) ([]store.CodeHit[T], error) {
	// An entity matching on both its primary and an alternative code counts
	// as a primary hit; DISTINCT ON with the ordering below keeps the
	// primary row.
	query := `
SELECT DISTINCT ON (e.key)
       e.key, e.code, e.name, e.active, e.country, e.institution_key, o.code, o.name,
       hit.alternative
FROM (
    SELECT key, false AS alternative FROM grscicoll_entity
    WHERE entity_type = $1 AND lower(trim(code)) = lower(trim($2))
    UNION ALL
    SELECT ac.entity_key, true FROM entity_alternative_code ac
    JOIN grscicoll_entity ae ON ae.key = ac.entity_key
    WHERE ae.entity_type = $1 AND lower(trim(ac.code)) = lower(trim($2))
) hit
JOIN grscicoll_entity e ON e.key = hit.key
LEFT JOIN grscicoll_entity o ON o.key = e.institution_key
ORDER BY e.key, hit.alternative`

	result, err := s.db.QueryContext(ctx, query, s.entityType, code)
	if err != nil {
		return nil, fmt.Errorf("find %s by code: %w", s.entityType, err)
	}
	defer result.Close()

	var (
		entityRows   []entityRow
		alternatives []bool
	)
	for result.Next() {
		var (
			row entityRow
			alt bool
		)
		if err := result.Scan(
			&row.key, &row.code, &row.name, &row.active, &row.country,
			&row.institutionKey, &row.institutionCode, &row.institutionName,
			&alt,
		); err != nil {
			return nil, fmt.Errorf("scan %s code hit: %w", s.entityType, err)
		}
		entityRows = append(entityRows, row)
		alternatives = append(alternatives, alt)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("find %s by code: %w", s.entityType, err)
	}

	entities, err := s.hydrate(ctx, entityRows)
	if err != nil {
		return nil, err
	}
	hits := make([]store.CodeHit[T], len(entities))
	for i, entity := range entities {
		hits[i] = store.CodeHit[T]{Entity: entity, AlternativeCode: alternatives[i]}
	}
	return hits, nil
}

func (s *Store[T]) FindByName(ctx context.Context, name string) ([]T, error) {
	query := entitySelect + `
WHERE e.entity_type = $1 AND lower(trim(e.name)) = lower(trim($2))`

	rows, err := s.queryRows(ctx, query, s.entityType, name)
	if err != nil {
		return nil, fmt.Errorf("find %s by name: %w", s.entityType, err)
	}
	return s.hydrate(ctx, rows)
}

func (s *Store[T]) FindMappings(ctx context.Context, datasetKey uuid.UUID, code, identifier string) ([]T, error) {
	// An empty stored code or identifier is a wildcard within the dataset; an
	// empty supplied value only passes wildcard fields.
	query := entitySelect + `
JOIN occurrence_mapping m ON m.entity_key = e.key
WHERE e.entity_type = $1
  AND m.dataset_key = $2
  AND (m.code IS NULL OR m.code = '' OR lower(trim(m.code)) = lower(trim($3)))
  AND (m.identifier IS NULL OR m.identifier = '' OR lower(trim(m.identifier)) = lower(trim($4)))`

	rows, err := s.queryRows(ctx, query, s.entityType, datasetKey, code, identifier)
	if err != nil {
		return nil, fmt.Errorf("find %s mappings: %w", s.entityType, err)
	}
	return s.hydrate(ctx, dedupeRows(rows))
}

func (s *Store[T]) queryRows(ctx context.Context, query string, args ...any) ([]entityRow, error) {
	result, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var rows []entityRow
	for result.Next() {
		var row entityRow
		if err := row.scan(result); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

// dedupeRows collapses entities reached through several mappings.
func dedupeRows(rows []entityRow) []entityRow {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if _, ok := seen[row.key]; ok {
			continue
		}
		seen[row.key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// hydrate loads identifiers and alternative codes for the rows in one round
// trip each and assembles the domain entities.
func (s *Store[T]) hydrate(ctx context.Context, rows []entityRow) ([]T, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.key.String()
	}

	identifiers, err := s.loadIdentifiers(ctx, keys)
	if err != nil {
		return nil, err
	}
	alternativeCodes, err := s.loadAlternativeCodes(ctx, keys)
	if err != nil {
		return nil, err
	}

	entities := make([]T, len(rows))
	for i, row := range rows {
		entities[i] = s.build(row, identifiers[row.key], alternativeCodes[row.key])
	}
	return entities, nil
}

func (s *Store[T]) loadIdentifiers(ctx context.Context, keys []string) (map[uuid.UUID][]models.Identifier, error) {
	query := `
SELECT entity_key, type, identifier FROM entity_identifier
WHERE entity_key = ANY($1::uuid[])`

	result, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("load identifiers: %w", err)
	}
	defer result.Close()

	identifiers := make(map[uuid.UUID][]models.Identifier)
	for result.Next() {
		var (
			key uuid.UUID
			id  models.Identifier
		)
		if err := result.Scan(&key, &id.Type, &id.Identifier); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		identifiers[key] = append(identifiers[key], id)
	}
	return identifiers, result.Err()
}

func (s *Store[T]) loadAlternativeCodes(ctx context.Context, keys []string) (map[uuid.UUID][]models.AlternativeCode, error) {
	query := `
SELECT entity_key, code, COALESCE(description, '') FROM entity_alternative_code
WHERE entity_key = ANY($1::uuid[])`

	result, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("load alternative codes: %w", err)
	}
	defer result.Close()

	alternativeCodes := make(map[uuid.UUID][]models.AlternativeCode)
	for result.Next() {
		var (
			key uuid.UUID
			ac  models.AlternativeCode
		)
		if err := result.Scan(&key, &ac.Code, &ac.Description); err != nil {
			return nil, fmt.Errorf("scan alternative code: %w", err)
		}
		alternativeCodes[key] = append(alternativeCodes[key], ac)
	}
	return alternativeCodes, result.Err()
}
