// Package memory provides an in-memory implementation of the lookup store,
// used by tests and as the default wiring when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store"
	"collreg/pkg/platform/sentinel"
)

// Memory is a mutex-guarded lookup store for one entity type.
type Memory[T models.Entity] struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]T
	mappings map[uuid.UUID][]models.OccurrenceMapping
}

// NewInstitutions creates an empty in-memory institution store.
func NewInstitutions() *Memory[models.Institution] {
	return newMemory[models.Institution]()
}

// NewCollections creates an empty in-memory collection store.
func NewCollections() *Memory[models.Collection] {
	return newMemory[models.Collection]()
}

func newMemory[T models.Entity]() *Memory[T] {
	return &Memory[T]{
		entities: make(map[uuid.UUID]T),
		mappings: make(map[uuid.UUID][]models.OccurrenceMapping),
	}
}

// Put inserts or replaces an entity snapshot.
func (m *Memory[T]) Put(entity T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.EntityKey()] = entity
}

// AddMapping registers an occurrence mapping for an already stored entity.
func (m *Memory[T]) AddMapping(entityKey uuid.UUID, mapping models.OccurrenceMapping) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[entityKey] = append(m.mappings[entityKey], mapping)
}

func (m *Memory[T]) FindByKey(_ context.Context, key uuid.UUID) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entity, ok := m.entities[key]; ok {
		return &entity, nil
	}
	return nil, sentinel.ErrNotFound
}

func (m *Memory[T]) FindByIdentifier(_ context.Context, identifier string) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []T
	for _, entity := range m.entities {
		for _, id := range entity.EntityIdentifiers() {
			if id.Matchable() && eqFold(id.Identifier, identifier) {
				found = append(found, entity)
				break
			}
		}
	}
	return found, nil
}

func (m *Memory[T]) FindByCode(_ context.Context, code string) ([]store.CodeHit[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []store.CodeHit[T]
	for _, entity := range m.entities {
		if eqFold(entity.EntityCode(), code) {
			hits = append(hits, store.CodeHit[T]{Entity: entity})
			continue
		}
		for _, alt := range entity.EntityAlternativeCodes() {
			if eqFold(alt.Code, code) {
				hits = append(hits, store.CodeHit[T]{Entity: entity, AlternativeCode: true})
				break
			}
		}
	}
	return hits, nil
}

func (m *Memory[T]) FindByName(_ context.Context, name string) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []T
	for _, entity := range m.entities {
		if eqFold(entity.EntityName(), name) {
			found = append(found, entity)
		}
	}
	return found, nil
}

func (m *Memory[T]) FindMappings(_ context.Context, datasetKey uuid.UUID, code, identifier string) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []T
	for key, mappings := range m.mappings {
		entity, ok := m.entities[key]
		if !ok {
			continue
		}
		for _, mapping := range mappings {
			if mappingMatches(mapping, datasetKey, code, identifier) {
				found = append(found, entity)
				break
			}
		}
	}
	return found, nil
}

// mappingMatches applies the wildcard semantics of occurrence mappings: an
// empty stored code or identifier constrains nothing within the dataset.
func mappingMatches(m models.OccurrenceMapping, datasetKey uuid.UUID, code, identifier string) bool {
	if m.DatasetKey != datasetKey {
		return false
	}
	if m.Code != "" && !eqFold(m.Code, code) {
		return false
	}
	if m.Identifier != "" && !eqFold(m.Identifier, identifier) {
		return false
	}
	return true
}

func eqFold(stored, supplied string) bool {
	if supplied == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(supplied))
}
