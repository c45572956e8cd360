// Package models holds the read-only snapshots of registry entities that the
// lookup engine matches against. The storage layer owns the full entities;
// these carry only the fields that matching and result reporting need.
package models

import (
	"github.com/google/uuid"
)

// IdentifierType classifies an external identifier attached to an entity.
type IdentifierType string

const (
	IdentifierTypeLSID  IdentifierType = "LSID"
	IdentifierTypeDOI   IdentifierType = "DOI"
	IdentifierTypeURI   IdentifierType = "URI"
	IdentifierTypeCiteS IdentifierType = "CITES"

	// IdentifierTypeGRSciCollID mirrors the entity's own primary key. It is
	// assigned internally and never supplied by publishers, so it is excluded
	// from identifier matching.
	IdentifierTypeGRSciCollID IdentifierType = "GRSCICOLL_ID"
)

// Identifier is an external identifier attached to an institution or collection.
type Identifier struct {
	Type       IdentifierType `json:"type"`
	Identifier string         `json:"identifier"`
}

// Matchable reports whether the identifier may participate in matching.
func (i Identifier) Matchable() bool {
	return i.Type != IdentifierTypeGRSciCollID
}

// AlternativeCode is a secondary code an entity is also known by.
type AlternativeCode struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// OccurrenceMapping is a publisher-curated, dataset-scoped association between
// raw occurrence codes/identifiers and a specific entity. An empty Code or
// Identifier acts as a wildcard within the dataset.
type OccurrenceMapping struct {
	DatasetKey uuid.UUID `json:"datasetKey"`
	Code       string    `json:"code,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
}

// Institution is the lookup snapshot of an institution record.
type Institution struct {
	Key              uuid.UUID         `json:"key"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Active           bool              `json:"active"`
	Country          Country           `json:"country,omitempty"`
	AlternativeCodes []AlternativeCode `json:"alternativeCodes,omitempty"`
	Identifiers      []Identifier      `json:"identifiers,omitempty"`
}

// Collection is the lookup snapshot of a collection record, including the
// owning institution when the collection has one.
type Collection struct {
	Key              uuid.UUID         `json:"key"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Active           bool              `json:"active"`
	Country          Country           `json:"country,omitempty"`
	AlternativeCodes []AlternativeCode `json:"alternativeCodes,omitempty"`
	Identifiers      []Identifier      `json:"identifiers,omitempty"`

	InstitutionKey  *uuid.UUID `json:"institutionKey,omitempty"`
	InstitutionCode string     `json:"institutionCode,omitempty"`
	InstitutionName string     `json:"institutionName,omitempty"`
}

// Entity is implemented by Institution and Collection so the matcher and the
// stores can treat both uniformly.
type Entity interface {
	EntityKey() uuid.UUID
	EntityCode() string
	EntityName() string
	EntityActive() bool
	EntityCountry() Country
	EntityIdentifiers() []Identifier
	EntityAlternativeCodes() []AlternativeCode
}

func (i Institution) EntityKey() uuid.UUID                      { return i.Key }
func (i Institution) EntityCode() string                        { return i.Code }
func (i Institution) EntityName() string                        { return i.Name }
func (i Institution) EntityActive() bool                        { return i.Active }
func (i Institution) EntityCountry() Country                    { return i.Country }
func (i Institution) EntityIdentifiers() []Identifier           { return i.Identifiers }
func (i Institution) EntityAlternativeCodes() []AlternativeCode { return i.AlternativeCodes }

func (c Collection) EntityKey() uuid.UUID                      { return c.Key }
func (c Collection) EntityCode() string                        { return c.Code }
func (c Collection) EntityName() string                        { return c.Name }
func (c Collection) EntityActive() bool                        { return c.Active }
func (c Collection) EntityCountry() Country                    { return c.Country }
func (c Collection) EntityIdentifiers() []Identifier           { return c.Identifiers }
func (c Collection) EntityAlternativeCodes() []AlternativeCode { return c.AlternativeCodes }
