package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"collreg/internal/collections/models"
	"collreg/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory[models.Institution]
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInstitutions()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newInstitution(code, name string) models.Institution {
	return models.Institution{
		Key:  uuid.New(),
		Code: code,
		Name: name,
	}
}

func (s *MemoryStoreSuite) TestFindByKey() {
	s.Run("finds stored entity", func() {
		institution := s.newInstitution("I1", "Institution 1")
		s.store.Put(institution)

		found, err := s.store.FindByKey(s.ctx, institution.Key)
		s.Require().NoError(err)
		s.Equal(institution.Key, found.Key)
	})

	s.Run("returns ErrNotFound for unknown key", func() {
		_, err := s.store.FindByKey(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestFindByIdentifier() {
	institution := s.newInstitution("I1", "Institution 1")
	institution.Identifiers = []models.Identifier{
		{Type: models.IdentifierTypeLSID, Identifier: "lsid:i1"},
		{Type: models.IdentifierTypeGRSciCollID, Identifier: "internal:i1"},
	}
	s.store.Put(institution)

	s.Run("matches trimmed and case folded", func() {
		found, err := s.store.FindByIdentifier(s.ctx, "  LSID:I1 ")
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(institution.Key, found[0].Key)
	})

	s.Run("never matches internal identifiers", func() {
		found, err := s.store.FindByIdentifier(s.ctx, "internal:i1")
		s.Require().NoError(err)
		s.Empty(found)
	})

	s.Run("empty identifier matches nothing", func() {
		found, err := s.store.FindByIdentifier(s.ctx, "")
		s.Require().NoError(err)
		s.Empty(found)
	})
}

func (s *MemoryStoreSuite) TestFindByCode() {
	institution := s.newInstitution("NHM", "Natural History Museum")
	institution.AlternativeCodes = []models.AlternativeCode{{Code: "NHMUK"}}
	s.store.Put(institution)

	s.Run("primary code hit", func() {
		hits, err := s.store.FindByCode(s.ctx, "nhm")
		s.Require().NoError(err)
		s.Require().Len(hits, 1)
		s.False(hits[0].AlternativeCode)
	})

	s.Run("alternative code hit is tagged", func() {
		hits, err := s.store.FindByCode(s.ctx, "NHMUK")
		s.Require().NoError(err)
		s.Require().Len(hits, 1)
		s.True(hits[0].AlternativeCode)
	})

	s.Run("no hit for unknown code", func() {
		hits, err := s.store.FindByCode(s.ctx, "ZZZ")
		s.Require().NoError(err)
		s.Empty(hits)
	})
}

func (s *MemoryStoreSuite) TestFindByName() {
	institution := s.newInstitution("I1", "Institution 1")
	s.store.Put(institution)

	found, err := s.store.FindByName(s.ctx, " institution 1 ")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(institution.Key, found[0].Key)
}

func (s *MemoryStoreSuite) TestFindMappings() {
	institution := s.newInstitution("I1", "Institution 1")
	s.store.Put(institution)
	datasetKey := uuid.New()

	s.Run("matches dataset and code", func() {
		s.store.AddMapping(institution.Key, models.OccurrenceMapping{DatasetKey: datasetKey, Code: "RAW"})

		found, err := s.store.FindMappings(s.ctx, datasetKey, "raw", "")
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(institution.Key, found[0].Key)
	})

	s.Run("other dataset does not match", func() {
		found, err := s.store.FindMappings(s.ctx, uuid.New(), "raw", "")
		s.Require().NoError(err)
		s.Empty(found)
	})

	s.Run("constrained code must match", func() {
		found, err := s.store.FindMappings(s.ctx, datasetKey, "other", "")
		s.Require().NoError(err)
		s.Empty(found)
	})

	s.Run("wildcard mapping matches any hint", func() {
		wildcarded := s.newInstitution("I2", "Institution 2")
		s.store.Put(wildcarded)
		s.store.AddMapping(wildcarded.Key, models.OccurrenceMapping{DatasetKey: datasetKey})

		found, err := s.store.FindMappings(s.ctx, datasetKey, "anything", "whatever")
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(wildcarded.Key, found[0].Key)
	})
}
