package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"collreg/internal/collections/models"
	"collreg/internal/collections/store/mocks"
	dErrors "collreg/pkg/domain-errors"
	"collreg/pkg/platform/sentinel"
)

// ServiceFailureSuite verifies that store failures surface as lookup errors
// instead of being misreported as "no match", and that a missing key is a
// normal non-hit.
type ServiceFailureSuite struct {
	suite.Suite
	ctrl             *gomock.Controller
	mockInstitutions *mocks.MockStore[models.Institution]
	mockCollections  *mocks.MockStore[models.Collection]
	service          *Service
}

func TestServiceFailureSuite(t *testing.T) {
	suite.Run(t, new(ServiceFailureSuite))
}

func (s *ServiceFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockInstitutions = mocks.NewMockStore[models.Institution](s.ctrl)
	s.mockCollections = mocks.NewMockStore[models.Collection](s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.mockInstitutions, s.mockCollections, nil, logger, nil)
}

func (s *ServiceFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceFailureSuite) TestCodeQueryFailureFailsLookup() {
	s.mockInstitutions.EXPECT().
		FindByCode(gomock.Any(), "I1").
		Return(nil, errors.New("connection refused"))

	_, err := s.service.Lookup(context.Background(), LookupParams{InstitutionCode: "I1"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceFailureSuite) TestMappingQueryFailureFailsLookup() {
	datasetKey := uuid.New()
	s.mockInstitutions.EXPECT().
		FindMappings(gomock.Any(), datasetKey, "I1", "").
		Return(nil, errors.New("connection refused"))

	_, err := s.service.Lookup(context.Background(), LookupParams{
		InstitutionCode: "I1",
		DatasetKey:      &datasetKey,
	})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceFailureSuite) TestIdentifierQueryFailureFailsLookup() {
	s.mockCollections.EXPECT().
		FindByIdentifier(gomock.Any(), "lsid:c1").
		Return(nil, errors.New("connection refused"))

	_, err := s.service.Lookup(context.Background(), LookupParams{CollectionID: "lsid:c1"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceFailureSuite) TestMissingKeyIsNotAFailure() {
	key := uuid.New()
	s.mockInstitutions.EXPECT().
		FindByKey(gomock.Any(), key).
		Return(nil, sentinel.ErrNotFound)
	s.mockInstitutions.EXPECT().
		FindByIdentifier(gomock.Any(), key.String()).
		Return(nil, nil)
	s.mockInstitutions.EXPECT().
		FindByName(gomock.Any(), key.String()).
		Return(nil, nil)

	result, err := s.service.Lookup(context.Background(), LookupParams{InstitutionID: key.String()})

	s.Require().NoError(err)
	s.Equal(MatchTypeNone, result.InstitutionMatch.MatchType)
	s.Equal(MatchTypeNone, result.CollectionMatch.MatchType)
}

func (s *ServiceFailureSuite) TestNameFallbackFailureFailsLookup() {
	s.mockInstitutions.EXPECT().
		FindByCode(gomock.Any(), "NOCODE").
		Return(nil, nil)
	s.mockInstitutions.EXPECT().
		FindByName(gomock.Any(), "NOCODE").
		Return(nil, errors.New("connection refused"))

	_, err := s.service.Lookup(context.Background(), LookupParams{InstitutionCode: "NOCODE"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
