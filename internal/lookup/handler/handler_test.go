package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"collreg/internal/collections/models"
	"collreg/internal/lookup"
	dErrors "collreg/pkg/domain-errors"
)

// stubService records the params it was called with and returns a canned
// result or error.
type stubService struct {
	params lookup.LookupParams
	result lookup.LookupResult
	err    error
}

func (s *stubService) Lookup(_ context.Context, params lookup.LookupParams) (lookup.LookupResult, error) {
	s.params = params
	return s.result, s.err
}

type HandlerSuite struct {
	suite.Suite
	service *stubService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &stubService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger, nil).Register(s.router)
}

func (s *HandlerSuite) get(target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	s.router.ServeHTTP(w, r)
	return w
}

func (s *HandlerSuite) TestParamsArePassedThrough() {
	datasetKey := uuid.New()
	s.get("/v1/grscicoll/lookup" +
		"?institutionCode=I1&institutionId=lsid:i1" +
		"&collectionCode=C1&collectionId=lsid:c1" +
		"&ownerInstitutionCode=OWNER&country=dk" +
		"&datasetKey=" + datasetKey.String() + "&verbose=true")

	s.Equal("I1", s.service.params.InstitutionCode)
	s.Equal("lsid:i1", s.service.params.InstitutionID)
	s.Equal("C1", s.service.params.CollectionCode)
	s.Equal("lsid:c1", s.service.params.CollectionID)
	s.Equal("OWNER", s.service.params.OwnerInstitutionCode)
	s.Equal(models.Country("DK"), s.service.params.Country)
	s.Require().NotNil(s.service.params.DatasetKey)
	s.Equal(datasetKey, *s.service.params.DatasetKey)
	s.True(s.service.params.Verbose)
}

func (s *HandlerSuite) TestMalformedHintsAreDropped() {
	s.get("/v1/grscicoll/lookup?institutionCode=I1&country=Denmark&datasetKey=not-a-uuid")

	s.Equal("I1", s.service.params.InstitutionCode)
	s.Equal(models.CountryUnknown, s.service.params.Country)
	s.Nil(s.service.params.DatasetKey)
}

func (s *HandlerSuite) TestResponseBody() {
	key := uuid.New()
	institution := models.Institution{Key: key, Code: "I1", Name: "Institution 1"}
	s.service.result = lookup.LookupResult{
		InstitutionMatch: lookup.Match[models.Institution]{
			MatchType: lookup.MatchTypeExact,
			Status:    lookup.StatusAccepted,
			Reasons:   lookup.NewReasonSet(lookup.ReasonKeyMatch),
			Entity:    &institution,
		},
		CollectionMatch: lookup.NoMatch[models.Collection](""),
	}

	w := s.get("/v1/grscicoll/lookup?institutionId=" + key.String())

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))

	var body struct {
		InstitutionMatch struct {
			MatchType string          `json:"matchType"`
			Status    string          `json:"status"`
			Reasons   []string        `json:"reasons"`
			Entity    json.RawMessage `json:"entityMatched"`
		} `json:"institutionMatch"`
		CollectionMatch struct {
			MatchType string   `json:"matchType"`
			Reasons   []string `json:"reasons"`
		} `json:"collectionMatch"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))

	s.Equal("EXACT", body.InstitutionMatch.MatchType)
	s.Equal("ACCEPTED", body.InstitutionMatch.Status)
	s.Equal([]string{"KEY_MATCH"}, body.InstitutionMatch.Reasons)
	s.NotEmpty(body.InstitutionMatch.Entity)

	s.Equal("NONE", body.CollectionMatch.MatchType)
	s.Empty(body.CollectionMatch.Reasons)
}

func (s *HandlerSuite) TestStoreFailureMapsToServiceUnavailable() {
	s.service.err = dErrors.Wrap(dErrors.CodeUnavailable, "resolving lookup candidates", context.DeadlineExceeded)

	w := s.get("/v1/grscicoll/lookup?institutionCode=I1")

	s.Equal(http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("unavailable", body["error"])
}
