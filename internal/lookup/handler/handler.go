// Package handler exposes the lookup engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"collreg/internal/collections/models"
	"collreg/internal/lookup"
	"collreg/internal/platform/metrics"
	"collreg/internal/platform/middleware"
	"collreg/pkg/platform/httputil"
)

// Service defines the interface for lookup operations.
type Service interface {
	Lookup(ctx context.Context, params lookup.LookupParams) (lookup.LookupResult, error)
}

// Handler handles the lookup endpoint.
type Handler struct {
	logger  *slog.Logger
	lookup  Service
	metrics *metrics.Metrics
}

// New creates a new lookup Handler.
func New(lookupService Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		lookup:  lookupService,
		metrics: m,
	}
}

// Register registers the lookup routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	lookupRouter := chi.NewRouter()
	lookupRouter.Use(middleware.Recovery(h.logger))
	lookupRouter.Use(middleware.RequestID)
	lookupRouter.Use(middleware.Logger(h.logger))
	lookupRouter.Use(middleware.Timeout(30 * time.Second))
	lookupRouter.Use(middleware.LatencyMiddleware(h.metrics))
	lookupRouter.Get("/v1/grscicoll/lookup", h.handleLookup)

	r.Mount("/", lookupRouter)
}

// handleLookup resolves institution and collection hints supplied as query
// parameters. Malformed optional hints are dropped rather than rejected; the
// endpoint only fails when the backing stores do.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	params := lookup.LookupParams{
		InstitutionCode:      query.Get("institutionCode"),
		InstitutionID:        query.Get("institutionId"),
		CollectionCode:       query.Get("collectionCode"),
		CollectionID:         query.Get("collectionId"),
		OwnerInstitutionCode: query.Get("ownerInstitutionCode"),
	}
	if raw := query.Get("country"); raw != "" {
		country, err := models.ParseCountry(raw)
		if err != nil {
			h.logger.WarnContext(ctx, "dropping malformed country hint",
				"country", raw,
				"request_id", middleware.GetRequestID(ctx),
			)
		} else {
			params.Country = country
		}
	}
	if raw := query.Get("datasetKey"); raw != "" {
		if key, err := uuid.Parse(raw); err == nil {
			params.DatasetKey = &key
		} else {
			h.logger.WarnContext(ctx, "dropping malformed datasetKey hint",
				"dataset_key", raw,
				"request_id", middleware.GetRequestID(ctx),
			)
		}
	}
	if raw := query.Get("verbose"); raw != "" {
		params.Verbose, _ = strconv.ParseBool(raw)
	}

	result, err := h.lookup.Lookup(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup request failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
