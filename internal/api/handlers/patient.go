// Package handlers provides HTTP handlers for the registry API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vitalcare/patient-registry/internal/api/middleware"
	"github.com/vitalcare/patient-registry/internal/domain/patient"
	"github.com/vitalcare/patient-registry/internal/observability/metrics"
)

// PatientHandler handles patient record endpoints
type PatientHandler struct {
	store   *patient.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPatientHandler creates a new handler
func NewPatientHandler(store *patient.Store, m *metrics.Metrics, logger *zap.Logger) *PatientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientHandler{store: store, metrics: m, logger: logger}
}

// Routes returns the handler routes
func (h *PatientHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/sorted", h.Sorted)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /patients
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordsTotal.Set(float64(len(records)))
	h.writeJSON(w, http.StatusOK, records)
}

// Sorted handles GET /patients/sorted?sort_by=bmi&order=desc
func (h *PatientHandler) Sorted(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("sort_by")
	order := r.URL.Query().Get("order")
	if order == "" {
		order = patient.DirectionAsc
	}

	records, err := h.store.Sorted(r.Context(), field, order)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

// Get handles GET /patients/{id}
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// Create handles POST /patients
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("patient-handler")
	ctx, span := tracer.Start(ctx, "create_patient")
	defer span.End()

	var in patient.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Create(ctx, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("record_id", rec.ID))

	h.metrics.RecordsCreated.Inc()
	h.logger.Info("patient record created",
		zap.String("id", rec.ID),
		zap.String("request_id", middleware.GetRequestID(ctx)),
	)
	h.writeJSON(w, http.StatusCreated, rec)
}

// Update handles PATCH /patients/{id}
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var patch patient.UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Update(ctx, id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.metrics.RecordsUpdated.Inc()
	h.logger.Info("patient record updated",
		zap.String("id", id),
		zap.String("request_id", middleware.GetRequestID(ctx)),
	)
	h.writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /patients/{id}
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.metrics.RecordsDeleted.Inc()
	h.logger.Info("patient record deleted",
		zap.String("id", id),
		zap.String("request_id", middleware.GetRequestID(ctx)),
	)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "record deleted", "id": id})
}

// writeError maps domain errors to HTTP status codes.
func (h *PatientHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *patient.ValidationError
	if errors.As(err, &ve) {
		h.metrics.ValidationFailures.Inc()
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": ve.Error(),
			"field": ve.Field,
		})
		return
	}

	var nf *patient.NotFoundError
	if errors.As(err, &nf) {
		h.metrics.LookupMisses.Inc()
		h.jsonError(w, nf.Error(), http.StatusNotFound)
		return
	}

	var ia *patient.InvalidArgumentError
	if errors.As(err, &ia) {
		h.jsonError(w, ia.Error(), http.StatusBadRequest)
		return
	}

	h.metrics.SaveFailures.Inc()
	h.logger.Error("store operation failed",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.Error(err),
	)
	h.jsonError(w, "internal server error", http.StatusInternalServerError)
}

func (h *PatientHandler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *PatientHandler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
