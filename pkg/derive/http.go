package derive

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/logger"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/storage"
	"github.com/cohortforge/platform/pkg/window"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	runner       *Runner
	featureStore *storage.FeatureStore
}

func NewHandler(runner *Runner, featureStore *storage.FeatureStore) *Handler {
	return &Handler{runner: runner, featureStore: featureStore}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/runs", h.handleCreateRun).Methods(http.MethodPost)
	r.HandleFunc("/runs", h.handleListRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}", h.handleGetRun).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/features", h.handleGetFeatures).Methods(http.MethodGet)
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var opts models.RunOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	run, err := h.runner.Enqueue(r.Context(), opts)
	if err != nil {
		if errors.Is(err, window.ErrNegativeBound) || errors.Is(err, extract.ErrMissingColumn) || cohort.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to enqueue derivation run")
		http.Error(w, "failed to enqueue run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"run": run})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	runs, err := h.runner.List(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": runs})
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}
	run, err := h.runner.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"run": run})
}

func (h *Handler) handleGetFeatures(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	if patientID == "" {
		http.Error(w, "patient id required", http.StatusBadRequest)
		return
	}
	features, err := h.featureStore.GetFeatures(r.Context(), patientID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to read features")
		http.Error(w, "failed to read features", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"features": features})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
