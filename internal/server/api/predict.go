package api

import (
	"encoding/json"
	"net/http"
)

// PredictHandler classifies a hand observation against the active model.
type PredictHandler struct {
	pipeline *Pipeline
}

// NewPredictHandler creates a new PredictHandler over the given pipeline.
func NewPredictHandler(p *Pipeline) *PredictHandler {
	return &PredictHandler{pipeline: p}
}

// ServeHTTP handles POST /api/predict.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	obs, err := h.pipeline.resolve(req)
	if err != nil {
		writeFailure(w, err)
		return
	}

	prediction, err := h.pipeline.PredictObservation(obs)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}
