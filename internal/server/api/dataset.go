package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/classify"
)

// DatasetHandler reports the state of the recorded sample dataset.
type DatasetHandler struct {
	pipeline *Pipeline
}

// NewDatasetHandler creates a new DatasetHandler over the given pipeline.
func NewDatasetHandler(p *Pipeline) *DatasetHandler {
	return &DatasetHandler{pipeline: p}
}

type datasetInfoResponse struct {
	TotalSamples int            `json:"total_samples"`
	Classes      int            `json:"classes"`
	LabelCounts  map[string]int `json:"label_counts"`
	Trainable    bool           `json:"trainable"`
	// Reason explains why the dataset is not trainable yet, with the
	// actual counts, so callers can tell how many more samples they need.
	Reason string `json:"reason,omitempty"`
}

// ServeHTTP handles GET /api/dataset.
func (h *DatasetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, total, err := h.pipeline.Trainer.Counts()
	if err != nil {
		writeFailure(w, err)
		return
	}

	resp := datasetInfoResponse{
		TotalSamples: total,
		Classes:      len(counts),
		LabelCounts:  counts,
		Trainable:    true,
	}

	if _, err := classify.PlanSplit(total, counts); err != nil {
		resp.Trainable = false
		resp.Reason = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}
