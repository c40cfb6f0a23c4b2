package api

import (
	"log"
	"net/http"
)

// TrainHandler triggers a training run over the recorded dataset.
type TrainHandler struct {
	pipeline *Pipeline
}

// NewTrainHandler creates a new TrainHandler over the given pipeline.
func NewTrainHandler(p *Pipeline) *TrainHandler {
	return &TrainHandler{pipeline: p}
}

// ServeHTTP handles POST /api/train. Training is synchronous; a concurrent
// request is rejected with 429 and can be retried.
func (h *TrainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.pipeline.Trainer.Train()
	if err != nil {
		writeFailure(w, err)
		return
	}

	// Swap the inference snapshot to the freshly persisted model
	if err := h.pipeline.Engine.Reload(); err != nil {
		log.Printf("failed to reload model after training: %v", err)
	}

	writeJSON(w, http.StatusOK, result)
}
