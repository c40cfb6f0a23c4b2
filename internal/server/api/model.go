package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/classify"
)

// ModelInfoHandler reports metadata about the active trained model.
type ModelInfoHandler struct {
	pipeline *Pipeline
}

// NewModelInfoHandler creates a new ModelInfoHandler over the given pipeline.
func NewModelInfoHandler(p *Pipeline) *ModelInfoHandler {
	return &ModelInfoHandler{pipeline: p}
}

type modelInfoResponse struct {
	Loaded          bool                  `json:"loaded"`
	ModelType       string                `json:"model_type"`
	Classes         []string              `json:"classes,omitempty"`
	Hyperparameters *classify.Hyperparams `json:"hyperparameters,omitempty"`
	TrainedOn       int                   `json:"trained_on,omitempty"`
}

// ServeHTTP handles GET /api/model-info. A missing model is a normal state
// ("run training first"), not an error.
func (h *ModelInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := modelInfoResponse{ModelType: "random forest"}

	model, err := h.pipeline.Engine.Model()
	if err != nil {
		if !errors.Is(err, classify.ErrNoModel) {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Loaded = true
	resp.Classes = model.Classes
	resp.Hyperparameters = &model.Params
	resp.TrainedOn = model.TrainedOn

	writeJSON(w, http.StatusOK, resp)
}
