package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/detector"
)

// DetectHandler runs raw hand detection on a submitted image without
// classifying the result.
type DetectHandler struct {
	pipeline *Pipeline
}

// NewDetectHandler creates a new DetectHandler over the given pipeline.
func NewDetectHandler(p *Pipeline) *DetectHandler {
	return &DetectHandler{pipeline: p}
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	HandsDetected int                        `json:"hands_detected"`
	Hands         []detector.HandObservation `json:"hands"`
}

// ServeHTTP handles POST /api/detect. Zero detected hands is a successful
// empty result; a detector failure maps to 502.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "Missing image data")
		return
	}

	hands, err := h.pipeline.DetectImage(req.Image)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if hands == nil {
		hands = []detector.HandObservation{}
	}

	writeJSON(w, http.StatusOK, detectResponse{
		HandsDetected: len(hands),
		Hands:         hands,
	})
}
