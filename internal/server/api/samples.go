package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// SamplesHandler handles recording of labeled gesture samples.
type SamplesHandler struct {
	pipeline *Pipeline
}

// NewSamplesHandler creates a new SamplesHandler over the given pipeline.
func NewSamplesHandler(p *Pipeline) *SamplesHandler {
	return &SamplesHandler{pipeline: p}
}

type recordSampleRequest struct {
	Label string `json:"label"`
	ObservationRequest
}

type recordSampleResponse struct {
	Status  string `json:"status"`
	Label   string `json:"label"`
	Samples int    `json:"samples"`
}

// ServeHTTP handles POST /api/samples.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req recordSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	obs, err := h.pipeline.resolve(req.ObservationRequest)
	if err != nil {
		writeFailure(w, err)
		return
	}

	vec, err := h.pipeline.Codec.Encode(obs)
	if err != nil {
		writeFailure(w, err)
		return
	}

	sample, err := h.pipeline.Codec.ToSample(req.Label, vec)
	if err != nil {
		writeFailure(w, err)
		return
	}

	if err := h.pipeline.Dataset.Append(sample); err != nil {
		writeFailure(w, err)
		return
	}

	// The dataset write is durable at this point; a registry failure only
	// degrades catalog metadata, so it is logged rather than surfaced.
	samples := 0
	if h.pipeline.Registry != nil {
		gesture, err := h.pipeline.Registry.Gestures().EnsureByName(sample.Label)
		if err != nil {
			log.Printf("failed to register gesture %q: %v", sample.Label, err)
		} else if err := h.pipeline.Registry.Gestures().RecordSample(gesture.ID); err != nil {
			log.Printf("failed to bump sample count for %q: %v", sample.Label, err)
		} else {
			samples = gesture.Samples + 1
		}
	}

	writeJSON(w, http.StatusCreated, recordSampleResponse{
		Status:  "ok",
		Label:   sample.Label,
		Samples: samples,
	})
}
