// Package api provides HTTP API handlers for the Mudra gesture classifier.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline bundles the components the gesture API operates on.
type Pipeline struct {
	Registry *store.Store
	Dataset  *dataset.Dataset
	Codec    *feature.Codec
	Detector detector.Detector
	Trainer  *classify.Trainer
	Engine   *classify.Engine
}

// errInvalidRequest marks locally detectable input problems (bad payloads,
// undecodable images) so they map to 400.
var errInvalidRequest = errors.New("invalid request")

// detectionError wraps detector errors so they map to 502 rather than 500.
type detectionError struct {
	err error
}

func (e *detectionError) Error() string {
	return fmt.Sprintf("hand detection failed: %v", e.err)
}

func (e *detectionError) Unwrap() error {
	return e.err
}

// DetectImage decodes a base64 image and runs hand detection on it.
// An empty result means no hands were found; a detectionError means the
// detector itself failed.
func (p *Pipeline) DetectImage(encoded string) ([]detector.HandObservation, error) {
	frame, err := capture.DecodeBase64Image(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	defer frame.Close()

	hands, err := p.Detector.Detect(frame)
	if err != nil {
		return nil, &detectionError{err: err}
	}
	return hands, nil
}

// ObservationRequest is the shared request shape for operations that accept
// either a raw hand observation or a base64 image to detect on.
type ObservationRequest struct {
	Observation *detector.HandObservation `json:"observation,omitempty"`
	Image       string                    `json:"image,omitempty"`
}

// resolve produces the single hand observation the request refers to.
func (p *Pipeline) resolve(req ObservationRequest) (detector.HandObservation, error) {
	if req.Observation != nil {
		return *req.Observation, nil
	}
	if req.Image == "" {
		return detector.HandObservation{}, fmt.Errorf("%w: request must carry an observation or an image", errInvalidRequest)
	}

	hands, err := p.DetectImage(req.Image)
	if err != nil {
		return detector.HandObservation{}, err
	}
	return p.Codec.Pick(hands)
}

// PredictObservation encodes an observation and classifies it against the
// active model.
func (p *Pipeline) PredictObservation(obs detector.HandObservation) (*classify.Prediction, error) {
	vec, err := p.Codec.Encode(obs)
	if err != nil {
		return nil, err
	}
	return p.Engine.Predict(vec)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure maps a pipeline error to its HTTP status and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// statusFor maps pipeline error kinds to HTTP status codes: input errors
// 400, data sufficiency 422, missing model 503, concurrent training 429,
// detector failure 502, unknown resources 404.
func statusFor(err error) int {
	var landmarks *feature.InvalidLandmarkCountError
	var vector *feature.InvalidVectorLengthError
	var detection *detectionError

	switch {
	case errors.Is(err, classify.ErrTrainingInProgress):
		return http.StatusTooManyRequests
	case errors.Is(err, classify.ErrNoModel):
		return http.StatusServiceUnavailable
	case classify.IsDataSufficiencyError(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &detection):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, feature.ErrEmptyLabel),
		errors.Is(err, feature.ErrNoHands),
		errors.Is(err, errInvalidRequest),
		errors.As(err, &landmarks),
		errors.As(err, &vector):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
