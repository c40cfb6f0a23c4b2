// Package feature converts hand observations into fixed-length feature
// vectors and labeled samples for the gesture classifier.
package feature

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// VectorSize is the length of a feature vector: flattened (x,y,z) triples
// for the 21 hand landmarks in index order.
const VectorSize = 3 * detector.NumLandmarks

// ErrEmptyLabel is returned when a sample label is empty or whitespace-only.
var ErrEmptyLabel = errors.New("label must not be empty")

// ErrNoHands is returned when an observation set contains no hands.
var ErrNoHands = errors.New("no hands in observation")

// InvalidLandmarkCountError is returned when an observation does not carry
// exactly 21 landmarks.
type InvalidLandmarkCountError struct {
	Got int
}

func (e *InvalidLandmarkCountError) Error() string {
	return fmt.Sprintf("expected %d landmarks, got %d", detector.NumLandmarks, e.Got)
}

// InvalidVectorLengthError is returned when a feature vector does not carry
// exactly VectorSize values.
type InvalidVectorLengthError struct {
	Got int
}

func (e *InvalidVectorLengthError) Error() string {
	return fmt.Sprintf("expected %d feature values, got %d", VectorSize, e.Got)
}

// Vector is an ordered sequence of 63 floats derived from one hand observation.
type Vector []float64

// Sample is a labeled feature vector. Immutable once created.
type Sample struct {
	Label    string
	Features Vector
}

// Codec converts hand observations into feature vectors and labeled samples.
type Codec struct {
	// HandIndex selects which detected hand is used when an observation set
	// contains multiple hands. The default (0) uses the first detected hand;
	// multi-hand classification would extend this rather than change Encode.
	HandIndex int
}

// NewCodec creates a Codec with the default first-hand selection policy.
func NewCodec() *Codec {
	return &Codec{HandIndex: 0}
}

// Pick selects the configured hand from a detection result.
func (c *Codec) Pick(hands []detector.HandObservation) (detector.HandObservation, error) {
	if c.HandIndex < 0 || c.HandIndex >= len(hands) {
		return detector.HandObservation{}, ErrNoHands
	}
	return hands[c.HandIndex], nil
}

// Encode converts a hand observation into a feature vector. Coordinates are
// rounded to 4 decimal digits, matching the precision the detector reports;
// the rounding is part of the storage contract.
func (c *Codec) Encode(obs detector.HandObservation) (Vector, error) {
	if len(obs.Landmarks) != detector.NumLandmarks {
		return nil, &InvalidLandmarkCountError{Got: len(obs.Landmarks)}
	}

	vec := make(Vector, 0, VectorSize)
	for _, lm := range obs.Landmarks {
		vec = append(vec, round4(lm.X), round4(lm.Y), round4(lm.Z))
	}
	return vec, nil
}

// ToSample builds a labeled sample from a feature vector. The label is
// trimmed; an empty or whitespace-only label is rejected.
func (c *Codec) ToSample(label string, vec Vector) (Sample, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Sample{}, ErrEmptyLabel
	}
	if len(vec) != VectorSize {
		return Sample{}, &InvalidVectorLengthError{Got: len(vec)}
	}
	return Sample{Label: label, Features: vec}, nil
}

// round4 rounds a coordinate to 4 decimal digits.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
