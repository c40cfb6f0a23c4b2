package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandObservation
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the observations that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandObservation) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured observations or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandObservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// observationFromPoints builds a HandObservation from 21 (x,y,z) triples.
func observationFromPoints(points [NumLandmarks][3]float64) HandObservation {
	obs := HandObservation{
		Landmarks:  make([]Landmark, NumLandmarks),
		Handedness: "right",
		Confidence: 0.95,
	}
	for i, p := range points {
		obs.Landmarks[i] = Landmark{
			Index:      i,
			X:          p[0],
			Y:          p[1],
			Z:          p[2],
			Visibility: 1.0,
		}
	}
	return obs
}

// FistObservation returns a preset HandObservation representing a closed fist.
// All fingers are curled in toward the palm.
func FistObservation() HandObservation {
	return observationFromPoints([NumLandmarks][3]float64{
		// Wrist at base
		{0.50, 0.80, 0.00},
		// Thumb folded across the palm
		{0.55, 0.75, 0.00},
		{0.57, 0.70, -0.01},
		{0.55, 0.68, -0.03},
		{0.52, 0.68, -0.04},
		// Index finger curled
		{0.55, 0.70, -0.02},
		{0.55, 0.68, -0.05},
		{0.52, 0.70, -0.04},
		{0.50, 0.72, -0.02},
		// Middle finger curled
		{0.50, 0.68, -0.02},
		{0.50, 0.66, -0.05},
		{0.47, 0.68, -0.04},
		{0.45, 0.70, -0.02},
		// Ring finger curled
		{0.45, 0.70, -0.02},
		{0.45, 0.68, -0.05},
		{0.42, 0.70, -0.04},
		{0.40, 0.72, -0.02},
		// Pinky finger curled
		{0.40, 0.72, -0.02},
		{0.40, 0.70, -0.05},
		{0.37, 0.72, -0.04},
		{0.35, 0.74, -0.02},
	})
}

// OpenPalmObservation returns a preset HandObservation representing an open
// palm. All fingers are extended outward.
func OpenPalmObservation() HandObservation {
	return observationFromPoints([NumLandmarks][3]float64{
		// Wrist at base
		{0.50, 0.80, 0.00},
		// Thumb extended to the side
		{0.55, 0.75, 0.02},
		{0.62, 0.70, 0.03},
		{0.68, 0.65, 0.03},
		{0.73, 0.60, 0.03},
		// Index finger extended upward
		{0.55, 0.68, 0.00},
		{0.57, 0.55, 0.00},
		{0.58, 0.45, 0.00},
		{0.58, 0.35, 0.00},
		// Middle finger extended upward (slightly longer)
		{0.50, 0.66, 0.00},
		{0.50, 0.52, 0.00},
		{0.50, 0.40, 0.00},
		{0.50, 0.28, 0.00},
		// Ring finger extended upward
		{0.45, 0.68, 0.00},
		{0.43, 0.55, 0.00},
		{0.42, 0.45, 0.00},
		{0.42, 0.35, 0.00},
		// Pinky finger extended upward
		{0.40, 0.70, 0.00},
		{0.37, 0.60, 0.00},
		{0.35, 0.50, 0.00},
		{0.34, 0.42, 0.00},
	})
}
