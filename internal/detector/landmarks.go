// Package detector provides hand detection interfaces and types for gesture classification.
package detector

import "fmt"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// landmarkNames maps landmark indices to their MediaPipe names.
var landmarkNames = [NumLandmarks]string{
	"WRIST",
	"THUMB_CMC", "THUMB_MCP", "THUMB_IP", "THUMB_TIP",
	"INDEX_FINGER_MCP", "INDEX_FINGER_PIP", "INDEX_FINGER_DIP", "INDEX_FINGER_TIP",
	"MIDDLE_FINGER_MCP", "MIDDLE_FINGER_PIP", "MIDDLE_FINGER_DIP", "MIDDLE_FINGER_TIP",
	"RING_FINGER_MCP", "RING_FINGER_PIP", "RING_FINGER_DIP", "RING_FINGER_TIP",
	"PINKY_MCP", "PINKY_PIP", "PINKY_DIP", "PINKY_TIP",
}

// LandmarkName returns the human-readable name for a landmark index.
func LandmarkName(index int) string {
	if index >= 0 && index < NumLandmarks {
		return landmarkNames[index]
	}
	return fmt.Sprintf("LANDMARK_%d", index)
}

// Landmark is one anatomically fixed point on a hand with its 3D position.
// The index order is semantically meaningful and must be preserved.
type Landmark struct {
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// HandObservation represents one detected hand: the 21 landmarks in index
// order plus the handedness classification and its confidence.
type HandObservation struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness"` // "left" or "right"
	Confidence float64    `json:"confidence"`
}
