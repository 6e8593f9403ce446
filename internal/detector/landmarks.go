// Package detector turns hand landmark frames from an external estimator
// into the pinch point signal consumed by the stroke segmenter.
package detector

import "math"

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

// Point3D is a landmark position. X and Y are normalized to the image
// size; Z is the estimator's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// PinchDistance returns the image-plane distance between the thumb and
// index fingertips. Depth is ignored.
func (h *HandLandmarks) PinchDistance() float64 {
	thumb, index := h.Points[ThumbTip], h.Points[IndexTip]
	return math.Hypot(index.X-thumb.X, index.Y-thumb.Y)
}

// PinchPoint returns the midpoint between the thumb and index fingertips.
func (h *HandLandmarks) PinchPoint() (x, y float64) {
	thumb, index := h.Points[ThumbTip], h.Points[IndexTip]
	return (thumb.X + index.X) / 2, (thumb.Y + index.Y) / 2
}

// BestHand returns the hand with the highest detection score, or nil.
func BestHand(hands []HandLandmarks) *HandLandmarks {
	var best *HandLandmarks
	for i := range hands {
		if best == nil || hands[i].Score > best.Score {
			best = &hands[i]
		}
	}
	return best
}
