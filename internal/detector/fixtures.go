package detector

// OpenHandLandmarks returns an open right hand with the wrist at (x, y) and
// the thumb and index fingertips far apart.
func OpenHandLandmarks(x, y float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: x, Y: y}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: x + 0.05, Y: y - 0.05, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: x + 0.12, Y: y - 0.10, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: x + 0.18, Y: y - 0.15, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: x + 0.23, Y: y - 0.20, Z: 0.03}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: x + 0.05, Y: y - 0.12}
	landmarks.Points[IndexPIP] = Point3D{X: x + 0.07, Y: y - 0.25}
	landmarks.Points[IndexDIP] = Point3D{X: x + 0.08, Y: y - 0.35}
	landmarks.Points[IndexTip] = Point3D{X: x + 0.08, Y: y - 0.45}

	fillFingers(&landmarks, x, y)
	return landmarks
}

// PinchedLandmarks returns a right hand whose thumb and index fingertips
// touch, with their midpoint at (x, y).
func PinchedLandmarks(x, y float64) HandLandmarks {
	wx, wy := x-0.08, y+0.30
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: wx, Y: wy}

	landmarks.Points[ThumbCMC] = Point3D{X: wx + 0.05, Y: wy - 0.05, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: wx + 0.09, Y: wy - 0.12, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: wx + 0.09, Y: wy - 0.22, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: x - 0.005, Y: y, Z: 0.02}

	landmarks.Points[IndexMCP] = Point3D{X: wx + 0.05, Y: wy - 0.12}
	landmarks.Points[IndexPIP] = Point3D{X: wx + 0.08, Y: wy - 0.22}
	landmarks.Points[IndexDIP] = Point3D{X: wx + 0.09, Y: wy - 0.27}
	landmarks.Points[IndexTip] = Point3D{X: x + 0.005, Y: y, Z: 0.01}

	fillFingers(&landmarks, wx, wy)
	return landmarks
}

// fillFingers places curled middle, ring and pinky fingers near the palm.
func fillFingers(l *HandLandmarks, x, y float64) {
	for f, base := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		dx := -0.05 * float64(f)
		l.Points[base] = Point3D{X: x + dx, Y: y - 0.12, Z: -0.02}
		l.Points[base+1] = Point3D{X: x + dx, Y: y - 0.14, Z: -0.05}
		l.Points[base+2] = Point3D{X: x + dx - 0.03, Y: y - 0.12, Z: -0.04}
		l.Points[base+3] = Point3D{X: x + dx - 0.05, Y: y - 0.10, Z: -0.02}
	}
}
