package gesture

import "github.com/ayusman/mudra/internal/geometry"

// Builtin template names. They double as the command names understood by
// the media controller.
const (
	NamePlay  = "play"
	NamePause = "pause"
)

// BuiltinTemplates returns the raw, unnormalized reference shapes for the
// play (one stroke, a right-pointing chevron) and pause (two vertical bars)
// commands.
func BuiltinTemplates() []Template {
	return []Template{
		{Name: NamePause, Points: strokes(pauseLeft, pauseRight)},
		{Name: NamePlay, Points: strokes(playTriangle)},
	}
}

// strokes turns flat x,y coordinate lists into points, one stroke per list.
func strokes(coords ...[]float64) []geometry.Point {
	var points []geometry.Point
	for id, c := range coords {
		for i := 0; i+1 < len(c); i += 2 {
			points = append(points, geometry.Point{X: c[i], Y: c[i+1], StrokeID: id})
		}
	}
	return points
}

var (
	pauseLeft = []float64{
		127, 111, 127, 113, 127, 117, 127, 128, 127, 141, 127, 155, 127, 169, 127, 180,
		127, 190, 127, 198, 127, 205, 127, 211, 127, 217, 127, 222, 127, 227, 127, 232,
		126, 237, 126, 241, 126, 243, 126, 245, 126, 246, 126, 247, 126, 247, 126, 248,
		126, 250, 126, 254, 126, 259, 126, 266, 125, 272, 125, 278, 125, 283, 125, 286,
		125, 288, 125, 289, 125, 289, 125, 290,
	}
	pauseRight = []float64{
		219, 108, 219, 108, 219, 110, 219, 116, 219, 127, 219, 139, 219, 151, 219, 164,
		219, 176, 219, 187, 219, 196, 219, 205, 219, 213, 219, 218, 219, 224, 219, 230,
		219, 235, 219, 239, 219, 244, 219, 249, 219, 252, 219, 256, 219, 260, 219, 262,
		219, 264, 219, 265, 219, 265, 219, 266, 219, 266, 219, 266, 219, 267, 219, 268,
		219, 271, 219, 275, 219, 279, 219, 283, 219, 286, 219, 288, 219, 290, 218, 290,
		218, 291, 218, 291, 218, 291, 218, 291, 218, 291,
	}
	playTriangle = []float64{
		140, 118, 140, 118, 141, 120, 145, 126, 150, 132, 155, 138, 162, 145, 169, 153,
		175, 160, 181, 166, 187, 171, 191, 175, 195, 178, 199, 182, 203, 185, 207, 189,
		210, 193, 212, 196, 215, 200, 218, 204, 220, 206, 221, 208, 223, 210, 223, 210,
		224, 211, 224, 211, 224, 211, 225, 211, 225, 211, 225, 212, 227, 213, 228, 214,
		229, 214, 230, 215, 230, 215, 231, 216, 231, 216, 231, 216, 231, 216, 230, 216,
		228, 217, 224, 219, 219, 222, 212, 226, 205, 231, 197, 235, 190, 240, 184, 243,
		179, 245, 174, 248, 170, 251, 165, 254, 161, 256, 158, 258, 155, 260, 152, 261,
		149, 262, 147, 263, 145, 264, 143, 266, 142, 267, 140, 268, 139, 268, 138, 269,
		137, 269, 137, 270, 137, 270, 136, 270, 136, 270, 135, 271, 133, 272, 131, 274,
		129, 275, 128, 276, 127, 276, 127, 276, 127, 277,
	}
)
