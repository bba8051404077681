// File: internal/vision/mapper.go
package vision

import (
	"math"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

// ModelSpace is the side length of the normalized coordinate space vision
// models localize in, regardless of the actual image resolution.
const ModelSpace = 1000

// ToPixels converts a box from the 0-1000 model space into absolute pixel
// coordinates for an image of the given dimensions. The function is total:
// any four integers are accepted, out-of-order endpoints are swapped so the
// yMin<=yMax / xMin<=xMax invariant always holds on the output.
func ToPixels(b schemas.Box, width, height int) schemas.Box {
	return Scale(b, float64(width)/ModelSpace, float64(height)/ModelSpace)
}

// Scale applies independent per-axis factors to a box and canonicalizes the
// result. Separate factors matter when the click target lives on a screen
// whose resolution differs from the image the model classified.
func Scale(b schemas.Box, sx, sy float64) schemas.Box {
	scaled := schemas.Box{
		scale(b[0], sy),
		scale(b[1], sx),
		scale(b[2], sy),
		scale(b[3], sx),
	}
	return scaled.Canonical()
}

func scale(v int, factor float64) int {
	return int(math.Round(float64(v) * factor))
}
