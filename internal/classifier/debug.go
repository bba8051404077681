// File: internal/classifier/debug.go
package classifier

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

var debugBoxColor = color.NRGBA{R: 255, G: 40, B: 40, A: 255}

// saveDebugShot writes the screenshot to the debug directory with the
// detected element boxes drawn in. Failures only log; debugging must never
// affect the classification path.
func (c *Classifier) saveDebugShot(img image.Image, cls *schemas.Classification) {
	if err := os.MkdirAll(c.cfg.DebugDir, 0o755); err != nil {
		c.logger.Warn("Cannot create debug directory.", zap.Error(err))
		return
	}

	annotated := imaging.Clone(img)
	for _, el := range cls.Elements {
		drawBoxOutline(annotated, el.Box)
	}

	name := fmt.Sprintf("%s_%s.png", time.Now().Format("20060102_150405.000"), cls.State)
	path := filepath.Join(c.cfg.DebugDir, name)
	if err := imaging.Save(annotated, path); err != nil {
		c.logger.Warn("Cannot save debug screenshot.", zap.Error(err))
		return
	}
	c.logger.Debug("Saved debug screenshot.", zap.String("path", path))
}

// drawBoxOutline draws a 2px rectangle outline clipped to the image bounds.
func drawBoxOutline(dst *image.NRGBA, b schemas.Box) {
	box := b.Canonical()
	yMin, xMin, yMax, xMax := box[0], box[1], box[2], box[3]
	for t := 0; t < 2; t++ {
		for x := xMin; x <= xMax; x++ {
			setPixel(dst, x, yMin+t)
			setPixel(dst, x, yMax-t)
		}
		for y := yMin; y <= yMax; y++ {
			setPixel(dst, xMin+t, y)
			setPixel(dst, xMax-t, y)
		}
	}
}

func setPixel(dst *image.NRGBA, x, y int) {
	if image.Pt(x, y).In(dst.Rect) {
		dst.SetNRGBA(x, y, debugBoxColor)
	}
}
