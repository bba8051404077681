// File: internal/screen/template.go
package screen

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// coarseStride is the step used for the first matching pass. The refinement
// pass then scans a stride-sized neighbourhood around the best coarse hit.
const coarseStride = 3

// grayImage is a luminance-only raster, the working format for matching.
type grayImage struct {
	w, h int
	pix  []uint8
}

func toGray(img image.Image) *grayImage {
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	g := &grayImage{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}
	for y := 0; y < g.h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < g.w; x++ {
			// After Grayscale all channels are equal; take R.
			g.pix[y*g.w+x] = row[x*4]
		}
	}
	return g
}

// Match is a located template occurrence. X and Y are the center of the
// match in screen pixels.
type Match struct {
	X, Y  int
	Score float64
}

// TemplateSet loads named template images from a directory and locates them
// on screenshots by normalized mean absolute difference on luminance. Crude
// next to real feature matching, but the targets are pixel-identical UI
// sprites at fixed scale, which is exactly the case this handles well.
type TemplateSet struct {
	dir       string
	threshold float64
	logger    *zap.Logger

	mu    sync.Mutex
	cache map[string]*grayImage
}

func NewTemplateSet(dir string, threshold float64, logger *zap.Logger) *TemplateSet {
	return &TemplateSet{
		dir:       dir,
		threshold: threshold,
		logger:    logger.Named("templates"),
		cache:     make(map[string]*grayImage),
	}
}

// load returns the named template, reading and caching it on first use.
func (t *TemplateSet) load(name string) (*grayImage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.cache[name]; ok {
		return g, nil
	}
	img, err := imaging.Open(filepath.Join(t.dir, name))
	if err != nil {
		return nil, fmt.Errorf("screen: loading template %q: %w", name, err)
	}
	g := toGray(img)
	t.cache[name] = g
	return g, nil
}

// Locate searches the screenshot for the named template. The boolean result
// is false when the template file is missing or the best score stays below
// the configured threshold.
func (t *TemplateSet) Locate(screen image.Image, name string) (Match, bool) {
	tpl, err := t.load(name)
	if err != nil {
		t.logger.Warn("Template unavailable.", zap.String("template", name), zap.Error(err))
		return Match{}, false
	}
	scr := toGray(screen)
	if tpl.w > scr.w || tpl.h > scr.h || tpl.w == 0 || tpl.h == 0 {
		return Match{}, false
	}

	bestX, bestY, bestScore := -1, -1, -1.0
	scan := func(x0, y0, x1, y1, stride int) {
		for y := y0; y <= y1; y += stride {
			for x := x0; x <= x1; x += stride {
				s := similarity(scr, tpl, x, y)
				if s > bestScore {
					bestX, bestY, bestScore = x, y, s
				}
			}
		}
	}

	scan(0, 0, scr.w-tpl.w, scr.h-tpl.h, coarseStride)
	scan(max(bestX-coarseStride, 0), max(bestY-coarseStride, 0),
		min(bestX+coarseStride, scr.w-tpl.w), min(bestY+coarseStride, scr.h-tpl.h), 1)

	if bestScore < t.threshold {
		t.logger.Debug("Template not found on screen.",
			zap.String("template", name), zap.Float64("best_score", bestScore))
		return Match{}, false
	}
	t.logger.Debug("Template located.",
		zap.String("template", name),
		zap.Int("x", bestX+tpl.w/2), zap.Int("y", bestY+tpl.h/2),
		zap.Float64("score", bestScore))
	return Match{X: bestX + tpl.w/2, Y: bestY + tpl.h/2, Score: bestScore}, true
}

// similarity scores the template placed at (x, y): 1.0 is a pixel-perfect
// match, 0.0 maximal difference.
func similarity(scr, tpl *grayImage, x, y int) float64 {
	var sad int64
	for ty := 0; ty < tpl.h; ty++ {
		srow := scr.pix[(y+ty)*scr.w+x:]
		trow := tpl.pix[ty*tpl.w:]
		for tx := 0; tx < tpl.w; tx++ {
			d := int64(srow[tx]) - int64(trow[tx])
			if d < 0 {
				d = -d
			}
			sad += d
		}
	}
	n := int64(tpl.w * tpl.h)
	return 1.0 - float64(sad)/float64(n*255)
}
