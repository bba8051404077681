// File: internal/screen/capture.go

// Package screen deals with the raster side of the agent: grabbing
// screenshots, locating template images on them and synthesizing clicks.
package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Grabber produces one encoded screenshot of the current screen.
type Grabber func(ctx context.Context) ([]byte, error)

// Provider implements schemas.ScreenProvider on top of a Grabber, usually
// the browser driver's screenshot call.
type Provider struct {
	grab   Grabber
	logger *zap.Logger
}

func NewProvider(grab Grabber, logger *zap.Logger) *Provider {
	return &Provider{grab: grab, logger: logger.Named("screen")}
}

// Capture grabs and decodes one screenshot, returning it with its pixel
// dimensions.
func (p *Provider) Capture(ctx context.Context) (image.Image, int, int, error) {
	data, err := p.grab(ctx)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("screen: capturing screenshot: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("screen: decoding screenshot: %w", err)
	}
	b := img.Bounds()
	p.logger.Debug("Screenshot captured.", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return img, b.Dx(), b.Dy(), nil
}
