// File: api/schemas/interfaces.go
package schemas

import (
	"context"
	"image"
)

// ScreenProvider captures the current full-screen raster. Implementations may
// grab off-thread; callers only require that the returned image reflects the
// screen at call time.
type ScreenProvider interface {
	// Capture returns the screenshot together with its pixel dimensions.
	Capture(ctx context.Context) (image.Image, int, int, error)
}

// VisionClassifier turns one screenshot into one Classification. Coordinates
// in the result are absolute pixels for the supplied dimensions. Transport or
// parse failures are returned as errors and are not retried locally; the
// session boundary treats them as fatal.
type VisionClassifier interface {
	Classify(ctx context.Context, img image.Image, width, height int) (*Classification, error)
}

// BrowserHandle is the minimal surface of the underlying browser automation
// the navigation logic is allowed to touch. Everything else happens through
// screenshots and synthesized input.
type BrowserHandle interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// ProgressNotifier pushes a one-way status update to the session manager.
// Implementations must never fail the caller: delivery errors are logged and
// dropped.
type ProgressNotifier interface {
	Notify(ctx context.Context, p Progress)
}

// InputDriver injects a pointer click at absolute screen coordinates.
type InputDriver interface {
	Click(ctx context.Context, x, y int) error
}
