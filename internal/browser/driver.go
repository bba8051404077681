// File: internal/browser/driver.go

// Package browser owns the Chrome process driven over CDP. It exposes the
// narrow surface the rest of the agent uses: navigation, screenshots and
// coordinate clicks. No DOM inspection leaks out of this package except for
// the credential login flow, which is the one part of the pipeline that
// works on selectors instead of pixels.
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/internal/config"
)

// Driver wraps one Chrome instance with a single driven tab.
type Driver struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	closed      bool
}

// launchFlags derives the Chrome switches from the browser configuration.
// Kept separate from the chromedp option wrappers so the flag set can be
// asserted directly in tests without launching anything.
func launchFlags(cfg config.BrowserConfig) map[string]any {
	flags := map[string]any{
		"headless":              cfg.Headless,
		"disable-gpu":           true,
		"no-sandbox":            true,
		"disable-dev-shm-usage": true,
		// Meet needs media autoplay and fake capture devices to join without
		// real hardware.
		"allow-running-insecure-content":   true,
		"autoplay-policy":                  "no-user-gesture-required",
		"use-fake-device-for-media-stream": true,
		"use-fake-ui-for-media-stream":     true,
	}
	if cfg.ProfileDir != "" {
		flags["user-data-dir"] = cfg.ProfileDir
	}
	for _, arg := range cfg.Args {
		flags[normalizeFlag(arg)] = true
	}
	return flags
}

// AllocatorOptions builds the Chrome launch options for the given browser
// configuration.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	for name, value := range launchFlags(cfg) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

func normalizeFlag(arg string) string {
	for len(arg) > 0 && arg[0] == '-' {
		arg = arg[1:]
	}
	return arg
}

// NewDriver launches Chrome and connects to it. A corrupt user profile is
// the most common startup failure after a crashed run, so one failed launch
// triggers profile recreation and a second attempt.
func NewDriver(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Driver, error) {
	d := &Driver{cfg: cfg, logger: logger.Named("browser")}

	err := d.start(ctx)
	if err != nil && cfg.ProfileDir != "" {
		d.logger.Warn("Browser failed to start, recreating profile and retrying.",
			zap.String("profile_dir", cfg.ProfileDir), zap.Error(err))
		if rmErr := os.RemoveAll(cfg.ProfileDir); rmErr != nil {
			return nil, fmt.Errorf("browser: removing profile after failed start: %w", rmErr)
		}
		err = d.start(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("browser: starting chrome: %w", err)
	}

	d.logger.Info("Browser started.",
		zap.Bool("headless", cfg.Headless),
		zap.Int("width", cfg.WindowWidth),
		zap.Int("height", cfg.WindowHeight))
	return d, nil
}

func (d *Driver) start(parent context.Context) error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, AllocatorOptions(d.cfg)...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			d.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return err
	}
	d.ctx = ctx
	d.cancel = cancel
	d.allocCancel = allocCancel
	return nil
}

// run executes chromedp actions on the driven tab, honoring cancellation of
// the caller's context as well as the browser lifetime.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("browser: driver is closed")
	}
	runCtx, cancel := mergeContexts(d.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// mergeContexts derives a context from base that is additionally cancelled
// when aux is. chromedp requires its own context as the base.
func mergeContexts(base, aux context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(base)
	stop := context.AfterFunc(aux, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

// Navigate loads the given URL in the driven tab.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("Navigating.", zap.String("url", url))
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigating to %s: %w", url, err)
	}
	return nil
}

// CurrentURL reports the tab's current location.
func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := d.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("browser: reading location: %w", err)
	}
	return url, nil
}

// Screenshot captures the visible viewport as encoded image bytes.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("browser: capturing screenshot: %w", err)
	}
	return buf, nil
}

// Click synthesizes a left mouse press and release at viewport coordinates.
func (d *Driver) Click(ctx context.Context, x, y int) error {
	fx, fy := float64(x), float64(y)
	return d.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MousePressed, fx, fy).
				WithButton(input.Left).
				WithButtons(1).
				WithClickCount(1).
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseReleased, fx, fy).
				WithButton(input.Left).
				WithClickCount(1).
				Do(ctx)
		}),
	)
}

// Close shuts the browser down. Safe to call more than once.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.logger.Info("Closing browser.")
	d.cancel()
	d.allocCancel()
	return nil
}
