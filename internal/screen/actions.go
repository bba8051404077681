// File: internal/screen/actions.go
package screen

import (
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

// Actor performs clicks on resolved elements, raw points and template
// matches. Every method reports success as a bool and never returns an
// error: a failed click is a recoverable condition the navigation loop
// handles by reclassifying the next screenshot.
type Actor struct {
	input     schemas.InputDriver
	templates *TemplateSet
	logger    *zap.Logger
}

func NewActor(input schemas.InputDriver, templates *TemplateSet, logger *zap.Logger) *Actor {
	return &Actor{input: input, templates: templates, logger: logger.Named("actor")}
}

// ClickMatch clicks the center of a resolved element. A no-match result is
// simply reported as false.
func (a *Actor) ClickMatch(ctx context.Context, m schemas.MatchResult) bool {
	if !m.Found() {
		return false
	}
	x, y := m.Element.Box.Center()
	a.logger.Debug("Clicking element.",
		zap.String("label", m.Element.Label),
		zap.Float64("confidence", m.Confidence),
		zap.Int("x", x), zap.Int("y", y))
	return a.ClickPoint(ctx, x, y)
}

// ClickPoint clicks an absolute screen coordinate.
func (a *Actor) ClickPoint(ctx context.Context, x, y int) bool {
	if err := a.input.Click(ctx, x, y); err != nil {
		a.logger.Warn("Click failed.", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return false
	}
	return true
}

// ClickTemplate locates the named template on the screenshot and clicks its
// center, shifted horizontally by shiftX. The shift compensates for sprites
// whose visual center differs from their hit target.
func (a *Actor) ClickTemplate(ctx context.Context, screen image.Image, name string, shiftX int) bool {
	m, ok := a.templates.Locate(screen, name)
	if !ok {
		return false
	}
	return a.ClickPoint(ctx, m.X+shiftX, m.Y)
}

// TemplateVisible reports whether the named template is currently on screen
// without clicking it.
func (a *Actor) TemplateVisible(screen image.Image, name string) bool {
	_, ok := a.templates.Locate(screen, name)
	return ok
}
