// File: internal/screen/actions_test.go
package screen

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

type recordingDriver struct {
	clicks [][2]int
	err    error
}

func (r *recordingDriver) Click(_ context.Context, x, y int) error {
	if r.err != nil {
		return r.err
	}
	r.clicks = append(r.clicks, [2]int{x, y})
	return nil
}

func newTestActor(t *testing.T) (*Actor, *recordingDriver, string) {
	t.Helper()
	driver := &recordingDriver{}
	dir := t.TempDir()
	set := NewTemplateSet(dir, 0.9, zap.NewNop())
	return NewActor(driver, set, zap.NewNop()), driver, dir
}

func TestClickMatch_ClicksBoxCenter(t *testing.T) {
	actor, driver, _ := newTestActor(t)
	m := schemas.MatchResult{
		Element:    &schemas.ControlElement{Label: "join_meeting", Box: schemas.Box{10, 20, 30, 60}},
		Confidence: 100.0,
	}

	assert.True(t, actor.ClickMatch(context.Background(), m))
	require.Len(t, driver.clicks, 1)
	assert.Equal(t, [2]int{40, 20}, driver.clicks[0])
}

func TestClickMatch_NoMatchIsFalse(t *testing.T) {
	actor, driver, _ := newTestActor(t)
	assert.False(t, actor.ClickMatch(context.Background(), schemas.MatchResult{}))
	assert.Empty(t, driver.clicks)
}

func TestClickPoint_DriverErrorIsFalse(t *testing.T) {
	actor, driver, _ := newTestActor(t)
	driver.err = errors.New("target closed")
	assert.False(t, actor.ClickPoint(context.Background(), 5, 5))
}

func TestClickTemplate_AppliesHorizontalShift(t *testing.T) {
	actor, driver, dir := newTestActor(t)
	screen := patternImage(120, 120)
	tpl := imaging.Crop(screen, image.Rect(39, 30, 59, 45))
	require.NoError(t, imaging.Save(tpl, filepath.Join(dir, "notif.png")))

	assert.True(t, actor.ClickTemplate(context.Background(), screen, "notif.png", -15))
	require.Len(t, driver.clicks, 1)
	assert.Equal(t, [2]int{34, 37}, driver.clicks[0])
}

func TestClickTemplate_AbsentTemplateIsFalse(t *testing.T) {
	actor, driver, _ := newTestActor(t)
	assert.False(t, actor.ClickTemplate(context.Background(), image.NewNRGBA(image.Rect(0, 0, 50, 50)), "gone.png", 0))
	assert.Empty(t, driver.clicks)
}

func TestTemplateVisible(t *testing.T) {
	actor, _, dir := newTestActor(t)
	screen := patternImage(100, 100)
	tpl := imaging.Crop(screen, image.Rect(12, 12, 32, 27))
	require.NoError(t, imaging.Save(tpl, filepath.Join(dir, "mark.png")))

	assert.True(t, actor.TemplateVisible(screen, "mark.png"))
	assert.False(t, actor.TemplateVisible(image.NewNRGBA(image.Rect(0, 0, 100, 100)), "mark.png"))
}
