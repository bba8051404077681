// File: internal/browser/driver_test.go
package browser

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/meetpilot/internal/config"
)

func TestLaunchFlags(t *testing.T) {
	t.Run("MediaAndSandboxFlags", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{WindowWidth: 1280, WindowHeight: 800})
		assert.Equal(t, true, flags["no-sandbox"])
		assert.Equal(t, true, flags["use-fake-device-for-media-stream"])
		assert.Equal(t, true, flags["use-fake-ui-for-media-stream"])
		assert.Equal(t, "no-user-gesture-required", flags["autoplay-policy"])
	})

	t.Run("HeadlessFollowsConfig", func(t *testing.T) {
		assert.Equal(t, false, launchFlags(config.BrowserConfig{})["headless"])
		assert.Equal(t, true, launchFlags(config.BrowserConfig{Headless: true})["headless"])
	})

	t.Run("ProfileDir", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{ProfileDir: "/tmp/profile-x"})
		assert.Equal(t, "/tmp/profile-x", flags["user-data-dir"])
	})

	t.Run("NoProfileDir", func(t *testing.T) {
		assert.NotContains(t, launchFlags(config.BrowserConfig{}), "user-data-dir")
	})

	t.Run("CustomArgsAreNormalized", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{Args: []string{"--mute-audio"}})
		assert.Equal(t, true, flags["mute-audio"])
	})
}

func TestAllocatorOptions_CarriesAllFlags(t *testing.T) {
	cfg := config.BrowserConfig{WindowWidth: 1280, WindowHeight: 800, ProfileDir: "/tmp/p"}
	opts := AllocatorOptions(cfg)

	// Defaults, window size, and one option per derived flag.
	want := len(chromedp.DefaultExecAllocatorOptions) + 1 + len(launchFlags(cfg))
	assert.Len(t, opts, want)
}

func TestNormalizeFlag(t *testing.T) {
	assert.Equal(t, "mute-audio", normalizeFlag("--mute-audio"))
	assert.Equal(t, "mute-audio", normalizeFlag("mute-audio"))
}
