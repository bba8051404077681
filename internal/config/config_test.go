// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "meetpilot", cfg.Logger.ServiceName)
	assert.Equal(t, "gemini-2.5-flash", cfg.Classifier.Model)
	assert.Equal(t, 7, cfg.Session.RestartTries)
	assert.Equal(t, 120, cfg.Session.AloneThreshold)
	assert.Equal(t, time.Second, cfg.Session.PollInterval)
	assert.Equal(t, 0.65, cfg.Screen.TemplateThreshold)
	assert.True(t, cfg.Session.Host(), "no meeting link means hosting")

	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("session.meeting_link", "https://meet.google.com/abc-defg-hij")
	v.Set("session.alone_threshold", 30)
	v.Set("session.poll_interval", "250ms")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.False(t, cfg.Session.Host())
	assert.Equal(t, 30, cfg.Session.AloneThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.PollInterval)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero restart tries", func(c *Config) { c.Session.RestartTries = 0 }},
		{"zero login tries", func(c *Config) { c.Session.LoginTries = 0 }},
		{"zero alone threshold", func(c *Config) { c.Session.AloneThreshold = 0 }},
		{"negative poll interval", func(c *Config) { c.Session.PollInterval = -time.Second }},
		{"template threshold above one", func(c *Config) { c.Screen.TemplateThreshold = 1.5 }},
		{"confidence above hundred", func(c *Config) { c.Session.LeaveConfidence = 101 }},
		{"zero window width", func(c *Config) { c.Browser.WindowWidth = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
