package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero width", func(c *Config) { c.CanvasW = 0 }, ErrInvalidCanvas},
		{"negative height", func(c *Config) { c.CanvasH = -1 }, ErrInvalidCanvas},
		{"zero duration", func(c *Config) { c.Duration = 0 }, ErrInvalidDuration},
		{"negative layers", func(c *Config) { c.OpenLayers = -1 }, ErrInvalidLayers},
		{"zero scaling", func(c *Config) { c.FontScaling = 0 }, ErrInvalidFont},
		{"zero interval", func(c *Config) { c.CompositeInterval = 0 }, ErrInvalidInterval},
		{"zero spacing", func(c *Config) { c.LaneSpacing = 0 }, ErrInvalidSpacing},
		{"negative grace", func(c *Config) { c.EvictionGrace = -0.1 }, ErrInvalidGrace},
		{"zero stack depth", func(c *Config) { c.StackDepthLimit = 0 }, ErrInvalidStackDepth},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}

func TestConfigValidate_DisabledFrameBudgetIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameBudget = -time.Second
	assert.NoError(t, cfg.Validate())
}

func TestMaxStackDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CanvasH = 720
	cfg.OpenLayers = 0
	// ceil(720/12) * (0+2)
	assert.Equal(t, 120, cfg.MaxStackDepth())

	cfg.OpenLayers = 2
	assert.Equal(t, 240, cfg.MaxStackDepth())

	cfg.OpenLayers = 1000
	assert.Equal(t, DefaultStackDepthLimit, cfg.MaxStackDepth())

	cfg.CanvasH = 5
	cfg.OpenLayers = 0
	assert.Equal(t, 2, cfg.MaxStackDepth())
}
