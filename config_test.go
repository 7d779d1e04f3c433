package shadowgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/shadowgraph/render"
)

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
lod_bias: 1.5
debug: true
pool:
  frame_limit: 10
shadows:
  cube_size: 256
  format: r16f
`))
	require.NoError(t, err)

	assert.Equal(t, float32(1.5), cfg.LodBias)
	assert.Equal(t, float32(0.7), cfg.HemisphericWeight)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 10, cfg.Pool.FrameLimit)
	assert.Equal(t, 1024, cfg.Shadows.DefaultSize)
	assert.Equal(t, 256, cfg.Shadows.CubeSize)
	assert.Equal(t, render.FormatR16F, cfg.Shadows.Format)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "lod_bias: [1"},
		{"unknown format", "shadows:\n  format: bgra\n"},
		{"zero lod bias", "lod_bias: 0"},
		{"hemispheric weight too large", "hemispheric_weight: 2"},
		{"negative size", "shadows:\n  cascade_size: -1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadows.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hemispheric_weight: 0.25\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), cfg.HemisphericWeight)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HemisphericWeight = 0.3
	cfg.Pool.FrameLimit = 5
	cfg.Debug = true

	var o pipelineOptions
	for _, opt := range cfg.Apply() {
		opt(&o)
	}
	assert.Equal(t, float32(1), o.lodBias)
	assert.Equal(t, float32(0.3), o.hemisphericWeight)
	assert.Equal(t, 5, o.frameLimit)
	assert.Equal(t, cfg.Shadows, o.shadows)
	assert.True(t, o.strict)
	require.NotNil(t, o.log)
	assert.True(t, o.log.DebugEnabled())
}
