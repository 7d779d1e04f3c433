package shadowgraph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/shadowgraph/render"
)

// Config holds the runtime settings of a Pipeline.
type Config struct {
	LodBias           float32       `yaml:"lod_bias"`
	HemisphericWeight float32       `yaml:"hemispheric_weight"`
	Debug             bool          `yaml:"debug"`
	Pool              PoolConfig    `yaml:"pool"`
	Shadows           ShadowsConfig `yaml:"shadows"`
}

type PoolConfig struct {
	// FrameLimit is how many frames a free render target is kept. Negative
	// keeps them forever.
	FrameLimit int `yaml:"frame_limit"`
}

// ShadowsConfig holds defaults applied to shadows created by the pipeline.
type ShadowsConfig struct {
	DefaultSize int           `yaml:"default_size"`
	CascadeSize int           `yaml:"cascade_size"`
	CubeSize    int           `yaml:"cube_size"`
	Format      render.Format `yaml:"format"`
}

func DefaultConfig() Config {
	return Config{
		LodBias:           1,
		HemisphericWeight: 0.7,
		Pool:              PoolConfig{FrameLimit: render.DefaultFrameLimit},
		Shadows: ShadowsConfig{
			DefaultSize: 1024,
			CascadeSize: 1024,
			CubeSize:    512,
			Format:      render.FormatR32F,
		},
	}
}

// ParseConfig reads YAML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("shadowgraph: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("shadowgraph: load config: %w", err)
	}
	return ParseConfig(data)
}

func (c Config) Validate() error {
	if c.LodBias <= 0 {
		return fmt.Errorf("shadowgraph: lod_bias must be positive, got %v", c.LodBias)
	}
	if c.HemisphericWeight < 0 || c.HemisphericWeight > 1 {
		return fmt.Errorf("shadowgraph: hemispheric_weight must be in [0, 1], got %v", c.HemisphericWeight)
	}
	for name, size := range map[string]int{
		"default_size": c.Shadows.DefaultSize,
		"cascade_size": c.Shadows.CascadeSize,
		"cube_size":    c.Shadows.CubeSize,
	} {
		if size <= 0 {
			return fmt.Errorf("shadowgraph: shadows.%s must be positive, got %d", name, size)
		}
	}
	return nil
}

// Apply turns the config into pipeline options. Debug also makes queries
// panic on disabled nodes.
func (c Config) Apply() []PipelineOption {
	return []PipelineOption{
		WithLogger(NewDefaultLogger("shadowgraph", c.Debug)),
		WithLodBias(c.LodBias),
		WithHemisphericWeight(c.HemisphericWeight),
		WithFrameLimit(c.Pool.FrameLimit),
		WithShadowDefaults(c.Shadows),
		WithStrictQueries(c.Debug),
	}
}
