package segment

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"scan-splitter/internal/domain/entity"
)

func candidate(w, h int) Candidate {
	box := image.Rect(10, 10, 10+w, 10+h)
	return Candidate{Box: box, Area: float64((w - 1) * (h - 1))}
}

func TestAreaSizePolicy_Accept(t *testing.T) {
	p := NewAreaSizePolicy(10)
	bounds := image.Rect(0, 0, 1000, 1000)

	require.True(t, p.Accept(candidate(200, 150), bounds))
	require.False(t, p.Accept(candidate(50, 50), bounds), "area below 5000")
	require.False(t, p.Accept(Candidate{Box: image.Rect(0, 0, 300, 300), Area: 4999}, bounds), "area uses polygon, not box")
	require.False(t, p.Accept(candidate(99, 400), bounds), "narrow")
	require.False(t, p.Accept(candidate(400, 99), bounds), "short")
	require.False(t, p.Accept(candidate(901, 300), bounds), "too wide")
	require.False(t, p.Accept(candidate(300, 901), bounds), "too tall")
	require.True(t, p.Accept(candidate(900, 900), bounds))
	require.Equal(t, 10, p.Padding())
	require.Equal(t, entity.PolicyAreaSize, p.Name())
}

func TestAspectRatioPolicy_Accept(t *testing.T) {
	p := NewAspectRatioPolicy()
	bounds := image.Rect(0, 0, 1000, 1000)

	require.True(t, p.Accept(candidate(400, 300), bounds))
	require.False(t, p.Accept(candidate(400, 100), bounds), "aspect 4.0")
	require.False(t, p.Accept(candidate(600, 250), bounds), "aspect 2.4 with passing area")
	require.False(t, p.Accept(candidate(500, 250), bounds), "aspect exactly 2.0")
	require.False(t, p.Accept(candidate(190, 190), bounds), "sides not above 0.2 of the image")
	require.False(t, p.Accept(candidate(950, 950), bounds), "area above 0.9")
	require.False(t, p.Accept(candidate(200, 300), bounds), "width not above 0.2")
	require.False(t, p.Accept(Candidate{Box: image.Rect(0, 0, 10, 0)}, bounds))
	require.Zero(t, p.Padding())
	require.Equal(t, entity.PolicyAspectRatio, p.Name())
}

func TestPolicyFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Padding = 25

	p, err := PolicyFor(entity.PolicyAreaSize, cfg)
	require.NoError(t, err)
	require.Equal(t, 25, p.Padding())

	p, err = PolicyFor(entity.PolicyAspectRatio, cfg)
	require.NoError(t, err)
	require.Zero(t, p.Padding())

	_, err = PolicyFor("largest", cfg)
	require.True(t, entity.IsConfigError(err))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"padding":      func(c *Config) { c.Padding = -1 },
		"blur_kernel":  func(c *Config) { c.BlurKernel = 4 },
		"block_size":   func(c *Config) { c.BlockSize = 1 },
		"mode":         func(c *Config) { c.ThresholdMode = "otsu" },
		"morph_kernel": func(c *Config) { c.MorphKernel = 0 },
		"iterations":   func(c *Config) { c.CloseIterations = -2 },
		"epsilon":      func(c *Config) { c.Epsilon = 1.5 },
		"iou":          func(c *Config) { c.OverlapIoU = 0 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		err := cfg.Validate()
		require.Error(t, err, name)
		require.True(t, entity.IsConfigError(err), name)

		_, err = New(cfg, nil)
		require.True(t, entity.IsConfigError(err), name)
	}
}
