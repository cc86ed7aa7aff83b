package convdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemeAndGradientLabels(t *testing.T) {
	assert.Equal(t, Upwind, NewSchemeType("Upwind"))
	assert.Equal(t, Centered, NewSchemeType("centered"))
	assert.Equal(t, SOLU, NewSchemeType("SOLU"))
	assert.Panics(t, func() { NewSchemeType("quick") })
	assert.Panics(t, func() { NewSchemeType("") })
	assert.Equal(t, "Second Order Linear Upwind", SOLU.Print())

	assert.Equal(t, GreenGauss, NewGradientType("GreenGauss"))
	assert.Equal(t, LeastSquares, NewGradientType("leastsquares"))
	assert.Panics(t, func() { NewGradientType("nodal") })
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Blend: 0.5}.Validate())
	assert.Error(t, Config{Blend: -0.1}.Validate())
	assert.Error(t, Config{Blend: 1.1}.Validate())
	assert.Error(t, Config{Scheme: SchemeType(17)}.Validate())
	assert.Error(t, Config{Gradient: GradientType(9)}.Validate())
}

func TestGradientGating(t *testing.T) {
	// Pure upwind convection never reconstructs
	assert.False(t, Config{Convection: true, Scheme: Upwind, Reconstruct: true}.needGradient())
	// Centered without reconstruction or slope test stays gradient free
	assert.False(t, Config{Convection: true, Scheme: Centered}.needGradient())
	assert.True(t, Config{Convection: true, Scheme: Centered, Reconstruct: true}.needGradient())
	// The second order upwind extrapolation always needs gradients
	assert.True(t, Config{Convection: true, Scheme: SOLU}.needGradient())
	assert.True(t, Config{Convection: true, Scheme: Centered, SlopeTest: true}.needGradient())
	assert.True(t, Config{Diffusion: true, Reconstruct: true}.needGradient())
	assert.False(t, Config{Diffusion: true}.needGradient())

	assert.True(t, Config{Convection: true, Scheme: SOLU, SlopeTest: true}.needUpwindGradient())
	assert.False(t, Config{Convection: true, Scheme: Upwind, SlopeTest: true}.needUpwindGradient())
	assert.False(t, Config{Convection: true, Scheme: SOLU}.needUpwindGradient())
}
