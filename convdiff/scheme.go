package convdiff

import (
	"fmt"
	"strings"
)

// SchemeType selects the face interpolation policy for the convective term
type SchemeType uint

const (
	Upwind SchemeType = iota
	Centered
	SOLU
)

var (
	SchemeNames = map[string]SchemeType{
		"upwind":   Upwind,
		"centered": Centered,
		"solu":     SOLU,
	}
	SchemePrintNames = []string{"Upwind", "Centered", "Second Order Linear Upwind"}
)

func NewSchemeType(label string) (st SchemeType) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		err = fmt.Errorf("empty scheme type, must be one of %v", SchemeNames)
		panic(err)
	}
	label = strings.ToLower(label)
	if st, ok = SchemeNames[label]; !ok {
		err = fmt.Errorf("unable to use scheme type named %s", label)
		panic(err)
	}
	return
}

func (st SchemeType) Print() (txt string) {
	txt = SchemePrintNames[int(st)]
	return
}

// GradientType selects how cell gradients are reconstructed
type GradientType uint

const (
	GreenGauss GradientType = iota
	LeastSquares
)

var (
	GradientNames = map[string]GradientType{
		"greengauss":   GreenGauss,
		"leastsquares": LeastSquares,
	}
	GradientPrintNames = []string{"Green-Gauss", "Least Squares"}
)

func NewGradientType(label string) (gt GradientType) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		err = fmt.Errorf("empty gradient type, must be one of %v", GradientNames)
		panic(err)
	}
	label = strings.ToLower(label)
	if gt, ok = GradientNames[label]; !ok {
		err = fmt.Errorf("unable to use gradient type named %s", label)
		panic(err)
	}
	return
}

func (gt GradientType) Print() (txt string) {
	txt = GradientPrintNames[int(gt)]
	return
}

// Config carries the per-variable settings of the transport operator. The
// zero value is a pure first order upwind configuration with convection
// and diffusion disabled.
type Config struct {
	Convection  bool
	Diffusion   bool
	Reconstruct bool // correct cell values to off-center points using gradients
	SlopeTest   bool // revert non-monotone faces to upwind
	MassAccum   bool // subtract the mass accumulation term F*phi(cell) per side
	Scheme      SchemeType
	Gradient    GradientType
	Blend       float64 // mix ratio between second order scheme and upwind, in [0,1]
}

func (cfg Config) Validate() (err error) {
	if cfg.Blend < 0 || cfg.Blend > 1 {
		return fmt.Errorf("blending coefficient %g outside [0,1]", cfg.Blend)
	}
	if int(cfg.Scheme) >= len(SchemePrintNames) {
		return fmt.Errorf("unknown scheme type %d", cfg.Scheme)
	}
	if int(cfg.Gradient) >= len(GradientPrintNames) {
		return fmt.Errorf("unknown gradient type %d", cfg.Gradient)
	}
	return
}

// needGradient gates the gradient pass. Disabling reconstruction must make
// the operator numerically identical to a genuinely first order run, so
// gradients stay exactly zero unless some consumer needs them.
func (cfg Config) needGradient() bool {
	if cfg.Convection && cfg.Scheme != Upwind &&
		(cfg.Reconstruct || cfg.Scheme == SOLU || cfg.SlopeTest) {
		return true
	}
	return cfg.Diffusion && cfg.Reconstruct
}

// needUpwindGradient gates the one-sided gradient pass, which only feeds
// the slope test.
func (cfg Config) needUpwindGradient() bool {
	return cfg.Convection && cfg.Scheme != Upwind && cfg.SlopeTest
}
