package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/cfdtools/gofvm/convdiff"
)

// Parameters obtained from the YAML input file
type TransportParameters struct {
	Title     string                    `yaml:"Title"`
	Steps     int                       `yaml:"Steps"`
	DT        float64                   `yaml:"DT"`
	Variables map[string]VariableScheme `yaml:"Variables"` // Key is the transported variable name
}

// VariableScheme is the per-variable numerical setup of the transport
// operator
type VariableScheme struct {
	Convection  bool    `yaml:"Convection"`
	Diffusion   bool    `yaml:"Diffusion"`
	Scheme      string  `yaml:"Scheme"`   // Upwind | Centered | SOLU
	Gradient    string  `yaml:"Gradient"` // GreenGauss | LeastSquares
	Reconstruct bool    `yaml:"Reconstruct"`
	SlopeTest   bool    `yaml:"SlopeTest"`
	Blend       float64 `yaml:"Blend"`
}

func (tp *TransportParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, tp)
}

func (tp *TransportParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", tp.Title)
	fmt.Printf("%8d\t\t= Steps\n", tp.Steps)
	fmt.Printf("%8.5f\t\t= DT\n", tp.DT)
	keys := make([]string, len(tp.Variables))
	i := 0
	for k := range tp.Variables {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Variables[%s] = %+v\n", key, tp.Variables[key])
	}
}

// Config translates the YAML scheme labels into an operator
// configuration. Empty labels fall back to upwind convection with
// Green-Gauss gradients.
func (vs VariableScheme) Config() (cfg convdiff.Config, err error) {
	cfg = convdiff.Config{
		Convection:  vs.Convection,
		Diffusion:   vs.Diffusion,
		Reconstruct: vs.Reconstruct,
		SlopeTest:   vs.SlopeTest,
		Blend:       vs.Blend,
	}
	if len(vs.Scheme) != 0 {
		cfg.Scheme = convdiff.NewSchemeType(vs.Scheme)
	}
	if len(vs.Gradient) != 0 {
		cfg.Gradient = convdiff.NewGradientType(vs.Gradient)
	}
	err = cfg.Validate()
	return
}
