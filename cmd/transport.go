/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"sort"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/cfdtools/gofvm/InputParameters"
	"github.com/cfdtools/gofvm/convdiff"
	"github.com/cfdtools/gofvm/geom"
)

type TransportModel struct {
	Nx, Ny, Nz int
	DX         float64
	U          float64 // uniform transport velocity in x
	Nu         float64 // diffusivity
	ICFile     string
	Steps      int
	DT         float64
	ProcLimit  int
	Profile    bool
}

// transportCmd represents the transport command
var transportCmd = &cobra.Command{
	Use:   "transport",
	Short: "Advect and diffuse a scalar pulse through a Cartesian box",
	Long: `
Runs the convection/diffusion operator on a uniform Cartesian mesh with
a prescribed x-velocity: Dirichlet inflow, zero gradient outflow, and an
initial Gaussian pulse. Scheme settings per variable come from a YAML
input file, or default to slope tested centered interpolation.

gofvm transport -I transport.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		tm := &TransportModel{}
		tm.Nx, _ = cmd.Flags().GetInt("nx")
		tm.Ny, _ = cmd.Flags().GetInt("ny")
		tm.Nz, _ = cmd.Flags().GetInt("nz")
		tm.DX, _ = cmd.Flags().GetFloat64("dx")
		tm.U, _ = cmd.Flags().GetFloat64("velocity")
		tm.Nu, _ = cmd.Flags().GetFloat64("diffusivity")
		tm.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		tm.Steps, _ = cmd.Flags().GetInt("steps")
		tm.DT, _ = cmd.Flags().GetFloat64("dt")
		tm.ProcLimit, _ = cmd.Flags().GetInt("nproc")
		tm.Profile, _ = cmd.Flags().GetBool("profile")
		ip := processTransportInput(tm)
		RunTransport(tm, ip)
	},
}

func init() {
	rootCmd.AddCommand(transportCmd)
	transportCmd.Flags().IntP("nx", "x", 64, "number of cells in x")
	transportCmd.Flags().IntP("ny", "y", 8, "number of cells in y")
	transportCmd.Flags().IntP("nz", "z", 8, "number of cells in z")
	transportCmd.Flags().Float64("dx", 1, "cell size")
	transportCmd.Flags().Float64P("velocity", "U", 1, "uniform x velocity")
	transportCmd.Flags().Float64("diffusivity", 0.01, "scalar diffusivity")
	transportCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file with per-variable scheme settings")
	transportCmd.Flags().IntP("steps", "s", 100, "number of explicit time steps")
	transportCmd.Flags().Float64("dt", 0.25, "time step")
	transportCmd.Flags().IntP("nproc", "p", 0, "number of parallel workers, 0 = NumCPU")
	transportCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

func processTransportInput(tm *TransportModel) (ip *InputParameters.TransportParameters) {
	ip = &InputParameters.TransportParameters{
		Title: "Scalar Transport",
		Steps: tm.Steps,
		DT:    tm.DT,
		Variables: map[string]InputParameters.VariableScheme{
			"scalar": {
				Convection:  true,
				Diffusion:   true,
				Scheme:      "Centered",
				Reconstruct: true,
				SlopeTest:   true,
				Blend:       1,
			},
		},
	}
	if len(tm.ICFile) == 0 {
		return
	}
	data, err := ioutil.ReadFile(tm.ICFile)
	if err != nil {
		panic(err)
	}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if ip.Steps == 0 {
		ip.Steps = tm.Steps
	}
	if ip.DT == 0 {
		ip.DT = tm.DT
	}
	return
}

func RunTransport(tm *TransportModel, ip *InputParameters.TransportParameters) {
	if tm.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	ip.Print()
	var (
		m       = geom.NewCartesian(tm.Nx, tm.Ny, tm.Nz, tm.DX, tm.DX, tm.DX)
		op, err = convdiff.NewOperator(m, tm.ProcLimit)
	)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	cf := demoCoeffs(m, tm.U, tm.Nu)
	fmt.Printf("Mesh: %d cells, %d internal faces, %d boundary faces\n",
		m.NCells, m.NumFaces(), m.NumBFaces())
	fmt.Printf("Using %d go routines in parallel\n\n", op.ParallelDegree)

	names := make([]string, 0, len(ip.Variables))
	for name := range ip.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cfg, err := ip.Variables[name].Config()
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("Solving [%s] with %s interpolation, %s gradients\n",
			name, cfg.Scheme.Print(), cfg.Gradient.Print())
		solveTransport(op, m, cfg, cf, ip.Steps, ip.DT)
	}
}

// demoCoeffs builds the physics inputs of the demo: uniform x velocity,
// constant diffusivity, Dirichlet value 1 on the inflow plane and zero
// gradient everywhere else.
func demoCoeffs(m *geom.Mesh, u, nu float64) (cf convdiff.Coeffs) {
	nf, nb := m.NumFaces(), m.NumBFaces()
	cf = convdiff.Coeffs{
		MassFlux:  make([]float64, nf),
		Cond:      make([]float64, nf),
		BMassFlux: make([]float64, nb),
		BCond:     make([]float64, nb),
		BConvA:    make([]float64, nb),
		BConvB:    make([]float64, nb),
		BDiffA:    make([]float64, nb),
		BDiffB:    make([]float64, nb),
	}
	for f := 0; f < nf; f++ {
		cf.MassFlux[f] = u * m.Area[f][0]
		cf.Cond[f] = nu * m.Area[f].Norm() / m.DistIJ[f]
	}
	for b := 0; b < nb; b++ {
		cf.BMassFlux[b] = u * m.BArea[b][0]
		cf.BCond[b] = nu * m.BArea[b].Norm() / m.BOffIP[b].Norm()
		if cf.BMassFlux[b] < 0 {
			cf.BConvA[b] = 1 // inflow carries the far field value
			cf.BDiffA[b] = 1
		} else {
			cf.BConvB[b] = 1
			cf.BDiffB[b] = 1
		}
	}
	return
}

func solveTransport(op *convdiff.Operator, m *geom.Mesh, cfg convdiff.Config,
	cf convdiff.Coeffs, steps int, dt float64) {
	var (
		phi = make([]float64, m.NCells)
		rhs = make([]float64, m.NCells)
	)
	// Gaussian pulse a quarter of the way into the box
	var xMax float64
	for i := range phi {
		if m.Center[i][0] > xMax {
			xMax = m.Center[i][0]
		}
	}
	for i := range phi {
		r := (m.Center[i][0] - 0.25*xMax) / (0.05 * xMax)
		phi[i] = math.Exp(-r * r)
	}

	fmt.Printf("    iter         L1         L2        max\n")
	start := time.Now()
	for step := 1; step <= steps; step++ {
		for i := range rhs {
			rhs[i] = 0
		}
		if err := op.ApplyRHS(cfg, phi, cf, rhs); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		var l1, l2, maxR float64
		for i := range phi {
			dphi := dt / m.Volume[i] * rhs[i]
			phi[i] += dphi
			a := math.Abs(dphi)
			l1 += a
			l2 += a * a
			if a > maxR {
				maxR = a
			}
		}
		if step%10 == 0 || step == 1 || step == steps {
			fmt.Printf("%8d%11.4e%11.4e%11.4e\n",
				step, l1/float64(m.NCells), math.Sqrt(l2/float64(m.NCells)), maxR)
		}
	}
	elapsed := time.Since(start)
	rate := float64(elapsed.Microseconds()) / float64(m.NumFaces()*steps)
	fmt.Printf("\nRate of execution = %8.5f us/(face*iteration) over %d iterations\n\n",
		rate, steps)
}
