package convdiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdtools/gofvm/geom"
)

// neumannCoeffs returns zeroed physics inputs with homogeneous Neumann
// boundary pairs (value = cell value) on every boundary face.
func neumannCoeffs(m *geom.Mesh) (cf Coeffs) {
	nf, nb := m.NumFaces(), m.NumBFaces()
	cf = Coeffs{
		MassFlux:  make([]float64, nf),
		Cond:      make([]float64, nf),
		BMassFlux: make([]float64, nb),
		BCond:     make([]float64, nb),
		BConvA:    make([]float64, nb),
		BConvB:    make([]float64, nb),
		BDiffA:    make([]float64, nb),
		BDiffB:    make([]float64, nb),
	}
	for b := 0; b < nb; b++ {
		cf.BConvB[b], cf.BDiffB[b] = 1, 1
	}
	return
}

// uniformXFlow fills mass fluxes for a uniform velocity u in x and
// conductances for a constant diffusivity nu.
func uniformXFlow(m *geom.Mesh, cf Coeffs, u, nu float64) {
	for f := 0; f < m.NumFaces(); f++ {
		cf.MassFlux[f] = u * m.Area[f][0]
		cf.Cond[f] = nu * m.Area[f].Norm() / m.DistIJ[f]
	}
	for b := 0; b < m.NumBFaces(); b++ {
		cf.BMassFlux[b] = u * m.BArea[b][0]
		cf.BCond[b] = nu * m.BArea[b].Norm() / m.BOffIP[b].Norm()
	}
}

func testField(n int) (phi []float64) {
	phi = make([]float64, n)
	for i := range phi {
		phi[i] = math.Sin(1.3*float64(i)) + 0.2*math.Cos(7.1*float64(i+3))
	}
	return
}

func TestConservation(t *testing.T) {
	var (
		m   = geom.NewCartesian(3, 3, 3, 1, 0.8, 1.2)
		phi = testField(m.NCells)
	)
	op, err := NewOperator(m, 2)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	uniformXFlow(m, cf, 1.7, 0.4)
	// Closed box: no boundary mass flux, homogeneous Neumann diffusion,
	// so every flux is internal and cancels pairwise in the global sum
	for b := range cf.BMassFlux {
		cf.BMassFlux[b] = 0
	}
	for _, scheme := range []SchemeType{Upwind, Centered, SOLU} {
		for _, recon := range []bool{false, true} {
			for _, st := range []bool{false, true} {
				cfg := Config{
					Convection:  true,
					Diffusion:   true,
					Reconstruct: recon,
					SlopeTest:   st,
					Scheme:      scheme,
					Blend:       1,
				}
				rhs := make([]float64, m.NCells)
				require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
				var sum float64
				for _, r := range rhs {
					sum += r
				}
				assert.InDelta(t, 0, sum, 1.e-12,
					"scheme %s recon %v slopetest %v", scheme.Print(), recon, st)
			}
		}
	}
}

func TestConservationPerFace(t *testing.T) {
	// Two cells, one internal face: the decrement on I is exactly the
	// negative of the increment on J
	var (
		m   = geom.NewCartesian(2, 1, 1, 1, 1, 1)
		phi = []float64{1.25, -0.75}
	)
	op, err := NewOperator(m, 1)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	uniformXFlow(m, cf, 2.5, 0.3)
	for _, scheme := range []SchemeType{Upwind, Centered, SOLU} {
		cfg := Config{
			Convection:  true,
			Diffusion:   true,
			Reconstruct: true,
			Scheme:      scheme,
			Blend:       0.7,
		}
		require.NoError(t, op.computeGradients(cfg, phi, cf))
		buf := make([]float64, 2)
		op.internalFluxPass(cfg, phi, cf, buf, 0, 1)
		assert.Equal(t, buf[0], -buf[1])
	}
}

func TestUpwindReductionUniformField(t *testing.T) {
	var (
		m   = geom.NewCartesian(4, 2, 2, 1, 1, 1)
		c   = 3.75
		phi = make([]float64, m.NCells)
	)
	for i := range phi {
		phi[i] = c
	}
	op, err := NewOperator(m, 2)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	uniformXFlow(m, cf, 2, 0)
	// Dirichlet inflow carrying the same constant
	for b := 0; b < m.NumBFaces(); b++ {
		if cf.BMassFlux[b] < 0 {
			cf.BConvA[b], cf.BConvB[b] = c, 0
		}
	}
	cfg := Config{Convection: true, Scheme: Upwind}
	// Divergence-free transport of a constant: every cell RHS vanishes
	rhs := make([]float64, m.NCells)
	require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
	for i, r := range rhs {
		assert.InDelta(t, 0, r, 1.e-13, "cell %d", i)
	}
	// With the mass accumulation term the convective flux of a constant
	// is exactly zero on every face, independent of flux divergence
	cfg.MassAccum = true
	buf := make([]float64, m.NCells)
	op.internalFluxPass(cfg, phi, cf, buf, 0, m.NumFaces())
	for i, r := range buf {
		assert.Equal(t, 0., r, "cell %d", i)
	}
}

func TestExactLinearReconstruction(t *testing.T) {
	var (
		m = geom.NewCartesian(4, 3, 3, 1, 1, 1)
		f = func(p geom.Vec3) float64 { return 2 + 3*p[0] }
	)
	phi := make([]float64, m.NCells)
	for i := range phi {
		phi[i] = f(m.Center[i])
	}
	op, err := NewOperator(m, 1)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	// Dirichlet boundary values sampled from the analytic field
	for b := 0; b < m.NumBFaces(); b++ {
		v := f(m.Center[m.BFaceCell[b]].Add(m.BOffIP[b]))
		cf.BConvA[b], cf.BConvB[b] = v, 0
		cf.BDiffA[b], cf.BDiffB[b] = v, 0
	}
	// Unit mass flux through a single face isolates that face's
	// interpolated value in the RHS
	cf.MassFlux[0] = 1
	faceVal := f(m.Center[m.FaceCellI[0]].Add(m.OffIF[0]))
	for _, grad := range []GradientType{GreenGauss, LeastSquares} {
		for _, scheme := range []SchemeType{Centered, SOLU} {
			cfg := Config{
				Convection:  true,
				Reconstruct: true,
				Scheme:      scheme,
				Gradient:    grad,
				Blend:       1,
			}
			rhs := make([]float64, m.NCells)
			require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
			assert.InDelta(t, -faceVal, rhs[m.FaceCellI[0]], 1.e-12,
				"%s %s", grad.Print(), scheme.Print())
			assert.InDelta(t, faceVal, rhs[m.FaceCellJ[0]], 1.e-12)
		}
	}
}

func TestBlendEndpoints(t *testing.T) {
	var (
		m   = geom.NewCartesian(3, 3, 3, 1, 1, 1)
		phi = testField(m.NCells)
	)
	op, err := NewOperator(m, 2)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	uniformXFlow(m, cf, 1.3, 0)

	run := func(cfg Config) []float64 {
		rhs := make([]float64, m.NCells)
		require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
		return rhs
	}
	upwind := run(Config{Convection: true, Scheme: Upwind})
	for _, scheme := range []SchemeType{Centered, SOLU} {
		cfg := Config{Convection: true, Reconstruct: true, Scheme: scheme}
		cfg.Blend = 0
		blend0 := run(cfg)
		// Fully blended toward upwind is bit identical to the pure
		// upwind scheme
		require.Equal(t, upwind, blend0, scheme.Print())

		cfg.Blend = 1
		blend1 := run(cfg)
		cfg.Blend = 0.5
		blendHalf := run(cfg)
		// The flux is linear in the blending coefficient, so the
		// midpoint must interpolate the two endpoint runs
		for i := range blendHalf {
			assert.InDelta(t, 0.5*(blend0[i]+blend1[i]), blendHalf[i], 1.e-12)
		}
	}
}

func TestSlopeTestTrip(t *testing.T) {
	// Non-monotone 1-D profile: both faces must revert to upwind
	var (
		m   = geom.NewCartesian(3, 1, 1, 1, 1, 1)
		phi = []float64{0, 10, 0}
	)
	op, err := NewOperator(m, 1)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	cf.MassFlux[0], cf.MassFlux[1] = 1, 1

	cfg := Config{
		Convection:  true,
		Reconstruct: true,
		Scheme:      Centered,
		Blend:       1,
	}
	rhs := make([]float64, m.NCells)
	require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
	// Unlimited centered interpolation convects the face average
	assert.InDelta(t, -5, rhs[0], 1.e-13)
	assert.InDelta(t, 0, rhs[1], 1.e-13)
	assert.InDelta(t, 5, rhs[2], 1.e-13)

	cfg.SlopeTest = true
	rhs = make([]float64, m.NCells)
	require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
	// Donor values: 0 across the first face, 10 across the second
	assert.InDelta(t, 0, rhs[0], 1.e-13)
	assert.InDelta(t, -10, rhs[1], 1.e-13)
	assert.InDelta(t, 10, rhs[2], 1.e-13)
}

func TestBoundaryDirichletReduction(t *testing.T) {
	var (
		m   = geom.NewCartesian(1, 1, 1, 1, 1, 1)
		phi = []float64{3}
		V   = 7.
		K   = 2.
	)
	op, err := NewOperator(m, 1)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	cf.BCond[0] = K
	cf.BDiffA[0], cf.BDiffB[0] = V, 0
	cfg := Config{Diffusion: true}
	rhs := make([]float64, 1)
	require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
	assert.Equal(t, -K*(phi[0]-V), rhs[0])
}

func TestGradientsZeroWhenUnneeded(t *testing.T) {
	var (
		m   = geom.NewCartesian(3, 2, 2, 1, 1, 1)
		phi = testField(m.NCells)
	)
	op, err := NewOperator(m, 1)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	uniformXFlow(m, cf, 1, 0.5)
	zero := geom.Vec3{}

	// First order upwind with unreconstructed diffusion never touches
	// gradients
	rhs := make([]float64, m.NCells)
	require.NoError(t, op.ApplyRHS(Config{Convection: true, Diffusion: true, Scheme: Upwind},
		phi, cf, rhs))
	for i := range op.Gradients() {
		assert.Equal(t, zero, op.Gradients()[i])
		assert.Equal(t, zero, op.UpwindGradients()[i])
	}

	// Centered without reconstruction or slope test is also gradient free
	require.NoError(t, op.ApplyRHS(Config{Convection: true, Scheme: Centered, Blend: 1},
		phi, cf, rhs))
	for i := range op.Gradients() {
		assert.Equal(t, zero, op.Gradients()[i])
	}

	// Enabling reconstruction populates them
	require.NoError(t, op.ApplyRHS(Config{Convection: true, Scheme: Centered,
		Reconstruct: true, Blend: 1}, phi, cf, rhs))
	var nonZero bool
	for _, g := range op.Gradients() {
		if g != zero {
			nonZero = true
		}
	}
	assert.True(t, nonZero)
}

func TestParallelReductionDeterminism(t *testing.T) {
	var (
		m   = geom.NewCartesian(8, 4, 4, 1, 1, 1)
		phi = testField(m.NCells)
		cfg = Config{
			Convection:  true,
			Diffusion:   true,
			Reconstruct: true,
			SlopeTest:   true,
			Scheme:      Centered,
			Blend:       1,
		}
	)
	cf := neumannCoeffs(m)
	uniformXFlow(m, cf, 1.1, 0.2)

	run := func(procLimit int) []float64 {
		op, err := NewOperator(m, procLimit)
		require.NoError(t, err)
		rhs := make([]float64, m.NCells)
		require.NoError(t, op.ApplyRHS(cfg, phi, cf, rhs))
		return rhs
	}
	// Fixed worker count: bit identical across runs
	require.Equal(t, run(4), run(4))
	// Across worker counts only the float summation order changes
	serial, parallel := run(1), run(4)
	for i := range serial {
		assert.InDelta(t, serial[i], parallel[i], 1.e-12)
	}
}

func TestApplyRHSInputValidation(t *testing.T) {
	m := geom.NewCartesian(2, 2, 2, 1, 1, 1)
	op, err := NewOperator(m, 1)
	require.NoError(t, err)
	cf := neumannCoeffs(m)
	rhs := make([]float64, m.NCells)

	assert.Error(t, op.ApplyRHS(Config{Blend: 2}, testField(m.NCells), cf, rhs))
	assert.Error(t, op.ApplyRHS(Config{}, testField(3), cf, rhs))
	bad := cf
	bad.MassFlux = bad.MassFlux[:1]
	assert.Error(t, op.ApplyRHS(Config{}, testField(m.NCells), bad, rhs))
}
