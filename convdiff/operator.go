package convdiff

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cfdtools/gofvm/geom"
	"github.com/cfdtools/gofvm/utils"
)

/*
Operator assembles the explicit convection/diffusion right hand side of
a scalar transport equation on an unstructured mesh. Per invocation it
runs up to three passes:
 1. cell gradient reconstruction (gather over cell faces)
 2. one-sided gradient reconstruction for the slope test
 3. face flux assembly, scattered into the RHS of the adjacent cells

The gradient passes are parallel across cells. The flux pass is
parallel across faces; each worker accumulates into a private RHS
buffer and the buffers are reduced into the caller's RHS sequentially
in worker order, so results are reproducible for a fixed
ParallelDegree.

Cell values (including any halo copies) must be synchronized before
calling ApplyRHS; the operator performs no communication and never
blocks.
*/
type Operator struct {
	Mesh           *geom.Mesh
	ParallelDegree int
	CellParts      *utils.PartitionMap // cells, for the gradient passes
	FaceParts      *utils.PartitionMap // internal faces, for flux assembly
	BFaceParts     *utils.PartitionMap // boundary faces
	Grad, GradUpw  []geom.Vec3         // per cell, rebuilt by every ApplyRHS
	rhsBuf         [][]float64         // per worker scatter buffers
}

// Coeffs carries the precomputed physics inputs of one transported
// variable: signed mass fluxes, diffusive conductances and the linear
// boundary coefficient pairs (value = A + B*reconstructed cell value).
type Coeffs struct {
	MassFlux []float64 // internal faces, signed along the I->J orientation
	Cond     []float64 // internal faces, diffusivity*area/distance

	BMassFlux      []float64
	BCond          []float64
	BConvA, BConvB []float64 // convected boundary face value
	BDiffA, BDiffB []float64 // diffused boundary face value
}

func NewOperator(m *geom.Mesh, procLimit int) (op *Operator, err error) {
	if err = m.Validate(); err != nil {
		return
	}
	if m.AdjPtr == nil {
		m.Finalize()
	}
	op = &Operator{Mesh: m}
	op.setParallelDegree(procLimit)
	op.Grad = make([]geom.Vec3, m.NCells)
	op.GradUpw = make([]geom.Vec3, m.NCells)
	op.rhsBuf = make([][]float64, op.ParallelDegree)
	for np := 0; np < op.ParallelDegree; np++ {
		op.rhsBuf[np] = make([]float64, m.NCells)
	}
	return
}

func (op *Operator) setParallelDegree(procLimit int) {
	if procLimit != 0 {
		op.ParallelDegree = procLimit
	} else {
		op.ParallelDegree = runtime.NumCPU()
	}
	if op.ParallelDegree > op.Mesh.NCells {
		op.ParallelDegree = 1
	}
	op.CellParts = utils.NewPartitionMap(op.ParallelDegree, op.Mesh.NCells)
	nf, nb := op.Mesh.NumFaces(), op.Mesh.NumBFaces()
	if nf > 0 && op.ParallelDegree > nf {
		op.ParallelDegree = 1
		op.CellParts = utils.NewPartitionMap(1, op.Mesh.NCells)
	}
	if nf > 0 {
		op.FaceParts = utils.NewPartitionMap(op.ParallelDegree, nf)
	}
	if nb > 0 {
		np := op.ParallelDegree
		if np > nb {
			np = 1
		}
		op.BFaceParts = utils.NewPartitionMap(np, nb)
	}
}

// Gradients exposes the cell gradients of the last ApplyRHS call for
// reuse by other discretization routines.
func (op *Operator) Gradients() []geom.Vec3 { return op.Grad }

// UpwindGradients exposes the one-sided gradients of the last ApplyRHS
// call.
func (op *Operator) UpwindGradients() []geom.Vec3 { return op.GradUpw }

func (op *Operator) checkInputs(cfg Config, phi []float64, cf Coeffs, rhs []float64) (err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	var (
		n  = op.Mesh.NCells
		nf = op.Mesh.NumFaces()
		nb = op.Mesh.NumBFaces()
	)
	if len(phi) != n || len(rhs) != n {
		return fmt.Errorf("field/rhs length %d/%d, want %d cells", len(phi), len(rhs), n)
	}
	if len(cf.MassFlux) != nf || len(cf.Cond) != nf {
		return fmt.Errorf("internal coefficient length %d/%d, want %d faces",
			len(cf.MassFlux), len(cf.Cond), nf)
	}
	if len(cf.BMassFlux) != nb || len(cf.BCond) != nb ||
		len(cf.BConvA) != nb || len(cf.BConvB) != nb ||
		len(cf.BDiffA) != nb || len(cf.BDiffB) != nb {
		return fmt.Errorf("boundary coefficient lengths disagree, want %d faces", nb)
	}
	return
}

// ApplyRHS adds the explicit convective and diffusive flux contributions
// of the field phi to rhs. rhs is owned by the caller and is only added
// to, never reset. The sign convention is rhs[I] -= flux, rhs[J] += flux
// per internal face, so internal contributions cancel exactly in the
// global sum.
func (op *Operator) ApplyRHS(cfg Config, phi []float64, cf Coeffs, rhs []float64) (err error) {
	if err = op.checkInputs(cfg, phi, cf, rhs); err != nil {
		return
	}
	if err = op.computeGradients(cfg, phi, cf); err != nil {
		return
	}
	op.computeUpwindGradients(cfg, phi, cf)

	var (
		wg = sync.WaitGroup{}
		NP = op.ParallelDegree
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			buf := op.rhsBuf[np]
			for i := range buf {
				buf[i] = 0
			}
			if op.FaceParts != nil {
				fMin, fMax := op.FaceParts.GetBucketRange(np)
				op.internalFluxPass(cfg, phi, cf, buf, fMin, fMax)
			}
			if op.BFaceParts != nil && np < op.BFaceParts.ParallelDegree {
				bMin, bMax := op.BFaceParts.GetBucketRange(np)
				op.boundaryFluxPass(cfg, phi, cf, buf, bMin, bMax)
			}
		}(np)
	}
	wg.Wait()
	// Deterministic reduction: worker buffers are folded in ascending
	// worker order
	for np := 0; np < NP; np++ {
		buf := op.rhsBuf[np]
		for i := range rhs {
			rhs[i] += buf[i]
		}
	}
	return
}
