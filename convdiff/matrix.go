package convdiff

import (
	"math"

	"github.com/james-bowman/sparse"
)

// BuildMatrix assembles the implicit counterpart of the explicit RHS: the
// first order upwind linearization of the convective term plus the
// unreconstructed diffusive term, as a sparse matrix A with one row per
// cell. For a pure upwind configuration without reconstruction and zero
// boundary intercepts, A*phi equals -rhs(phi) exactly, which is how the
// assembly is tested. Higher order convective corrections stay on the
// explicit side.
func (op *Operator) BuildMatrix(cfg Config, cf Coeffs) (A *sparse.DOK, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	var (
		m  = op.Mesh
		nf = m.NumFaces()
		nb = m.NumBFaces()
	)
	A = sparse.NewDOK(m.NCells, m.NCells)
	add := func(i, j int, v float64) {
		A.Set(i, j, A.At(i, j)+v)
	}
	for f := 0; f < nf; f++ {
		var (
			ii, jj = int(m.FaceCellI[f]), int(m.FaceCellJ[f])
			cond   float64
		)
		if cfg.Diffusion {
			cond = cf.Cond[f]
		}
		var flui, fluj float64
		if cfg.Convection {
			flui = math.Max(cf.MassFlux[f], 0)
			fluj = math.Min(cf.MassFlux[f], 0)
		}
		add(ii, ii, flui+cond)
		add(ii, jj, fluj-cond)
		add(jj, jj, -fluj+cond)
		add(jj, ii, -flui-cond)
	}
	for b := 0; b < nb; b++ {
		var (
			ii   = int(m.BFaceCell[b])
			diag float64
		)
		if cfg.Convection {
			diag += math.Max(cf.BMassFlux[b], 0) +
				math.Min(cf.BMassFlux[b], 0)*cf.BConvB[b]
		}
		if cfg.Diffusion {
			diag += cf.BCond[b] * (1 - cf.BDiffB[b])
		}
		add(ii, ii, diag)
	}
	return
}
