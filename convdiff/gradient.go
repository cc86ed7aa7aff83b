package convdiff

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/cfdtools/gofvm/geom"
)

// computeGradients fills op.Grad with one gradient vector per cell, or
// with exact zeros when no enabled scheme consumes gradients.
func (op *Operator) computeGradients(cfg Config, phi []float64, cf Coeffs) (err error) {
	for i := range op.Grad {
		op.Grad[i] = geom.Vec3{}
	}
	if !cfg.needGradient() {
		return
	}
	var (
		wg   = sync.WaitGroup{}
		NP   = op.CellParts.ParallelDegree
		errs = make([]error, NP)
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := op.CellParts.GetBucketRange(np)
			switch cfg.Gradient {
			case GreenGauss:
				op.greenGaussRange(phi, cf, kMin, kMax)
			case LeastSquares:
				errs[np] = op.leastSquaresRange(phi, cf, kMin, kMax)
			}
		}(np)
	}
	wg.Wait()
	for np := 0; np < NP; np++ {
		if errs[np] != nil {
			return errs[np]
		}
	}
	return
}

// greenGaussRange gathers alpha-weighted face values over each cell's
// faces. Boundary faces contribute the diffused boundary value.
func (op *Operator) greenGaussRange(phi []float64, cf Coeffs, kMin, kMax int) {
	var (
		m  = op.Mesh
		nf = m.NumFaces()
	)
	for i := kMin; i < kMax; i++ {
		var g geom.Vec3
		for a := m.AdjPtr[i]; a < m.AdjPtr[i+1]; a++ {
			var (
				f  = int(m.AdjFace[a])
				pf float64
				s  geom.Vec3
			)
			if f < nf {
				ii, jj := m.FaceCellI[f], m.FaceCellJ[f]
				pf = m.Alpha[f]*phi[ii] + (1-m.Alpha[f])*phi[jj]
				s = m.Area[f].Scale(m.AdjSign[a])
			} else {
				b := f - nf
				pf = cf.BDiffA[b] + cf.BDiffB[b]*phi[i]
				s = m.BArea[b]
			}
			g = g.Add(s.Scale(pf))
		}
		op.Grad[i] = g.Scale(1 / m.Volume[i])
	}
}

// leastSquaresRange solves the 3x3 normal equations of the cell
// neighborhood for each cell. The normal matrix is symmetric positive
// definite for any cell whose neighbor offsets span three dimensions;
// degenerate neighborhoods are reported as errors.
func (op *Operator) leastSquaresRange(phi []float64, cf Coeffs, kMin, kMax int) (err error) {
	var (
		m    = op.Mesh
		nf   = m.NumFaces()
		chol mat.Cholesky
		x    mat.VecDense
	)
	for i := kMin; i < kMax; i++ {
		var (
			a [3][3]float64
			r geom.Vec3
		)
		for adj := m.AdjPtr[i]; adj < m.AdjPtr[i+1]; adj++ {
			var (
				f    = int(m.AdjFace[adj])
				d    geom.Vec3
				dphi float64
			)
			if f < nf {
				other := int(m.FaceCellJ[f])
				if m.AdjSign[adj] < 0 {
					other = int(m.FaceCellI[f])
				}
				d = m.Center[other].Sub(m.Center[i])
				dphi = phi[other] - phi[i]
			} else {
				b := f - nf
				d = m.BOffIP[b]
				dphi = cf.BDiffA[b] + cf.BDiffB[b]*phi[i] - phi[i]
			}
			for p := 0; p < 3; p++ {
				for q := 0; q < 3; q++ {
					a[p][q] += d[p] * d[q]
				}
			}
			r = r.Add(d.Scale(dphi))
		}
		A := mat.NewSymDense(3, []float64{
			a[0][0], a[0][1], a[0][2],
			a[1][0], a[1][1], a[1][2],
			a[2][0], a[2][1], a[2][2],
		})
		if ok := chol.Factorize(A); !ok {
			return fmt.Errorf("least squares gradient: degenerate neighborhood for cell %d", i)
		}
		if err = chol.SolveVecTo(&x, mat.NewVecDense(3, []float64{r[0], r[1], r[2]})); err != nil {
			return fmt.Errorf("least squares gradient: cell %d: %v", i, err)
		}
		op.Grad[i] = geom.Vec3{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
	}
	return
}

// computeUpwindGradients fills op.GradUpw with the one-sided gradients
// consumed by the slope test: per face, the donor cell (chosen by mass
// flux sign) extrapolates its own value to the face center, and the face
// values are gathered with the signed area vectors and divided by the
// cell volume.
func (op *Operator) computeUpwindGradients(cfg Config, phi []float64, cf Coeffs) {
	for i := range op.GradUpw {
		op.GradUpw[i] = geom.Vec3{}
	}
	if !cfg.needUpwindGradient() {
		return
	}
	var (
		wg = sync.WaitGroup{}
		NP = op.CellParts.ParallelDegree
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var (
				m          = op.Mesh
				nf         = m.NumFaces()
				kMin, kMax = op.CellParts.GetBucketRange(np)
			)
			for i := kMin; i < kMax; i++ {
				var g geom.Vec3
				for a := m.AdjPtr[i]; a < m.AdjPtr[i+1]; a++ {
					var (
						f    = int(m.AdjFace[a])
						pfac float64
						s    geom.Vec3
					)
					if f < nf {
						ii, jj := int(m.FaceCellI[f]), int(m.FaceCellJ[f])
						if cf.MassFlux[f] > 0 {
							pfac = phi[ii] + op.Grad[ii].Dot(m.OffIF[f])
						} else {
							pfac = phi[jj] + op.Grad[jj].Dot(m.OffJF[f])
						}
						s = m.Area[f].Scale(m.AdjSign[a])
					} else {
						b := f - nf
						pfac = cf.BConvA[b] + cf.BConvB[b]*phi[i]
						s = m.BArea[b]
					}
					g = g.Add(s.Scale(pfac))
				}
				op.GradUpw[i] = g.Scale(1 / m.Volume[i])
			}
		}(np)
	}
	wg.Wait()
}
