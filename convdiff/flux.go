package convdiff

import "math"

// internalFluxPass assembles the faces [fMin,fMax) into buf. Per face the
// convective part upwinds the interpolated face values by the mass flux
// sign (a zero flux contributes nothing to either branch) and the
// diffusive part is conductance times the difference of the reconstructed
// values at the I' and J' points. The same flux value is scattered with
// opposite signs into the two adjacent cells, which is what guarantees
// exact conservation.
func (op *Operator) internalFluxPass(cfg Config, phi []float64, cf Coeffs,
	buf []float64, fMin, fMax int) {
	var (
		m           = op.Mesh
		secondOrder = cfg.Scheme != Upwind
		testEnabled = cfg.SlopeTest && cfg.Convection && secondOrder
	)
	for f := fMin; f < fMax; f++ {
		var (
			ii, jj = int(m.FaceCellI[f]), int(m.FaceCellJ[f])
			F      = cf.MassFlux[f]
			flui   = math.Max(F, 0)
			fluj   = math.Min(F, 0)
			pi, pj = phi[ii], phi[jj]
		)
		// Reconstructed values at I' and J'. The half-sum of the two cell
		// gradients keeps the centered scheme first order consistent at
		// non-orthogonal faces.
		pip, pjp := pi, pj
		if cfg.Reconstruct {
			gf := op.Grad[ii].Add(op.Grad[jj]).Scale(0.5)
			pip = pi + gf.Dot(m.OffIP[f])
			pjp = pj + gf.Dot(m.OffJP[f])
		}

		pif, pjf := pi, pj
		switch cfg.Scheme {
		case Centered:
			pf := m.Alpha[f]*pip + (1-m.Alpha[f])*pjp
			pif, pjf = pf, pf
		case SOLU:
			// Always extrapolated, independent of the reconstruction
			// flag, so upwind is never silently reintroduced
			pif = pi + op.Grad[ii].Dot(m.OffIF[f])
			pjf = pj + op.Grad[jj].Dot(m.OffJF[f])
		}
		if secondOrder {
			pif = cfg.Blend*pif + (1-cfg.Blend)*pi
			pjf = cfg.Blend*pjf + (1-cfg.Blend)*pj
		}
		if testEnabled {
			if slopeTestTrip(F, op.Grad[ii], op.Grad[jj],
				op.GradUpw[ii], op.GradUpw[jj], m.Area[f],
				pj-pi, m.DistIJ[f], m.Area[f].Norm()) {
				pif, pjf = pi, pj
			}
		}

		fluxI, fluxJ := 0., 0.
		if cfg.Convection {
			conv := flui*pif + fluj*pjf
			fluxI, fluxJ = conv, conv
			if cfg.MassAccum {
				fluxI -= F * pi
				fluxJ -= F * pj
			}
		}
		if cfg.Diffusion {
			diff := cf.Cond[f] * (pip - pjp)
			fluxI += diff
			fluxJ += diff
		}
		buf[ii] -= fluxI
		buf[jj] += fluxJ
	}
}

// boundaryFluxPass assembles the boundary faces [bMin,bMax) into buf. The
// convected and diffused face values come from the linear boundary
// coefficient pairs applied to the reconstructed owner cell value.
func (op *Operator) boundaryFluxPass(cfg Config, phi []float64, cf Coeffs,
	buf []float64, bMin, bMax int) {
	m := op.Mesh
	for b := bMin; b < bMax; b++ {
		var (
			ii   = int(m.BFaceCell[b])
			F    = cf.BMassFlux[b]
			flui = math.Max(F, 0)
			fluj = math.Min(F, 0)
			pi   = phi[ii]
		)
		pip := pi
		if cfg.Reconstruct {
			pip = pi + op.Grad[ii].Dot(m.BOffIP[b])
		}
		var flux float64
		if cfg.Convection {
			pfac := cf.BConvA[b] + cf.BConvB[b]*pip
			flux += flui*pi + fluj*pfac
			if cfg.MassAccum {
				flux -= F * pi
			}
		}
		if cfg.Diffusion {
			pfacd := cf.BDiffA[b] + cf.BDiffB[b]*pip
			flux += cf.BCond[b] * (pip - pfacd)
		}
		buf[ii] -= flux
	}
}
