package convdiff

import "github.com/cfdtools/gofvm/geom"

// slopeTestTrip reports whether a face must revert to first order upwind.
// The test compares the donor cell's reconstructed slope against the
// two-point difference across the face and checks the one-sided gradients
// of the two cells for a sign change; either condition marks the face as
// locally non-monotone. It is symmetric in the mass flux sign: the donor
// side quantities follow the flux direction.
func slopeTestTrip(massFlux float64, gI, gJ, guI, guJ, s geom.Vec3,
	dphi, distIJ, srfn float64) bool {
	var dcc, ddi, ddj float64
	if massFlux > 0 {
		dcc = gI.Dot(s)
		ddi = guI.Dot(s)
		ddj = dphi / distIJ * srfn
	} else {
		dcc = gJ.Dot(s)
		ddi = dphi / distIJ * srfn
		ddj = guJ.Dot(s)
	}
	tesqck := dcc*dcc - (ddi-ddj)*(ddi-ddj)
	return tesqck < 0 || guI.Dot(guJ) < 0
}
