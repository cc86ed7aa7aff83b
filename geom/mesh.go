package geom

import "fmt"

/*
Mesh is the topology and geometry provider for the finite volume
operators. Scalar unknowns live at cell centers; fluxes are exchanged
across faces. Each internal face connects exactly two cells I and J and
its area vector is oriented from I toward J. Boundary faces have a
single owning cell and an outward area vector.

The reconstruction points I' and J' are the projections of the cell
centers onto the face normal through the face center; on an orthogonal
mesh they coincide with the face center. OffIP/OffJP reach them from
the cell centers and are used for diffusive and centered-scheme
reconstruction, while OffIF/OffJF reach the face center itself and are
used for one-sided (donor cell) extrapolation.
*/
type Mesh struct {
	NCells int
	Volume []float64
	Center []Vec3

	// Internal faces
	FaceCellI, FaceCellJ []int32
	Area                 []Vec3    // oriented I -> J
	Alpha                []float64 // non-orthogonality weighting factor in [0,1]
	OffIP, OffJP         []Vec3    // cell center -> reconstruction point I', J'
	OffIF, OffJF         []Vec3    // cell center -> face center
	DistIJ               []float64 // |I'J'|

	// Boundary faces
	BFaceCell []int32
	BArea     []Vec3 // outward
	BOffIP    []Vec3 // cell center -> boundary reconstruction point

	// Cell -> face adjacency in CSR form, built by Finalize. AdjFace holds
	// internal face indices, with boundary face b stored as NumFaces()+b.
	// AdjSign is +1 where the cell is I (or owns the boundary face) and -1
	// where it is J, so that AdjSign*Area is the outward area vector.
	AdjPtr  []int32
	AdjFace []int32
	AdjSign []float64
}

func (m *Mesh) NumFaces() int  { return len(m.FaceCellI) }
func (m *Mesh) NumBFaces() int { return len(m.BFaceCell) }

// Finalize builds the cell->face adjacency consumed by the gather form
// gradient passes. Call once after the face arrays are filled.
func (m *Mesh) Finalize() {
	var (
		nf    = m.NumFaces()
		nb    = m.NumBFaces()
		count = make([]int32, m.NCells)
	)
	for f := 0; f < nf; f++ {
		count[m.FaceCellI[f]]++
		count[m.FaceCellJ[f]]++
	}
	for b := 0; b < nb; b++ {
		count[m.BFaceCell[b]]++
	}
	m.AdjPtr = make([]int32, m.NCells+1)
	for i := 0; i < m.NCells; i++ {
		m.AdjPtr[i+1] = m.AdjPtr[i] + count[i]
	}
	m.AdjFace = make([]int32, m.AdjPtr[m.NCells])
	m.AdjSign = make([]float64, m.AdjPtr[m.NCells])
	fill := make([]int32, m.NCells)
	insert := func(cell int32, face int32, sign float64) {
		at := m.AdjPtr[cell] + fill[cell]
		m.AdjFace[at] = face
		m.AdjSign[at] = sign
		fill[cell]++
	}
	for f := 0; f < nf; f++ {
		insert(m.FaceCellI[f], int32(f), 1)
		insert(m.FaceCellJ[f], int32(f), -1)
	}
	for b := 0; b < nb; b++ {
		insert(m.BFaceCell[b], int32(nf+b), 1)
	}
}

// Validate rejects malformed geometry before it reaches the flux
// operators: inconsistent adjacency, weights outside [0,1] and degenerate
// cell center distances are all fatal configuration errors.
func (m *Mesh) Validate() (err error) {
	var (
		nf = m.NumFaces()
		nb = m.NumBFaces()
	)
	if m.NCells <= 0 {
		return fmt.Errorf("mesh has no cells")
	}
	if len(m.Volume) != m.NCells || len(m.Center) != m.NCells {
		return fmt.Errorf("cell array sizes disagree with NCells = %d", m.NCells)
	}
	for i := 0; i < m.NCells; i++ {
		if !(m.Volume[i] > 0) {
			return fmt.Errorf("cell %d has non-positive volume %g", i, m.Volume[i])
		}
	}
	if len(m.FaceCellJ) != nf || len(m.Area) != nf || len(m.Alpha) != nf ||
		len(m.OffIP) != nf || len(m.OffJP) != nf ||
		len(m.OffIF) != nf || len(m.OffJF) != nf || len(m.DistIJ) != nf {
		return fmt.Errorf("internal face array sizes disagree, %d faces", nf)
	}
	for f := 0; f < nf; f++ {
		ii, jj := m.FaceCellI[f], m.FaceCellJ[f]
		if ii < 0 || int(ii) >= m.NCells || jj < 0 || int(jj) >= m.NCells {
			return fmt.Errorf("face %d references cell out of range [%d %d]", f, ii, jj)
		}
		if ii == jj {
			return fmt.Errorf("face %d references cell %d on both sides", f, ii)
		}
		if m.Alpha[f] < 0 || m.Alpha[f] > 1 {
			return fmt.Errorf("face %d weighting factor %g outside [0,1]", f, m.Alpha[f])
		}
		if !(m.DistIJ[f] > 0) {
			return fmt.Errorf("face %d has degenerate cell center distance %g", f, m.DistIJ[f])
		}
	}
	if len(m.BArea) != nb || len(m.BOffIP) != nb {
		return fmt.Errorf("boundary face array sizes disagree, %d faces", nb)
	}
	for b := 0; b < nb; b++ {
		if m.BFaceCell[b] < 0 || int(m.BFaceCell[b]) >= m.NCells {
			return fmt.Errorf("boundary face %d references cell %d out of range", b, m.BFaceCell[b])
		}
	}
	return
}
