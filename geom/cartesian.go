package geom

/*
NewCartesian builds a uniform nx x ny x nz box of hexahedral cells with
spacings dx, dy, dz. Cells are numbered i + nx*(j + ny*k). Internal
faces are stored x-direction first, then y, then z, each in cell order.
Boundary faces are stored side by side: x=0, x=Lx, y=0, y=Ly, z=0,
z=Lz, each traversed in the cell order of the owning boundary layer.

The mesh is orthogonal, so the reconstruction points coincide with the
face centers and the weighting factor is 1/2 everywhere.
*/
func NewCartesian(nx, ny, nz int, dx, dy, dz float64) (m *Mesh) {
	var (
		n   = nx * ny * nz
		vol = dx * dy * dz
		idx = func(i, j, k int) int32 { return int32(i + nx*(j+ny*k)) }
	)
	m = &Mesh{
		NCells: n,
		Volume: make([]float64, n),
		Center: make([]Vec3, n),
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := idx(i, j, k)
				m.Volume[c] = vol
				m.Center[c] = Vec3{
					(float64(i) + 0.5) * dx,
					(float64(j) + 0.5) * dy,
					(float64(k) + 0.5) * dz,
				}
			}
		}
	}
	addFace := func(ii, jj int32, area, off Vec3, dist float64) {
		m.FaceCellI = append(m.FaceCellI, ii)
		m.FaceCellJ = append(m.FaceCellJ, jj)
		m.Area = append(m.Area, area)
		m.Alpha = append(m.Alpha, 0.5)
		m.OffIP = append(m.OffIP, off)
		m.OffJP = append(m.OffJP, off.Scale(-1))
		m.OffIF = append(m.OffIF, off)
		m.OffJF = append(m.OffJF, off.Scale(-1))
		m.DistIJ = append(m.DistIJ, dist)
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx-1; i++ {
				addFace(idx(i, j, k), idx(i+1, j, k),
					Vec3{dy * dz, 0, 0}, Vec3{dx / 2, 0, 0}, dx)
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny-1; j++ {
			for i := 0; i < nx; i++ {
				addFace(idx(i, j, k), idx(i, j+1, k),
					Vec3{0, dx * dz, 0}, Vec3{0, dy / 2, 0}, dy)
			}
		}
	}
	for k := 0; k < nz-1; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				addFace(idx(i, j, k), idx(i, j, k+1),
					Vec3{0, 0, dx * dy}, Vec3{0, 0, dz / 2}, dz)
			}
		}
	}
	addBFace := func(cell int32, area, off Vec3) {
		m.BFaceCell = append(m.BFaceCell, cell)
		m.BArea = append(m.BArea, area)
		m.BOffIP = append(m.BOffIP, off)
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			addBFace(idx(0, j, k), Vec3{-dy * dz, 0, 0}, Vec3{-dx / 2, 0, 0})
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			addBFace(idx(nx-1, j, k), Vec3{dy * dz, 0, 0}, Vec3{dx / 2, 0, 0})
		}
	}
	for k := 0; k < nz; k++ {
		for i := 0; i < nx; i++ {
			addBFace(idx(i, 0, k), Vec3{0, -dx * dz, 0}, Vec3{0, -dy / 2, 0})
		}
	}
	for k := 0; k < nz; k++ {
		for i := 0; i < nx; i++ {
			addBFace(idx(i, ny-1, k), Vec3{0, dx * dz, 0}, Vec3{0, dy / 2, 0})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			addBFace(idx(i, j, 0), Vec3{0, 0, -dx * dy}, Vec3{0, 0, -dz / 2})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			addBFace(idx(i, j, nz-1), Vec3{0, 0, dx * dy}, Vec3{0, 0, dz / 2})
		}
	}
	m.Finalize()
	return
}
