package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartesianTopology(t *testing.T) {
	var (
		nx, ny, nz = 4, 3, 2
		m          = NewCartesian(nx, ny, nz, 1, 1, 1)
	)
	require.NoError(t, m.Validate())
	assert.Equal(t, nx*ny*nz, m.NCells)
	nfWant := (nx-1)*ny*nz + nx*(ny-1)*nz + nx*ny*(nz-1)
	assert.Equal(t, nfWant, m.NumFaces())
	nbWant := 2 * (ny*nz + nx*nz + nx*ny)
	assert.Equal(t, nbWant, m.NumBFaces())

	// Each cell is closed: its outward area vectors sum to zero
	for c := 0; c < m.NCells; c++ {
		var sum Vec3
		for a := m.AdjPtr[c]; a < m.AdjPtr[c+1]; a++ {
			f := int(m.AdjFace[a])
			if f < m.NumFaces() {
				sum = sum.Add(m.Area[f].Scale(m.AdjSign[a]))
			} else {
				sum = sum.Add(m.BArea[f-m.NumFaces()])
			}
		}
		assert.InDelta(t, 0, sum.Norm(), 1.e-14)
	}
}

func TestValidateRejectsDegenerateGeometry(t *testing.T) {
	m := NewCartesian(2, 2, 2, 1, 1, 1)
	require.NoError(t, m.Validate())

	m.Alpha[0] = 1.5
	assert.Error(t, m.Validate())
	m.Alpha[0] = 0.5

	m.DistIJ[0] = 0
	assert.Error(t, m.Validate())
	m.DistIJ[0] = 1

	m.FaceCellJ[0] = m.FaceCellI[0]
	assert.Error(t, m.Validate())
	m.FaceCellJ[0] = 1

	m.Volume[3] = -1
	assert.Error(t, m.Validate())
}

func TestVec3(t *testing.T) {
	v := Vec3{1, 2, 3}
	w := Vec3{-1, 0, 2}
	assert.Equal(t, Vec3{0, 2, 5}, v.Add(w))
	assert.Equal(t, Vec3{2, 2, 1}, v.Sub(w))
	assert.Equal(t, 5., v.Dot(w))
	assert.Equal(t, Vec3{2, 4, 6}, v.Scale(2))
	assert.InDelta(t, 3.741657386773941, v.Norm(), 1.e-15)
}
