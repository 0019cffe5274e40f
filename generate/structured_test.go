package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

func TestStructured(t *testing.T) {
	t.Run("quads", func(t *testing.T) {
		s := &Structured{Nx: 3, Ny: 2, XMin: 0, XMax: 3, YMin: -1, YMax: 1}
		m, err := s.Generate()
		require.NoError(t, err)
		assert.Equal(t, 12, m.Nodes.Size())
		assert.Equal(t, 6, m.Cells.Size())
		assert.Equal(t, 1, m.Cells.RangeCount())
		row, _ := m.Cells.NodeConnectivity().Row(4)
		assert.Equal(t, []int{5, 6, 10, 9}, row)
		xyz, _ := m.Nodes.XYZ(s.Node(3, 2))
		assert.Equal(t, []float64{3, 1, 0}, xyz)
		xyz, _ = m.Nodes.XYZ(s.Node(1, 1))
		assert.InDeltaSlice(t, []float64{1, 0, 0}, xyz, 1e-14)
		// Perimeter edges
		assert.Equal(t, 10, m.Boundary.Size())
		assert.Equal(t, map[int]string{0: "bottom", 1: "right", 2: "top", 3: "left"}, m.BoundaryTags)
	})
	t.Run("triangles", func(t *testing.T) {
		s := &Structured{Nx: 2, Ny: 2, XMax: 1, YMax: 1, Layout: Triangles}
		m, err := s.Generate()
		require.NoError(t, err)
		assert.Equal(t, 8, m.Cells.Size())
		assert.Equal(t, 1, m.Cells.RangeCount())
		row, _ := m.Cells.NodeConnectivity().Row(1)
		assert.Equal(t, []int{0, 4, 3}, row)
	})
	t.Run("mixed", func(t *testing.T) {
		s := &Structured{Nx: 2, Ny: 3, XMax: 2, YMax: 3, Layout: Mixed, TriangleRows: 1}
		m, err := s.Generate()
		require.NoError(t, err)
		assert.Equal(t, 4+4, m.Cells.Size())
		require.Equal(t, 2, m.Cells.RangeCount())
		r0, _ := m.Cells.Range(0)
		r1, _ := m.Cells.Range(1)
		assert.Equal(t, utils.Triangle, r0.Shape())
		assert.Equal(t, 4, r0.Size())
		assert.Equal(t, utils.Quad, r1.Shape())
		assert.Equal(t, 4, r1.Size())
	})
	t.Run("markers", func(t *testing.T) {
		s := &Structured{Nx: 1, Ny: 1, XMax: 1, YMax: 1,
			Markers: [4]string{"wall", "outflow", "farfield", "inflow-1"}}
		m, err := s.Generate()
		require.NoError(t, err)
		f, err := m.Boundary.Field(mesh.BCField)
		require.NoError(t, err)
		bc, _ := mesh.Values[int32](f)
		assert.Equal(t, []int32{
			int32(utils.BCWall), int32(utils.BCOutflow), int32(utils.BCFarfield), int32(utils.BCInflow),
		}, bc)
		f, err = m.Boundary.Field(mesh.MarkerField)
		require.NoError(t, err)
		markers, _ := mesh.Values[int32](f)
		assert.Equal(t, []int32{0, 1, 2, 3}, markers)
		rows := [][]int{}
		for e := 0; e < m.Boundary.Size(); e++ {
			row, _ := m.Boundary.NodeConnectivity().Row(e)
			rows = append(rows, row)
		}
		assert.Equal(t, [][]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}}, rows)
	})
	t.Run("invalid", func(t *testing.T) {
		for _, s := range []*Structured{
			{Nx: 0, Ny: 1, XMax: 1, YMax: 1},
			{Nx: 1, Ny: 1, XMin: 1, XMax: 1, YMax: 1},
			{Nx: 1, Ny: 1, XMax: 1, YMax: 1, Layout: Mixed, TriangleRows: 2},
			{Nx: 1, Ny: 1, XMax: 1, YMax: 1, Layout: Layout(7)},
		} {
			_, err := s.Generate()
			assert.ErrorIs(t, err, mesh.ErrInvalidArgument)
		}
	})
}

func TestParseLayout(t *testing.T) {
	for _, l := range []Layout{Quads, Triangles, Mixed} {
		p, err := ParseLayout(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, p)
	}
	p, err := ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, Quads, p)
	_, err = ParseLayout("hexes")
	assert.ErrorIs(t, err, mesh.ErrInvalidArgument)
}
