package mesh

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomesh/utils"
)

func nodeRows(t *testing.T, conn ConnectivityView) (rows [][]int) {
	t.Helper()
	for r := 0; r < conn.Rows(); r++ {
		row, err := conn.Row(r)
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return
}

func TestHybridElements(t *testing.T) {
	h := NewHybridElements()
	triangleNodes := []int{
		1, 5, 3,
		1, 5, 2,
	}
	total, err := h.AppendElements(utils.Triangle, 2, triangleNodes)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	surface, err := h.AttachField("surface", 1, Float64)
	require.NoError(t, err)
	assert.Equal(t, 2, surface.Len())

	total, err = h.AppendElements(utils.Quad, 1, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	{ // Aggregate wide connectivity
		conn := h.NodeConnectivity()
		want := [][]int{{1, 5, 3}, {1, 5, 2}, {0, 1, 2, 3}}
		for e := 0; e < h.Size(); e++ {
			nb, err := h.NbNodes(e)
			require.NoError(t, err)
			assert.Equal(t, len(want[e]), nb)
			for n := 0; n < nb; n++ {
				v, err := conn.Get(e, n)
				require.NoError(t, err)
				assert.Equal(t, want[e][n], v)
			}
		}
		name, _ := h.Name(2)
		assert.Equal(t, "Quadrilateral", name)
		nbEdges, _ := h.NbEdges(0)
		assert.Equal(t, 3, nbEdges)
	}
	{ // Ranges
		require.Equal(t, 2, h.RangeCount())
		r0, err := h.Range(0)
		require.NoError(t, err)
		r1, err := h.Range(1)
		require.NoError(t, err)
		assert.Equal(t, 0, r0.Begin())
		assert.Equal(t, 2, r0.End())
		assert.Equal(t, utils.Triangle, r0.Shape())
		assert.Equal(t, 2, r1.Begin())
		assert.Equal(t, 3, r1.End())
		assert.Equal(t, utils.Quad, r1.Shape())
		assert.Equal(t, 0, r0.TypeIndex())
		assert.Equal(t, 1, r1.TypeIndex())
		assert.Equal(t, [][]int{{1, 5, 3}, {1, 5, 2}}, nodeRows(t, r0.NodeConnectivity()))
		assert.Equal(t, [][]int{{0, 1, 2, 3}}, nodeRows(t, r1.NodeConnectivity()))
		_, err = h.Range(2)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	{ // Metadata and field sizes
		nbElements := 3
		assert.Len(t, h.GlobalIndex(), nbElements)
		assert.Len(t, h.Partition(), nbElements)
		assert.Len(t, h.RemoteIndex(), nbElements)
		surface, err := h.Field("surface")
		require.NoError(t, err)
		assert.Equal(t, nbElements, surface.Len())
		assert.Equal(t, []int64{0, 0, 0}, h.GlobalIndex())
		assert.Equal(t, []int32{-1, -1, -1}, h.RemoteIndex())
		assert.NoError(t, h.Check())
	}
	{ // Overwrite through a range view, then through the aggregate
		r0, _ := h.Range(0)
		require.NoError(t, r0.NodeConnectivity().Set(0, []int{9, 8, 7}))
		conn := h.NodeConnectivity()
		row, _ := conn.Row(0)
		assert.Equal(t, []int{9, 8, 7}, row)
		row, _ = conn.Row(1)
		assert.Equal(t, []int{1, 5, 2}, row)
		row, _ = conn.Row(2)
		assert.Equal(t, []int{0, 1, 2, 3}, row)

		r1, _ := h.Range(1)
		require.NoError(t, r1.NodeConnectivity().Set(0, []int{9, 8, 7, 6}))
		row, _ = conn.Row(2)
		assert.Equal(t, []int{9, 8, 7, 6}, row)
		row, _ = conn.Row(0)
		assert.Equal(t, []int{9, 8, 7}, row)
	}
}

func TestHybridElementsRangesAreNotMerged(t *testing.T) {
	h := NewHybridElements()
	sizes := []int{2, 1, 3, 0, 4}
	shapes := []utils.ElementType{utils.Triangle, utils.Triangle, utils.Quad, utils.Quad, utils.Triangle}
	var sum int
	for i, n := range sizes {
		nodes := make([]int, n*shapes[i].GetNumNodes())
		for j := range nodes {
			nodes[j] = 100*i + j
		}
		total, err := h.AppendElements(shapes[i], n, nodes)
		require.NoError(t, err)
		sum += n
		assert.Equal(t, sum, total)
		assert.Len(t, h.GlobalIndex(), sum)
		assert.Len(t, h.Partition(), sum)
		assert.Len(t, h.RemoteIndex(), sum)
	}
	assert.Equal(t, len(sizes), h.RangeCount())
	for i, n := range sizes {
		r, err := h.Range(i)
		require.NoError(t, err)
		assert.Equal(t, n, r.Size())
		assert.Equal(t, shapes[i], r.Shape())
		conn := r.NodeConnectivity()
		for row := 0; row < r.Size(); row++ {
			for col := 0; col < r.NbNodes(); col++ {
				v, err := conn.Get(row, col)
				require.NoError(t, err)
				assert.Equal(t, 100*i+row*r.NbNodes()+col, v)
			}
		}
	}
	{ // Element to range lookup skips the empty range
		r, err := h.RangeOf(6)
		require.NoError(t, err)
		assert.Equal(t, 4, r.TypeIndex())
		et, err := h.TypeOf(5)
		require.NoError(t, err)
		assert.Equal(t, utils.Quad, et)
		_, err = h.TypeOf(10)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestHybridElementsZeroElements(t *testing.T) {
	h := NewHybridElements()
	_, err := h.AppendElements(utils.Triangle, 0, nil)
	require.NoError(t, err)
	_, err = h.AppendElements(utils.Quad, 0, []int{})
	require.NoError(t, err)
	assert.Equal(t, 0, h.Size())
	assert.Equal(t, 2, h.RangeCount())
	for i := 0; i < 2; i++ {
		r, err := h.Range(i)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Size())
	}
	assert.Equal(t, 0, h.NodeConnectivity().BlockCount())
	assert.NoError(t, h.Check())
}

func TestHybridElementsFieldGrowth(t *testing.T) {
	h := NewHybridElements()
	_, err := h.AppendElements(utils.Line, 3, []int{0, 1, 1, 2, 2, 3})
	require.NoError(t, err)

	f, err := h.AttachField("area", 2, Float64)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
	area, err := Values[float64](f)
	require.NoError(t, err)
	for i := range area {
		area[i] = float64(i) + 0.5
	}
	prefix := append([]float64(nil), area...)

	_, err = h.AppendElements(utils.Triangle, 2, []int{0, 1, 2, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 5, f.Len())
	area, err = Values[float64](f)
	require.NoError(t, err)
	assert.Equal(t, prefix, area[:6])
	assert.Equal(t, []float64{0, 0, 0, 0}, area[6:])

	{ // Range scoped field access
		r, _ := h.Range(1)
		fv, err := r.Field("area")
		require.NoError(t, err)
		assert.Equal(t, 2, fv.Len())
		vals, err := ViewValues[float64](fv)
		require.NoError(t, err)
		assert.Len(t, vals, 4)
		vals[0] = 42
		area, _ = Values[float64](f)
		assert.Equal(t, 42., area[6])

		r0, _ := h.Range(0)
		vals, err = RangeValues[float64](r0, "area")
		require.NoError(t, err)
		assert.Equal(t, prefix, vals)
		_, err = RangeValues[int32](r0, "area")
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, err = r0.Field("missing")
		assert.ErrorIs(t, err, ErrUnknownField)
	}
	{ // Names collide with user fields and with the metadata arrays
		_, err = h.AttachField("area", 1, Float32)
		assert.ErrorIs(t, err, ErrDuplicateName)
		_, err = h.AttachField(PartitionField, 1, Int32)
		assert.ErrorIs(t, err, ErrDuplicateName)
		_, err = h.AttachField("bad", 0, Int32)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, []string{"area", GlobalIndexField, PartitionField, RemoteIndexField}, h.FieldNames())
	}
	{ // Fields attached to an empty container
		e := NewHybridElements()
		tag, err := e.AttachField("tag", 1, Int32)
		require.NoError(t, err)
		assert.Equal(t, 0, tag.Len())
		_, err = e.AppendElements(utils.Quad, 1, []int{0, 1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 1, tag.Len())
		assert.Equal(t, Int32, tag.DataType())
	}
}

func TestHybridElementsFailedAppendChangesNothing(t *testing.T) {
	h := NewHybridElements()
	_, err := h.AppendElements(utils.Triangle, 2, []int{1, 5, 3, 1, 5, 2})
	require.NoError(t, err)
	_, err = h.AttachField("surface", 1, Float64)
	require.NoError(t, err)

	snapshot := func() string {
		return fmt.Sprintf("%d %d %d %d %v %v %v", h.Size(), h.RangeCount(),
			h.NodeConnectivity().Rows(), h.NodeConnectivity().BlockCount(),
			h.GlobalIndex(), h.Partition(), h.RemoteIndex())
	}
	before := snapshot()
	for _, tc := range []struct {
		et    utils.ElementType
		n     int
		nodes []int
		want  error
	}{
		{utils.Quad, 2, []int{0, 1, 2}, ErrInvalidArgument},
		{utils.Quad, 1, nil, ErrInvalidArgument},
		{utils.Quad, -1, nil, ErrInvalidArgument},
		{utils.Unknown, 1, []int{0}, ErrInvalidArgument},
		{utils.ElementType(200), 1, []int{0}, ErrInvalidArgument},
	} {
		total, err := h.AppendElements(tc.et, tc.n, tc.nodes)
		assert.ErrorIs(t, err, tc.want)
		assert.Equal(t, 2, total)
		assert.Equal(t, before, snapshot())
	}
	surface, _ := h.Field("surface")
	assert.Equal(t, 2, surface.Len())
	assert.NoError(t, h.Check())
}

func TestElementsAppendRange(t *testing.T) {
	triag1 := []int{9, 8, 7}
	elements, err := NewElements(utils.Triangle, 2, []int{1, 5, 3, 1, 5, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, elements.Begin())
	assert.Equal(t, 2, elements.End())
	assert.Equal(t, 0, elements.TypeIndex())
	require.NoError(t, elements.NodeConnectivity().Set(0, triag1))

	h := NewHybridElements()
	_, err = h.AppendElements(utils.Quad, 1, []int{0, 1, 2, 3})
	require.NoError(t, err)
	total, err := h.AppendRange(elements)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	r, _ := h.Range(1)
	assert.Equal(t, utils.Triangle, r.Shape())
	assert.Equal(t, [][]int{{9, 8, 7}, {1, 5, 2}}, nodeRows(t, r.NodeConnectivity()))

	// The copy is deep
	require.NoError(t, elements.NodeConnectivity().Set(1, []int{0, 0, 0}))
	assert.Equal(t, [][]int{{9, 8, 7}, {1, 5, 2}}, nodeRows(t, r.NodeConnectivity()))

	_, err = h.AppendRange(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConnectivityKindsAreIndependent(t *testing.T) {
	h := NewHybridElements()
	_, err := h.AppendElements(utils.Triangle, 2, []int{0, 1, 2, 1, 3, 2})
	require.NoError(t, err)
	r, _ := h.Range(0)

	// Edge connectivity is filled later by a builder, one block per range
	_, err = r.EdgeConnectivity().Get(0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	require.NoError(t, h.AppendEdgeBlock(2, 3, []int{0, 1, 2, 3, 4, 1}))
	v, err := r.EdgeConnectivity().Get(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, h.CellConnectivity().Rows())
	assert.Equal(t, 2, h.NodeConnectivity().Rows())
}

func TestHybridElementsAppendRuns(t *testing.T) {
	h := NewHybridElements()
	total, err := h.AppendRuns(
		[]utils.ElementType{utils.Triangle, utils.Triangle, utils.Quad, utils.Triangle},
		[][]int{{0, 1, 2}, {1, 2, 3}, {0, 1, 2, 3}, {3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 3, h.RangeCount())
	r, _ := h.Range(0)
	assert.Equal(t, 2, r.Size())
	row, _ := h.NodeConnectivity().Row(3)
	assert.Equal(t, []int{3, 4, 5}, row)

	// A bad row anywhere leaves the container untouched
	_, err = h.AppendRuns(
		[]utils.ElementType{utils.Line, utils.Triangle},
		[][]int{{0, 1}, {0, 1}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = h.AppendRuns([]utils.ElementType{utils.Line}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 4, h.Size())
	assert.Equal(t, 3, h.RangeCount())
}

func TestConnectivityTableOnlyOverwrites(t *testing.T) {
	h := NewHybridElements()
	_, err := h.AppendElements(utils.Triangle, 1, []int{0, 1, 2})
	require.NoError(t, err)
	nodes := h.NodeConnectivity()
	require.NoError(t, nodes.Set(0, []int{3, 4, 5}))
	assert.ErrorIs(t, nodes.Set(1, []int{3, 4, 5}), ErrIndexOutOfRange)

	{ // Derived connectivity cannot outgrow the elements
		assert.ErrorIs(t, h.AppendEdgeBlock(2, 3, []int{0, 1, 2, 0, 1, 2}), ErrInvalidArgument)
		assert.ErrorIs(t, h.AppendCellBlock(2, 3, []int{0, 1, 2, 0, 1, 2}), ErrInvalidArgument)
		require.NoError(t, h.AppendCellBlock(1, 3, []int{-1, -1, -1}))
		assert.ErrorIs(t, h.AppendCellBlock(1, 3, []int{-1, -1, -1}), ErrInvalidArgument)
		assert.Equal(t, 1, nodes.Rows())
	}

	// The next append succeeds and the handle follows it
	assert.NotPanics(t, func() {
		_, err = h.AppendElements(utils.Quad, 1, []int{2, 3, 4, 5})
	})
	require.NoError(t, err)
	assert.NoError(t, h.Check())
	assert.Equal(t, 2, nodes.Rows())
	assert.Equal(t, 2, nodes.BlockCount())
	assert.Equal(t, 2, h.RangeCount())
	row, err := nodes.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, row)
}
