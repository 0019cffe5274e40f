package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CoordinatesField holds three float64 coordinates per node
const CoordinatesField = "xyz"

// Nodes is the per-node container of a mesh. It follows the same growth
// discipline as HybridElements: Add is the only structural change, and it
// grows the coordinates, the metadata arrays and every attached field
// together.
type Nodes struct {
	fields      fieldSet
	xyz         *Array[float64]
	globalIndex *Array[int64]
	partition   *Array[int32]
	remoteIndex *Array[int32]
}

func NewNodes() (nd *Nodes) {
	nd = &Nodes{
		fields:      newFieldSet(),
		xyz:         newArray[float64](CoordinatesField, 3, Float64, 0, 0),
		globalIndex: newArray[int64](GlobalIndexField, 1, Int64, UnassignedGlobalIndex, 0),
		partition:   newArray[int32](PartitionField, 1, Int32, DefaultPartition, 0),
		remoteIndex: newArray[int32](RemoteIndexField, 1, Int32, NoRemoteIndex, 0),
	}
	nd.fields.attach(nd.xyz)
	nd.fields.attach(nd.globalIndex)
	nd.fields.attach(nd.partition)
	nd.fields.attach(nd.remoteIndex)
	return
}

// Add appends n nodes with coordinates given as 3 values per node. A nil
// coords buffer places the new nodes at the origin. Returns the first new
// node index.
func (nd *Nodes) Add(n int, coords []float64) (first int, err error) {
	first = nd.Size()
	switch {
	case n < 0:
		return first, fmt.Errorf("%w: negative node count %d", ErrInvalidArgument, n)
	case coords != nil && len(coords) != 3*n:
		return first, fmt.Errorf("%w: %d nodes need %d coordinates, have %d",
			ErrInvalidArgument, n, 3*n, len(coords))
	}
	nd.fields.grow(n)
	copy(nd.xyz.data[3*first:], coords)
	return
}

func (nd *Nodes) Size() int { return nd.fields.size }

// XYZ returns the coordinates of node i
func (nd *Nodes) XYZ(i int) ([]float64, error) { return nd.xyz.Row(i) }

func (nd *Nodes) Coordinates() []float64 { return nd.xyz.data }
func (nd *Nodes) GlobalIndex() []int64   { return nd.globalIndex.data }
func (nd *Nodes) Partition() []int32     { return nd.partition.data }
func (nd *Nodes) RemoteIndex() []int32   { return nd.remoteIndex.data }

// CoordinatesMatrix returns an n x 3 matrix sharing storage with the nodes
func (nd *Nodes) CoordinatesMatrix() (*mat.Dense, error) {
	if nd.Size() == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidArgument)
	}
	return mat.NewDense(nd.Size(), 3, nd.xyz.data), nil
}

func (nd *Nodes) AttachField(name string, width int, dtype DataType) (Field, error) {
	return nd.fields.add(name, width, dtype)
}

func (nd *Nodes) Field(name string) (Field, error) { return nd.fields.get(name) }

// FieldNames lists every node field, coordinates and metadata included, sorted
func (nd *Nodes) FieldNames() (names []string) {
	names = make([]string, len(nd.fields.order))
	copy(names, nd.fields.order)
	sort.Strings(names)
	return
}

func (nd *Nodes) Check() error { return nd.fields.check() }
