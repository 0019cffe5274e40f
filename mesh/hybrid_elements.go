package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/gomesh/utils"
)

// Names of the distributed metadata arrays. They live in the same field set
// as user fields, so AttachField refuses them as duplicates.
const (
	GlobalIndexField = "glb_idx"
	PartitionField   = "partition"
	RemoteIndexField = "remote_idx"
)

// Defaults given to metadata entries of newly appended elements. Global
// numbering is 1-based, so zero marks an element that has not been numbered.
const (
	UnassignedGlobalIndex int64 = 0
	DefaultPartition      int32 = 0
	NoRemoteIndex         int32 = -1
)

// HybridElements owns a heterogeneous, append-only collection of elements.
//
// Every call to AppendElements adds one block of a single element type to
// the node connectivity, grows every attached field and the three metadata
// arrays by the same count, and records one Elements range. Ranges are never
// merged, even when consecutive appends use the same type.
//
// Nothing is ever removed or reordered, so row indices, ranges and
// ConnectivityViews stay valid for the lifetime of the container. Adding a
// removal or compaction operation would invalidate every outstanding range.
//
// The container does no locking. It is built by a single writer and may then
// be read by any number of goroutines as long as no append runs concurrently.
type HybridElements struct {
	nodeConnectivity *MultiBlockConnectivity
	edgeConnectivity *MultiBlockConnectivity
	cellConnectivity *MultiBlockConnectivity

	ranges []*Elements
	fields fieldSet

	globalIndex *Array[int64]
	partition   *Array[int32]
	remoteIndex *Array[int32]
}

func NewHybridElements() (h *HybridElements) {
	h = &HybridElements{
		nodeConnectivity: NewMultiBlockConnectivity(),
		edgeConnectivity: NewMultiBlockConnectivity(),
		cellConnectivity: NewMultiBlockConnectivity(),
		fields:           newFieldSet(),
		globalIndex:      newArray[int64](GlobalIndexField, 1, Int64, UnassignedGlobalIndex, 0),
		partition:        newArray[int32](PartitionField, 1, Int32, DefaultPartition, 0),
		remoteIndex:      newArray[int32](RemoteIndexField, 1, Int32, NoRemoteIndex, 0),
	}
	h.fields.attach(h.globalIndex)
	h.fields.attach(h.partition)
	h.fields.attach(h.remoteIndex)
	return
}

// AppendElements adds n elements of type et whose node indices are given
// row major in nodes, n*et.GetNumNodes() values. It returns the new total
// element count. A zero count is accepted with a nil or empty buffer and
// still records an empty range. On error nothing changes.
func (h *HybridElements) AppendElements(et utils.ElementType, n int, nodes []int) (total int, err error) {
	var (
		cols = et.GetNumNodes()
	)
	switch {
	case !et.IsValid():
		return h.Size(), fmt.Errorf("%w: element type %v", ErrInvalidArgument, et)
	case n < 0:
		return h.Size(), fmt.Errorf("%w: negative element count %d", ErrInvalidArgument, n)
	case n > 0 && nodes == nil:
		return h.Size(), fmt.Errorf("%w: nil node buffer for %d %v elements", ErrInvalidArgument, n, et)
	case n > 0 && len(nodes) != n*cols:
		return h.Size(), fmt.Errorf("%w: %d %v elements need %d node indices, have %d",
			ErrInvalidArgument, n, et, n*cols, len(nodes))
	}
	if err = h.nodeConnectivity.AppendBlock(n, cols, nodes); err != nil {
		return h.Size(), err
	}
	h.grow(et, n)
	return h.Size(), nil
}

// AppendRange deep copies the connectivity rows and type of another range,
// typically one held by a temporary container, into a new range of h
func (h *HybridElements) AppendRange(other *Elements) (total int, err error) {
	if other == nil {
		return h.Size(), fmt.Errorf("%w: nil range", ErrInvalidArgument)
	}
	var (
		n     = other.Size()
		cols  = other.NbNodes()
		nodes = make([]int, 0, n*cols)
		conn  = other.NodeConnectivity()
		row   []int
	)
	for i := 0; i < n; i++ {
		if row, err = conn.Row(i); err != nil {
			return h.Size(), err
		}
		nodes = append(nodes, row...)
	}
	return h.AppendElements(other.shape, n, nodes)
}

// AppendRuns appends elements given one row per element, one range per
// maximal run of consecutive elements of equal type. Every row is validated
// before anything is appended, so on error nothing changes.
func (h *HybridElements) AppendRuns(types []utils.ElementType, rows [][]int) (total int, err error) {
	if len(types) != len(rows) {
		return h.Size(), fmt.Errorf("%w: %d types for %d rows", ErrInvalidArgument, len(types), len(rows))
	}
	for i, et := range types {
		if !et.IsValid() {
			return h.Size(), fmt.Errorf("%w: element type %v", ErrInvalidArgument, et)
		}
		if len(rows[i]) != et.GetNumNodes() {
			return h.Size(), fmt.Errorf("%w: %v row %d has %d nodes", ErrShapeMismatch, et, i, len(rows[i]))
		}
	}
	for start := 0; start < len(types); {
		et := types[start]
		end := start + 1
		for end < len(types) && types[end] == et {
			end++
		}
		buf := make([]int, 0, (end-start)*et.GetNumNodes())
		for _, row := range rows[start:end] {
			buf = append(buf, row...)
		}
		if _, err = h.AppendElements(et, end-start, buf); err != nil {
			return h.Size(), err
		}
		start = end
	}
	return h.Size(), nil
}

// grow is the single structural growth step: every side array grows by n,
// then the new range is recorded
func (h *HybridElements) grow(et utils.ElementType, n int) {
	var (
		begin = h.fields.size
	)
	h.fields.grow(n)
	h.ranges = append(h.ranges, &Elements{
		owner: h,
		shape: et,
		begin: begin,
		end:   begin + n,
		index: len(h.ranges),
	})
	if err := h.Check(); err != nil {
		panic(err)
	}
}

// AttachField creates a field of width values per element, sized to the
// current element count. Later appends grow it along with everything else.
func (h *HybridElements) AttachField(name string, width int, dtype DataType) (Field, error) {
	return h.fields.add(name, width, dtype)
}

func (h *HybridElements) Field(name string) (Field, error) { return h.fields.get(name) }

func (h *HybridElements) HasField(name string) bool {
	_, ok := h.fields.fields[name]
	return ok
}

// FieldNames lists every attached field, metadata arrays included, sorted
func (h *HybridElements) FieldNames() (names []string) {
	names = make([]string, len(h.fields.order))
	copy(names, h.fields.order)
	sort.Strings(names)
	return
}

// Size is the total number of elements
func (h *HybridElements) Size() int { return h.fields.size }

// TotalElements is an alias of Size
func (h *HybridElements) TotalElements() int { return h.fields.size }

// RangeCount is the number of append calls made so far
func (h *HybridElements) RangeCount() int { return len(h.ranges) }

// Range returns the i-th range in append order
func (h *HybridElements) Range(i int) (*Elements, error) {
	if i < 0 || i >= len(h.ranges) {
		return nil, fmt.Errorf("%w: range %d of %d", ErrIndexOutOfRange, i, len(h.ranges))
	}
	return h.ranges[i], nil
}

// Ranges returns every range in append order
func (h *HybridElements) Ranges() []*Elements {
	r := make([]*Elements, len(h.ranges))
	copy(r, h.ranges)
	return r
}

// RangeOf returns the range holding element e
func (h *HybridElements) RangeOf(e int) (*Elements, error) {
	if e < 0 || e >= h.Size() {
		return nil, fmt.Errorf("%w: element %d of %d", ErrIndexOutOfRange, e, h.Size())
	}
	i := sort.Search(len(h.ranges), func(i int) bool { return h.ranges[i].end > e })
	return h.ranges[i], nil
}

func (h *HybridElements) TypeOf(e int) (utils.ElementType, error) {
	r, err := h.RangeOf(e)
	if err != nil {
		return utils.Unknown, err
	}
	return r.shape, nil
}

func (h *HybridElements) Name(e int) (string, error) {
	et, err := h.TypeOf(e)
	return et.String(), err
}

func (h *HybridElements) NbNodes(e int) (int, error) {
	et, err := h.TypeOf(e)
	return et.GetNumNodes(), err
}

func (h *HybridElements) NbEdges(e int) (int, error) {
	et, err := h.TypeOf(e)
	return et.GetNumEdges(), err
}

func (h *HybridElements) NodeConnectivity() ConnectivityTable { return ConnectivityTable{h.nodeConnectivity} }
func (h *HybridElements) EdgeConnectivity() ConnectivityTable { return ConnectivityTable{h.edgeConnectivity} }
func (h *HybridElements) CellConnectivity() ConnectivityTable { return ConnectivityTable{h.cellConnectivity} }

// AppendEdgeBlock adds rows of element to edge connectivity, filled by an
// edge builder one block per range
func (h *HybridElements) AppendEdgeBlock(rows, cols int, values []int) error {
	return h.appendDerived(h.edgeConnectivity, "edge", rows, cols, values)
}

// AppendCellBlock adds rows of element to cell connectivity
func (h *HybridElements) AppendCellBlock(rows, cols int, values []int) error {
	return h.appendDerived(h.cellConnectivity, "cell", rows, cols, values)
}

// appendDerived never lets a derived connectivity hold more rows than there
// are elements
func (h *HybridElements) appendDerived(mb *MultiBlockConnectivity, kind string, rows, cols int, values []int) error {
	if have := mb.Rows(); rows > 0 && have+rows > h.Size() {
		return fmt.Errorf("%w: %d %s connectivity rows for %d elements",
			ErrInvalidArgument, have+rows, kind, h.Size())
	}
	return mb.AppendBlock(rows, cols, values)
}

// GlobalIndex, Partition and RemoteIndex expose the distributed metadata, one
// entry per element. Writes through the slices are visible to the container.
// The slices are only guaranteed to alias the container until the next append.
func (h *HybridElements) GlobalIndex() []int64 { return h.globalIndex.data }
func (h *HybridElements) Partition() []int32   { return h.partition.data }
func (h *HybridElements) RemoteIndex() []int32 { return h.remoteIndex.data }

// Check verifies that the element count, the node connectivity row count,
// the ranges and every field agree
func (h *HybridElements) Check() error {
	var (
		size = h.fields.size
	)
	if rows := h.nodeConnectivity.Rows(); rows != size {
		return fmt.Errorf("node connectivity has %d rows, expected %d", rows, size)
	}
	var (
		next int
	)
	for i, r := range h.ranges {
		if r.begin != next || r.end < r.begin {
			return fmt.Errorf("range %d is [%d,%d), expected to begin at %d", i, r.begin, r.end, next)
		}
		next = r.end
	}
	if next != size {
		return fmt.Errorf("ranges cover %d elements, expected %d", next, size)
	}
	return h.fields.check()
}
