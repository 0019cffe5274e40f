package mesh

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// MultiBlockConnectivity presents an ordered list of blocks, possibly of
// different column widths, as one row-addressable connectivity.
//
// Blocks live in stable slots and are never moved or removed once created.
// offsets is the prefix sum of block row counts: block b owns the global rows
// [offsets[b], offsets[b+1]). Blocks with zero rows are never stored, which
// keeps offsets strictly increasing.
type MultiBlockConnectivity struct {
	blocks  []*BlockConnectivity
	offsets []int
	// Block index of the most recent lookup. Traversals are mostly
	// sequential, so the hint usually resolves a row without a search.
	// Atomic so that concurrent readers do not race on it.
	last atomic.Int64
}

func NewMultiBlockConnectivity() *MultiBlockConnectivity {
	return &MultiBlockConnectivity{
		offsets: []int{0},
	}
}

// AppendBlock stores a copy of rows*cols values as a new block at the end of
// the row space. A zero row append is accepted and leaves the connectivity
// unchanged. On error the connectivity is unchanged.
func (mb *MultiBlockConnectivity) AppendBlock(rows, cols int, values []int) (err error) {
	var (
		b = &BlockConnectivity{}
	)
	if err = b.validate(rows, cols, values); err != nil {
		return
	}
	if rows == 0 {
		return
	}
	if err = b.Append(rows, cols, values); err != nil {
		return
	}
	mb.blocks = append(mb.blocks, b)
	mb.offsets = append(mb.offsets, mb.offsets[len(mb.offsets)-1]+rows)
	return
}

// Rows is the total number of rows over all blocks
func (mb *MultiBlockConnectivity) Rows() int { return mb.offsets[len(mb.offsets)-1] }

func (mb *MultiBlockConnectivity) BlockCount() int { return len(mb.blocks) }

// BlockOffset returns the first global row of block i
func (mb *MultiBlockConnectivity) BlockOffset(i int) (int, error) {
	if i < 0 || i >= len(mb.blocks) {
		return 0, fmt.Errorf("%w: block %d of %d", ErrIndexOutOfRange, i, len(mb.blocks))
	}
	return mb.offsets[i], nil
}

// Block returns a view restricted to the rows of block i
func (mb *MultiBlockConnectivity) Block(i int) (ConnectivityView, error) {
	if i < 0 || i >= len(mb.blocks) {
		return ConnectivityView{}, fmt.Errorf("%w: block %d of %d", ErrIndexOutOfRange, i, len(mb.blocks))
	}
	return ConnectivityView{mb: mb, begin: mb.offsets[i], end: mb.offsets[i+1]}, nil
}

// locate resolves a global row to its block and local row
func (mb *MultiBlockConnectivity) locate(row int) (block, local int, ok bool) {
	if row < 0 || row >= mb.Rows() {
		return -1, -1, false
	}
	block = int(mb.last.Load())
	if block >= len(mb.blocks) || row < mb.offsets[block] || row >= mb.offsets[block+1] {
		// First offset strictly greater than row, minus one
		block = sort.SearchInts(mb.offsets, row+1) - 1
		mb.last.Store(int64(block))
	}
	return block, row - mb.offsets[block], true
}

// Cols is the column width of the block owning row
func (mb *MultiBlockConnectivity) Cols(row int) (int, error) {
	b, _, ok := mb.locate(row)
	if !ok {
		return 0, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, mb.Rows())
	}
	return mb.blocks[b].cols, nil
}

// Get is a bounds checked read of one entry of a global row
func (mb *MultiBlockConnectivity) Get(row, col int) (int, error) {
	b, local, ok := mb.locate(row)
	if !ok {
		return 0, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, mb.Rows())
	}
	return mb.blocks[b].Get(local, col)
}

// Row returns a copy of a global row
func (mb *MultiBlockConnectivity) Row(row int) ([]int, error) {
	b, local, ok := mb.locate(row)
	if !ok {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, mb.Rows())
	}
	return mb.blocks[b].Row(local)
}

// Set overwrites an existing global row; every other row is left untouched
func (mb *MultiBlockConnectivity) Set(row int, values []int) error {
	b, local, ok := mb.locate(row)
	if !ok {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, mb.Rows())
	}
	return mb.blocks[b].Set(local, values)
}

// Slice returns a view of the global rows [begin, end)
func (mb *MultiBlockConnectivity) Slice(begin, end int) ConnectivityView {
	return ConnectivityView{mb: mb, begin: begin, end: end}
}

// ConnectivityView is a non-owning window over the rows [begin, end) of a
// MultiBlockConnectivity. Row indices passed to its methods are local to the
// window. The view is only as valid as the connectivity it points into.
type ConnectivityView struct {
	mb         *MultiBlockConnectivity
	begin, end int
}

func (v ConnectivityView) Begin() int { return v.begin }
func (v ConnectivityView) End() int   { return v.end }
func (v ConnectivityView) Rows() int  { return v.end - v.begin }

func (v ConnectivityView) global(row int) (int, error) {
	if v.mb == nil || row < 0 || row >= v.end-v.begin {
		return 0, fmt.Errorf("%w: row %d of view [%d,%d)", ErrIndexOutOfRange, row, v.begin, v.end)
	}
	return v.begin + row, nil
}

func (v ConnectivityView) Cols(row int) (int, error) {
	g, err := v.global(row)
	if err != nil {
		return 0, err
	}
	return v.mb.Cols(g)
}

func (v ConnectivityView) Get(row, col int) (int, error) {
	g, err := v.global(row)
	if err != nil {
		return 0, err
	}
	return v.mb.Get(g, col)
}

func (v ConnectivityView) Row(row int) ([]int, error) {
	g, err := v.global(row)
	if err != nil {
		return nil, err
	}
	return v.mb.Row(g)
}

func (v ConnectivityView) Set(row int, values []int) error {
	g, err := v.global(row)
	if err != nil {
		return err
	}
	return v.mb.Set(g, values)
}

// ConnectivityTable is the handle an aggregate gives out for one of its
// connectivities. Rows can be read and overwritten in place, but blocks are
// only added by the owning aggregate, so the row count cannot drift from the
// element count. The handle follows later appends.
type ConnectivityTable struct {
	mb *MultiBlockConnectivity
}

func (t ConnectivityTable) Rows() int       { return t.mb.Rows() }
func (t ConnectivityTable) BlockCount() int { return t.mb.BlockCount() }

func (t ConnectivityTable) BlockOffset(i int) (int, error)        { return t.mb.BlockOffset(i) }
func (t ConnectivityTable) Block(i int) (ConnectivityView, error) { return t.mb.Block(i) }
func (t ConnectivityTable) Cols(row int) (int, error)             { return t.mb.Cols(row) }
func (t ConnectivityTable) Get(row, col int) (int, error)         { return t.mb.Get(row, col) }
func (t ConnectivityTable) Row(row int) ([]int, error)            { return t.mb.Row(row) }
func (t ConnectivityTable) Set(row int, values []int) error       { return t.mb.Set(row, values) }
func (t ConnectivityTable) Slice(begin, end int) ConnectivityView { return t.mb.Slice(begin, end) }
