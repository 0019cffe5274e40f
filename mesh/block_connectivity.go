package mesh

import (
	"fmt"

	"github.com/notargets/gomesh/types"
)

// BlockConnectivity is dense row-major storage for one homogeneous run of
// elements. The column width is fixed by the first append that carries rows
// and never changes afterwards; rows are only ever appended.
type BlockConnectivity struct {
	rows, cols int
	values     []int
}

// NewBlockConnectivity returns a block holding a copy of rows*cols values
func NewBlockConnectivity(rows, cols int, values []int) (b *BlockConnectivity, err error) {
	b = &BlockConnectivity{}
	if err = b.Append(rows, cols, values); err != nil {
		return nil, err
	}
	return
}

func (b *BlockConnectivity) Rows() int { return b.rows }
func (b *BlockConnectivity) Cols() int { return b.cols }

// validate checks an append request without touching the block
func (b *BlockConnectivity) validate(rows, cols int, values []int) error {
	switch {
	case rows < 0:
		return fmt.Errorf("%w: negative row count %d", ErrInvalidArgument, rows)
	case cols < 0:
		return fmt.Errorf("%w: negative column count %d", ErrInvalidArgument, cols)
	case rows > 0 && values == nil:
		return fmt.Errorf("%w: nil values for %d rows", ErrInvalidArgument, rows)
	case b.rows > 0 && cols != b.cols:
		return fmt.Errorf("%w: block has %d columns, append has %d", ErrShapeMismatch, b.cols, cols)
	case rows > 0 && len(values) != rows*cols:
		return fmt.Errorf("%w: need %d values for %dx%d rows, have %d",
			ErrInvalidArgument, rows*cols, rows, cols, len(values))
	}
	return nil
}

// Append copies rows*cols values, row major, onto the end of the block.
// On error the block is unchanged.
func (b *BlockConnectivity) Append(rows, cols int, values []int) (err error) {
	if err = b.validate(rows, cols, values); err != nil {
		return
	}
	if b.rows == 0 {
		b.cols = cols
	}
	if rows == 0 {
		return
	}
	var (
		offset = len(b.values)
	)
	b.values = types.GrowSlice(b.values, rows*cols, 0)
	copy(b.values[offset:], values)
	b.rows += rows
	return
}

// Set replaces every entry of an existing row
func (b *BlockConnectivity) Set(row int, values []int) error {
	if row < 0 || row >= b.rows {
		return fmt.Errorf("%w: row %d, block has %d rows", ErrIndexOutOfRange, row, b.rows)
	}
	if len(values) != b.cols {
		return fmt.Errorf("%w: row has %d columns, got %d values", ErrShapeMismatch, b.cols, len(values))
	}
	copy(b.values[row*b.cols:(row+1)*b.cols], values)
	return nil
}

// Get is a bounds checked read of one entry
func (b *BlockConnectivity) Get(row, col int) (int, error) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d block", ErrIndexOutOfRange, row, col, b.rows, b.cols)
	}
	return b.values[row*b.cols+col], nil
}

// At is the unchecked form of Get, for hot loops that already know their bounds
func (b *BlockConnectivity) At(row, col int) int {
	return b.values[row*b.cols+col]
}

// Row returns a copy of one row
func (b *BlockConnectivity) Row(row int) ([]int, error) {
	if row < 0 || row >= b.rows {
		return nil, fmt.Errorf("%w: row %d, block has %d rows", ErrIndexOutOfRange, row, b.rows)
	}
	r := make([]int, b.cols)
	copy(r, b.values[row*b.cols:(row+1)*b.cols])
	return r, nil
}

// Data exposes the row-major storage; writes through it are visible to the block
func (b *BlockConnectivity) Data() []int { return b.values }
