package topology

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/notargets/gomesh/mesh"
)

// NodeToCell returns the nNodes x nCells incidence matrix of the elements,
// with a one wherever an element references a node
func NodeToCell(nNodes int, cells *mesh.HybridElements) (*sparse.CSR, error) {
	return incidence(nNodes, cells, true)
}

// CellToNode is the transpose of NodeToCell, built directly in CSR form
func CellToNode(nNodes int, cells *mesh.HybridElements) (*sparse.CSR, error) {
	return incidence(nNodes, cells, false)
}

func incidence(nNodes int, cells *mesh.HybridElements, byNode bool) (*sparse.CSR, error) {
	var (
		nCells = cells.Size()
		conn   = cells.NodeConnectivity()
		dok    *sparse.DOK
	)
	if nNodes <= 0 || nCells == 0 {
		return nil, fmt.Errorf("%w: incidence of %d nodes and %d cells", mesh.ErrInvalidArgument, nNodes, nCells)
	}
	if byNode {
		dok = sparse.NewDOK(nNodes, nCells)
	} else {
		dok = sparse.NewDOK(nCells, nNodes)
	}
	for e := 0; e < nCells; e++ {
		row, err := conn.Row(e)
		if err != nil {
			return nil, err
		}
		for _, v := range row {
			if v < 0 || v >= nNodes {
				return nil, fmt.Errorf("%w: cell %d references node %d of %d",
					mesh.ErrIndexOutOfRange, e, v, nNodes)
			}
			if byNode {
				dok.Set(v, e, 1)
			} else {
				dok.Set(e, v, 1)
			}
		}
	}
	return dok.ToCSR(), nil
}

// CellNeighbours fills Cells.CellConnectivity with the face neighbours of
// every cell: cells sharing at least as many nodes as the cell's dimension.
// Each cell range gets one block with one column per face (per edge in 2D),
// neighbours in ascending index order followed by NoNeighbour padding.
func CellNeighbours(m *mesh.Mesh) (err error) {
	var (
		cells = m.Cells
		c2n   *sparse.CSR
		n2c   *sparse.CSR
	)
	if cells.CellConnectivity().Rows() > 0 {
		return fmt.Errorf("%w: cell neighbours are already built", mesh.ErrInvalidArgument)
	}
	if cells.Size() == 0 {
		return
	}
	if c2n, err = CellToNode(m.Nodes.Size(), cells); err != nil {
		return
	}
	if n2c, err = NodeToCell(m.Nodes.Size(), cells); err != nil {
		return
	}
	// Entry (i,j) counts the nodes shared by cells i and j
	shared := sparse.NewCSR(cells.Size(), cells.Size(), nil, nil, nil)
	shared.Mul(c2n, n2c)
	raw := shared.RawMatrix()

	blocks := make([][]int, cells.RangeCount())
	for ri, r := range cells.Ranges() {
		var (
			dim   = r.Shape().GetDimension()
			width = faceCount(r)
		)
		blocks[ri] = make([]int, 0, r.Size()*width)
		if width == 0 {
			continue
		}
		for i := r.Begin(); i < r.End(); i++ {
			var nbrs []int
			for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
				j := raw.Ind[k]
				if j != i && int(raw.Data[k]) >= dim {
					nbrs = append(nbrs, j)
				}
			}
			if len(nbrs) > width {
				return fmt.Errorf("%w: cell %d has %d face neighbours, its shape has %d faces",
					mesh.ErrShapeMismatch, i, len(nbrs), width)
			}
			sort.Ints(nbrs)
			for len(nbrs) < width {
				nbrs = append(nbrs, NoNeighbour)
			}
			blocks[ri] = append(blocks[ri], nbrs...)
		}
	}
	for ri, r := range cells.Ranges() {
		if err = cells.AppendCellBlock(r.Size(), faceCount(r), blocks[ri]); err != nil {
			return
		}
	}
	return
}

func faceCount(r *mesh.Elements) int {
	switch r.Shape().GetDimension() {
	case 3:
		return r.Shape().GetNumFaces()
	case 2:
		return r.NbEdges()
	case 1:
		return 2
	}
	return 0
}
