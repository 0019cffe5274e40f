package topology

import (
	"fmt"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/types"
	"github.com/notargets/gomesh/utils"
)

// NoNeighbour pads connectivity rows where an element has fewer neighbours
// than columns
const NoNeighbour = -1

// BuildEdges derives the unique edges of the cells of m.
//
// Edges are numbered in order of first appearance while walking the cells in
// index order, and appended to m.Edges as a single Line range oriented as in
// the first cell that uses them. Cells.EdgeConnectivity gets one block per
// cell range with one column per local edge of the shape.
//
// When every cell is at most two dimensional, edges are the cell faces and
// Edges.CellConnectivity is filled with the two cells sharing each edge,
// NoNeighbour for a boundary edge. Boundary Line elements carrying a BC tag
// pass it to the matching edge through a bc field on m.Edges.
func BuildEdges(m *mesh.Mesh) (err error) {
	if m.Edges.Size() > 0 || m.Cells.EdgeConnectivity().Rows() > 0 {
		return fmt.Errorf("%w: edges are already built", mesh.ErrInvalidArgument)
	}
	var (
		edgeIndex = make(map[types.EdgeKey]int)
		edgeNodes []int
		edgeCells []int // Two per edge
		cellEdges = make([][]int, m.Cells.RangeCount())
		faceEdges = true
	)
	for _, r := range m.Cells.Ranges() {
		if r.Shape().GetDimension() > 2 {
			faceEdges = false
		}
	}
	for ri, r := range m.Cells.Ranges() {
		var (
			local = r.Shape().GetEdges()
			conn  = r.NodeConnectivity()
			row   []int
		)
		cellEdges[ri] = make([]int, 0, r.Size()*len(local))
		for i := 0; i < r.Size(); i++ {
			if row, err = conn.Row(i); err != nil {
				return
			}
			cell := r.Begin() + i
			for _, le := range local {
				v0, v1 := row[le[0]], row[le[1]]
				var key types.EdgeKey
				if key, err = types.NewEdgeKey([2]int{v0, v1}); err != nil {
					return fmt.Errorf("cell %d: %w", cell, err)
				}
				edge, ok := edgeIndex[key]
				switch {
				case !ok:
					edge = len(edgeIndex)
					edgeIndex[key] = edge
					edgeNodes = append(edgeNodes, v0, v1)
					edgeCells = append(edgeCells, cell, NoNeighbour)
				case edgeCells[2*edge+1] == NoNeighbour:
					edgeCells[2*edge+1] = cell
				case faceEdges:
					return fmt.Errorf("%w: edge %v is shared by more than two cells",
						mesh.ErrInvalidArgument, key.GetVertices(false))
				}
				cellEdges[ri] = append(cellEdges[ri], edge)
			}
		}
	}

	for ri, r := range m.Cells.Ranges() {
		if err = m.Cells.AppendEdgeBlock(r.Size(), r.NbEdges(), cellEdges[ri]); err != nil {
			return
		}
	}
	nEdges := len(edgeIndex)
	if nEdges == 0 {
		return
	}
	if _, err = m.Edges.AppendElements(utils.Line, nEdges, edgeNodes); err != nil {
		return
	}
	if faceEdges {
		if err = m.Edges.AppendCellBlock(nEdges, 2, edgeCells); err != nil {
			return
		}
	}
	return tagBoundaryEdges(m, edgeIndex)
}

// tagBoundaryEdges copies the bc tag of boundary Line elements onto the
// matching edges. Edges with no boundary element stay BCNone.
func tagBoundaryEdges(m *mesh.Mesh, edgeIndex map[types.EdgeKey]int) (err error) {
	if !m.Boundary.HasField(mesh.BCField) {
		return
	}
	var (
		f          mesh.Field
		boundaryBC []int32
		edgeBC     []int32
	)
	if f, err = m.Boundary.Field(mesh.BCField); err != nil {
		return
	}
	if boundaryBC, err = mesh.Values[int32](f); err != nil {
		return
	}
	if f, err = m.Edges.AttachField(mesh.BCField, 1, mesh.Int32); err != nil {
		return
	}
	if edgeBC, err = mesh.Values[int32](f); err != nil {
		return
	}
	for _, r := range m.Boundary.Ranges() {
		if r.Shape() != utils.Line {
			continue
		}
		conn := r.NodeConnectivity()
		for i := 0; i < r.Size(); i++ {
			row, _ := conn.Row(i)
			key, kerr := types.NewEdgeKey([2]int{row[0], row[1]})
			if kerr != nil {
				continue
			}
			if edge, ok := edgeIndex[key]; ok {
				edgeBC[edge] = boundaryBC[r.Begin()+i]
			}
		}
	}
	return
}

// BoundaryEdges returns the edges with a single adjacent cell, in edge order
func BoundaryEdges(m *mesh.Mesh) (edges []int, err error) {
	conn := m.Edges.CellConnectivity()
	if conn.Rows() != m.Edges.Size() {
		return nil, fmt.Errorf("%w: edge to cell connectivity is not built", mesh.ErrInvalidArgument)
	}
	for e := 0; e < conn.Rows(); e++ {
		var right int
		if right, err = conn.Get(e, 1); err != nil {
			return
		}
		if right == NoNeighbour {
			edges = append(edges, e)
		}
	}
	return
}
