package partition

import (
	"fmt"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// ExtractSubdomain builds the local mesh of one partition.
//
// Its cells are the cells owned by part, in index order, followed by the
// halo: every other cell sharing at least one node with an owned cell. Each
// local cell carries the parent's global index, its owner in Partition and
// its local index within the owner's subdomain in RemoteIndex. Nodes are
// renumbered in order of first use; a node's partition is part when an owned
// cell uses it, the owner of the first halo cell using it otherwise.
// Boundary elements whose nodes all lie on owned cells are kept with their
// tag fields. Other user fields of the cells are copied row by row.
func ExtractSubdomain(m *mesh.Mesh, part int32) (sub *mesh.Mesh, err error) {
	var (
		cells    = m.Cells
		owner    = cells.Partition()
		conn     = cells.NodeConnectivity()
		nCells   = cells.Size()
		rank     = make([]int32, nCells) // Local index of a cell in its owner's subdomain
		counts   = make(map[int32]int32)
		selected []int
	)
	for e, p := range owner {
		rank[e] = counts[p]
		counts[p]++
	}
	if counts[part] == 0 {
		return nil, fmt.Errorf("%w: partition %d owns no cells", mesh.ErrInvalidArgument, part)
	}

	// Owned cells, then halo cells touching an owned node
	ownedNode := make([]bool, m.Nodes.Size())
	for e := 0; e < nCells; e++ {
		if owner[e] != part {
			continue
		}
		selected = append(selected, e)
		row, err := conn.Row(e)
		if err != nil {
			return nil, err
		}
		for _, v := range row {
			ownedNode[v] = true
		}
	}
	for e := 0; e < nCells; e++ {
		if owner[e] == part {
			continue
		}
		row, err := conn.Row(e)
		if err != nil {
			return nil, err
		}
		for _, v := range row {
			if ownedNode[v] {
				selected = append(selected, e)
				break
			}
		}
	}

	// Renumber nodes in order of first use
	var (
		localNode = make(map[int]int)
		nodeOrder []int
		types     = make([]utils.ElementType, len(selected))
		rows      = make([][]int, len(selected))
		nodePart  []int32
	)
	for i, e := range selected {
		if types[i], err = cells.TypeOf(e); err != nil {
			return
		}
		row, _ := conn.Row(e)
		for j, v := range row {
			l, ok := localNode[v]
			if !ok {
				l = len(nodeOrder)
				localNode[v] = l
				nodeOrder = append(nodeOrder, v)
				if ownedNode[v] {
					nodePart = append(nodePart, part)
				} else {
					nodePart = append(nodePart, owner[e])
				}
			}
			row[j] = l
		}
		rows[i] = row
	}

	sub = mesh.NewMesh()
	coords := make([]float64, 0, 3*len(nodeOrder))
	xyz := m.Nodes.Coordinates()
	for _, v := range nodeOrder {
		coords = append(coords, xyz[3*v:3*v+3]...)
	}
	if _, err = sub.Nodes.Add(len(nodeOrder), coords); err != nil {
		return
	}
	copy(sub.Nodes.Partition(), nodePart)
	parentNodeGlb := m.Nodes.GlobalIndex()
	for l, v := range nodeOrder {
		sub.Nodes.GlobalIndex()[l] = parentNodeGlb[v]
	}

	if _, err = sub.Cells.AppendRuns(types, rows); err != nil {
		return
	}
	var (
		glb = cells.GlobalIndex()
	)
	for i, e := range selected {
		sub.Cells.GlobalIndex()[i] = glb[e]
		sub.Cells.Partition()[i] = owner[e]
		sub.Cells.RemoteIndex()[i] = rank[e]
	}
	if err = copyUserFields(sub.Cells, cells, selected); err != nil {
		return
	}
	if err = extractBoundary(sub, m, ownedNode, localNode); err != nil {
		return
	}
	return sub, sub.Check()
}

func extractBoundary(sub, m *mesh.Mesh, ownedNode []bool, localNode map[int]int) (err error) {
	var (
		conn  = m.Boundary.NodeConnectivity()
		kept  []int
		types []utils.ElementType
		rows  [][]int
	)
	for e := 0; e < m.Boundary.Size(); e++ {
		row, err := conn.Row(e)
		if err != nil {
			return err
		}
		inside := true
		for _, v := range row {
			if !ownedNode[v] {
				inside = false
				break
			}
		}
		if !inside {
			continue
		}
		for j, v := range row {
			row[j] = localNode[v]
		}
		et, _ := m.Boundary.TypeOf(e)
		kept = append(kept, e)
		types = append(types, et)
		rows = append(rows, row)
	}
	for k, v := range m.BoundaryTags {
		sub.BoundaryTags[k] = v
	}
	if _, err = sub.Boundary.AppendRuns(types, rows); err != nil {
		return
	}
	return copyUserFields(sub.Boundary, m.Boundary, kept)
}

// copyUserFields attaches every non metadata field of src to dst and copies
// the given source rows into it, in order
func copyUserFields(dst, src *mesh.HybridElements, rows []int) (err error) {
	for _, name := range src.FieldNames() {
		switch name {
		case mesh.GlobalIndexField, mesh.PartitionField, mesh.RemoteIndexField:
			continue
		}
		var sf, df mesh.Field
		if sf, err = src.Field(name); err != nil {
			return
		}
		if df, err = dst.AttachField(name, sf.Width(), sf.DataType()); err != nil {
			return
		}
		switch sf.DataType() {
		case mesh.Int32:
			err = copyRows[int32](df, sf, rows)
		case mesh.Int64:
			err = copyRows[int64](df, sf, rows)
		case mesh.Float32:
			err = copyRows[float32](df, sf, rows)
		case mesh.Float64:
			err = copyRows[float64](df, sf, rows)
		}
		if err != nil {
			return
		}
	}
	return
}

func copyRows[T mesh.Scalar](dst, src mesh.Field, rows []int) error {
	s, err := mesh.Values[T](src)
	if err != nil {
		return err
	}
	d, err := mesh.Values[T](dst)
	if err != nil {
		return err
	}
	w := src.Width()
	for i, r := range rows {
		copy(d[i*w:(i+1)*w], s[r*w:(r+1)*w])
	}
	return nil
}
