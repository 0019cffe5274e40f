package mesh

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Int32 tag fields written by mesh readers and generators
const (
	BCField     = "bc"     // utils.BCType of a boundary element
	MarkerField = "marker" // Index into Mesh.BoundaryTags
	GroupField  = "group"  // Element group of a cell
)

// Mesh groups the nodes of a discretized domain with its element
// collections. Cells are the elements of the highest dimension, Edges are
// derived by a topology builder, Boundary holds boundary elements read from a
// mesh file, tagged by marker.
type Mesh struct {
	ID uuid.UUID

	Nodes    *Nodes
	Cells    *HybridElements
	Edges    *HybridElements
	Boundary *HybridElements

	BoundaryTags map[int]string // Marker index -> marker name
}

// NewMesh creates an empty mesh with a fresh id
func NewMesh() *Mesh {
	return &Mesh{
		ID:           uuid.New(),
		Nodes:        NewNodes(),
		Cells:        NewHybridElements(),
		Edges:        NewHybridElements(),
		Boundary:     NewHybridElements(),
		BoundaryTags: make(map[int]string),
	}
}

// Check verifies every container of the mesh and that all node references
// are in range
func (m *Mesh) Check() (err error) {
	if err = m.Nodes.Check(); err != nil {
		return fmt.Errorf("nodes: %w", err)
	}
	for _, c := range []struct {
		name string
		h    *HybridElements
	}{{"cells", m.Cells}, {"edges", m.Edges}, {"boundary", m.Boundary}} {
		if err = c.h.Check(); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		conn := c.h.NodeConnectivity()
		for e := 0; e < conn.Rows(); e++ {
			row, _ := conn.Row(e)
			for _, v := range row {
				if v < 0 || v >= m.Nodes.Size() {
					return fmt.Errorf("%s: element %d references node %d, mesh has %d nodes",
						c.name, e, v, m.Nodes.Size())
				}
			}
		}
	}
	return nil
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics: %s\n", m.ID)
	fmt.Printf("  Nodes: %d\n", m.Nodes.Size())
	fmt.Printf("  Cells: %d in %d ranges\n", m.Cells.Size(), m.Cells.RangeCount())
	fmt.Printf("  Edges: %d\n", m.Edges.Size())
	fmt.Printf("  Boundary elements: %d\n", m.Boundary.Size())

	// Count element types
	typeCounts := make(map[string]int)
	for _, r := range m.Cells.Ranges() {
		typeCounts[r.Name()] += r.Size()
	}
	names := make([]string, 0, len(typeCounts))
	for name := range typeCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("  Element types:\n")
	for _, name := range names {
		fmt.Printf("    %s: %d\n", name, typeCounts[name])
	}

	fmt.Printf("  Ranges:\n")
	for _, r := range m.Cells.Ranges() {
		fmt.Printf("    %d: %s\n", r.TypeIndex(), r)
	}

	markers := make([]int, 0, len(m.BoundaryTags))
	for k := range m.BoundaryTags {
		markers = append(markers, k)
	}
	sort.Ints(markers)
	for _, k := range markers {
		fmt.Printf("  Boundary marker %d: %s\n", k, m.BoundaryTags[k])
	}
}
