package partition

import "github.com/notargets/gomesh/mesh"

// AssignGlobalNumbering numbers entities 1-based in insertion order. Zero
// stays reserved for an unnumbered entry.
func AssignGlobalNumbering(glb []int64) {
	for i := range glb {
		glb[i] = int64(i) + 1
	}
}

// NumberMesh assigns global numbers to the nodes and to every element
// container of m
func NumberMesh(m *mesh.Mesh) {
	AssignGlobalNumbering(m.Nodes.GlobalIndex())
	for _, h := range []*mesh.HybridElements{m.Cells, m.Edges, m.Boundary} {
		AssignGlobalNumbering(h.GlobalIndex())
	}
}
