package utils

import "strings"

// ElementType represents the closed set of element shapes a mesh can hold
type ElementType uint8

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	// 2D elements
	Triangle
	Quad
	// 3D elements
	Tet
	Hex
	Prism
	Pyramid
	numElementTypes
)

type elementShape struct {
	name                     string
	dim, nodes, edges, faces int
	edgeNodes                [][2]int // Local node pairs of each edge
}

var shapeTable = [numElementTypes]elementShape{
	Unknown:  {name: "Unknown", dim: -1},
	Point:    {name: "Point", dim: 0, nodes: 1},
	Line:     {name: "Line", dim: 1, nodes: 2, edges: 1, edgeNodes: [][2]int{{0, 1}}},
	Triangle: {name: "Triangle", dim: 2, nodes: 3, edges: 3, edgeNodes: [][2]int{{0, 1}, {1, 2}, {2, 0}}},
	Quad: {name: "Quadrilateral", dim: 2, nodes: 4, edges: 4,
		edgeNodes: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}},
	Tet: {name: "Tetrahedron", dim: 3, nodes: 4, edges: 6, faces: 4,
		edgeNodes: [][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}}},
	Hex: {name: "Hexahedron", dim: 3, nodes: 8, edges: 12, faces: 6,
		edgeNodes: [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
			{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
			{0, 4}, {1, 5}, {2, 6}, {3, 7}, // verticals
		}},
	Prism: {name: "Prism", dim: 3, nodes: 6, edges: 9, faces: 5,
		edgeNodes: [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}, {0, 3}, {1, 4}, {2, 5}}},
	Pyramid: {name: "Pyramid", dim: 3, nodes: 5, edges: 8, faces: 5,
		edgeNodes: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 4}, {1, 4}, {2, 4}, {3, 4}}},
}

// ElementTypes lists every valid element type in registry order
var ElementTypes = []ElementType{Point, Line, Triangle, Quad, Tet, Hex, Prism, Pyramid}

func (e ElementType) IsValid() bool {
	return e > Unknown && e < numElementTypes
}

func (e ElementType) shape() elementShape {
	if e >= numElementTypes {
		return shapeTable[Unknown]
	}
	return shapeTable[e]
}

// String representation of element types
func (e ElementType) String() string {
	if e >= numElementTypes {
		return "Invalid"
	}
	return shapeTable[e].name
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int { return e.shape().dim }

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int { return e.shape().nodes }

// GetNumEdges returns the number of edges for each element type
func (e ElementType) GetNumEdges() int { return e.shape().edges }

// GetNumFaces returns the number of faces for 3D elements
func (e ElementType) GetNumFaces() int { return e.shape().faces }

// GetEdges returns the local node pairs of every edge, in edge order.
// The returned slice is shared and must not be modified.
func (e ElementType) GetEdges() [][2]int { return e.shape().edgeNodes }

// ParseElementType accepts the display name or the short name of a type
func ParseElementType(name string) (ElementType, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, et := range ElementTypes {
		if strings.ToLower(et.String()) == n {
			return et, true
		}
	}
	switch n {
	case "tri":
		return Triangle, true
	case "quad":
		return Quad, true
	case "tet":
		return Tet, true
	case "hex":
		return Hex, true
	case "wedge":
		return Prism, true
	}
	return Unknown, false
}

// GetElementFaces returns the faces of an element as vertex lists
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	v := vertices
	switch elemType {
	case Tet:
		return [][]int{
			{v[0], v[2], v[1]}, // Face 0
			{v[0], v[1], v[3]}, // Face 1
			{v[0], v[3], v[2]}, // Face 2
			{v[1], v[2], v[3]}, // Face 3
		}

	case Hex:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // Face 0 (bottom)
			{v[4], v[5], v[6], v[7]}, // Face 1 (top)
			{v[0], v[1], v[5], v[4]}, // Face 2
			{v[1], v[2], v[6], v[5]}, // Face 3
			{v[2], v[3], v[7], v[6]}, // Face 4
			{v[3], v[0], v[4], v[7]}, // Face 5
		}

	case Prism:
		return [][]int{
			{v[0], v[2], v[1]},       // Face 0 (bottom tri)
			{v[3], v[4], v[5]},       // Face 1 (top tri)
			{v[0], v[1], v[4], v[3]}, // Face 2 (quad)
			{v[1], v[2], v[5], v[4]}, // Face 3 (quad)
			{v[2], v[0], v[3], v[5]}, // Face 4 (quad)
		}

	case Pyramid:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // Face 0 (base quad)
			{v[0], v[1], v[4]},       // Face 1 (tri)
			{v[1], v[2], v[4]},       // Face 2 (tri)
			{v[2], v[3], v[4]},       // Face 3 (tri)
			{v[3], v[0], v[4]},       // Face 4 (tri)
		}

	default:
		return [][]int{}
	}
}
