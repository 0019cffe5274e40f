package generate

import (
	"fmt"
	"strings"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// Layout selects the cell shapes of a structured mesh
type Layout uint8

const (
	Quads     Layout = iota
	Triangles        // Every quad split along its diagonal
	Mixed            // Triangles in the first TriangleRows rows, quads above
)

func (l Layout) String() string {
	switch l {
	case Quads:
		return "quads"
	case Triangles:
		return "triangles"
	case Mixed:
		return "mixed"
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "quads", "quad":
		return Quads, nil
	case "triangles", "tri", "tris":
		return Triangles, nil
	case "mixed", "hybrid":
		return Mixed, nil
	}
	return Quads, fmt.Errorf("%w: unknown layout %q", mesh.ErrInvalidArgument, name)
}

// Side indexes the four boundaries of a rectangle, counter-clockwise from
// the bottom. The side index is also the boundary marker.
type Side int

const (
	Bottom Side = iota
	Right
	Top
	Left
)

var sideNames = [4]string{"bottom", "right", "top", "left"}

func (s Side) String() string { return sideNames[s] }

// Structured describes an Nx x Ny grid of cells over a rectangle
type Structured struct {
	Nx, Ny       int
	XMin, XMax   float64
	YMin, YMax   float64
	Layout       Layout
	TriangleRows int
	// Marker name of each side. The BC type of a side is parsed from its
	// name, an empty name defaults to the side name.
	Markers [4]string
}

func (s *Structured) validate() error {
	switch {
	case s.Nx < 1 || s.Ny < 1:
		return fmt.Errorf("%w: grid of %d x %d cells", mesh.ErrInvalidArgument, s.Nx, s.Ny)
	case !(s.XMax > s.XMin) || !(s.YMax > s.YMin):
		return fmt.Errorf("%w: empty domain [%g,%g] x [%g,%g]", mesh.ErrInvalidArgument,
			s.XMin, s.XMax, s.YMin, s.YMax)
	case s.Layout == Mixed && (s.TriangleRows < 0 || s.TriangleRows > s.Ny):
		return fmt.Errorf("%w: %d triangle rows in %d rows", mesh.ErrInvalidArgument, s.TriangleRows, s.Ny)
	case s.Layout > Mixed:
		return fmt.Errorf("%w: layout %v", mesh.ErrInvalidArgument, s.Layout)
	}
	return nil
}

// Node returns the index of grid node (i, j), 0 <= i <= Nx, 0 <= j <= Ny
func (s *Structured) Node(i, j int) int { return j*(s.Nx+1) + i }

// Generate builds the mesh. Cells are numbered row by row from the bottom,
// all oriented counter-clockwise, and appended one range per run of equal
// shape. The boundary holds one Line per boundary edge, bottom, right, top
// then left, each walked counter-clockwise and tagged with its marker and BC
// type.
func (s *Structured) Generate() (m *mesh.Mesh, err error) {
	if err = s.validate(); err != nil {
		return
	}
	var (
		nNodes = (s.Nx + 1) * (s.Ny + 1)
		dx     = (s.XMax - s.XMin) / float64(s.Nx)
		dy     = (s.YMax - s.YMin) / float64(s.Ny)
		coords = make([]float64, 0, 3*nNodes)
		types  []utils.ElementType
		rows   [][]int
	)
	m = mesh.NewMesh()
	for j := 0; j <= s.Ny; j++ {
		for i := 0; i <= s.Nx; i++ {
			coords = append(coords, s.XMin+float64(i)*dx, s.YMin+float64(j)*dy, 0)
		}
	}
	// Pin the far corners to the exact domain bounds
	for j := 0; j <= s.Ny; j++ {
		coords[3*s.Node(s.Nx, j)] = s.XMax
	}
	for i := 0; i <= s.Nx; i++ {
		coords[3*s.Node(i, s.Ny)+1] = s.YMax
	}
	if _, err = m.Nodes.Add(nNodes, coords); err != nil {
		return nil, err
	}

	for j := 0; j < s.Ny; j++ {
		triangles := s.Layout == Triangles || (s.Layout == Mixed && j < s.TriangleRows)
		for i := 0; i < s.Nx; i++ {
			a, b, c, d := s.Node(i, j), s.Node(i+1, j), s.Node(i+1, j+1), s.Node(i, j+1)
			if triangles {
				types = append(types, utils.Triangle, utils.Triangle)
				rows = append(rows, []int{a, b, c}, []int{a, c, d})
			} else {
				types = append(types, utils.Quad)
				rows = append(rows, []int{a, b, c, d})
			}
		}
	}
	if _, err = m.Cells.AppendRuns(types, rows); err != nil {
		return nil, err
	}
	if err = s.addBoundary(m); err != nil {
		return nil, err
	}
	return m, m.Check()
}

func (s *Structured) addBoundary(m *mesh.Mesh) (err error) {
	var (
		nodes   []int
		markers []int32
		bcs     []int32
	)
	add := func(side Side, v0, v1 int) {
		nodes = append(nodes, v0, v1)
		markers = append(markers, int32(side))
		bcs = append(bcs, int32(utils.ParseBCName(m.BoundaryTags[int(side)])))
	}
	for side := Bottom; side <= Left; side++ {
		name := s.Markers[side]
		if name == "" {
			name = side.String()
		}
		m.BoundaryTags[int(side)] = name
	}
	for i := 0; i < s.Nx; i++ {
		add(Bottom, s.Node(i, 0), s.Node(i+1, 0))
	}
	for j := 0; j < s.Ny; j++ {
		add(Right, s.Node(s.Nx, j), s.Node(s.Nx, j+1))
	}
	for i := s.Nx; i > 0; i-- {
		add(Top, s.Node(i, s.Ny), s.Node(i-1, s.Ny))
	}
	for j := s.Ny; j > 0; j-- {
		add(Left, s.Node(0, j), s.Node(0, j-1))
	}
	if _, err = m.Boundary.AppendElements(utils.Line, len(markers), nodes); err != nil {
		return
	}
	for name, vals := range map[string][]int32{mesh.MarkerField: markers, mesh.BCField: bcs} {
		var (
			f   mesh.Field
			dst []int32
		)
		if f, err = m.Boundary.AttachField(name, 1, mesh.Int32); err != nil {
			return
		}
		if dst, err = mesh.Values[int32](f); err != nil {
			return
		}
		copy(dst, vals)
	}
	return
}
