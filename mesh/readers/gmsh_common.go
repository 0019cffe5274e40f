package readers

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// gmshElementType maps Gmsh element type numbers to linear element types.
// The numbering is shared by MSH 2.2 and 4.x; higher order types are
// skipped.
var gmshElementType = map[int]utils.ElementType{
	1:  utils.Line,     // 2-node line
	2:  utils.Triangle, // 3-node triangle
	3:  utils.Quad,     // 4-node quadrangle
	4:  utils.Tet,      // 4-node tetrahedron
	5:  utils.Hex,      // 8-node hexahedron
	6:  utils.Prism,    // 6-node prism
	7:  utils.Pyramid,  // 5-node pyramid
	15: utils.Point,    // 1-node point
}

// gmshElement is an element as read, with file node tags
type gmshElement struct {
	etype    utils.ElementType
	nodeTags []int
	physical int
}

// gmshReader holds the state shared by the MSH 2.2 and 4.x section readers
type gmshReader struct {
	scanner  *bufio.Scanner
	version  string
	names    map[int]string // Physical tag -> physical name
	entities [4]map[int]int // Entity tag -> first physical tag, by dimension
	nodeTags []int
	coords   []float64
	elements []gmshElement
	skipped  int // Elements of an unsupported type
}

// ReadGmsh reads an ASCII Gmsh file (.msh), format 2.2 or 4.x
func ReadGmsh(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGmsh(file)
}

// ParseGmsh reads an ASCII Gmsh mesh. The format version is taken from the
// $MeshFormat section. Elements of the highest dimension become cells with
// their physical tag in the group field. Elements one dimension lower become
// boundary elements whose marker is their physical tag, named after the
// physical group. Lower dimensional elements are dropped.
func ParseGmsh(r io.Reader) (*mesh.Mesh, error) {
	g := &gmshReader{
		scanner: bufio.NewScanner(r),
		names:   make(map[int]string),
	}
	for d := range g.entities {
		g.entities[d] = make(map[int]int)
	}
	for g.scanner.Scan() {
		line := strings.TrimSpace(g.scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		var err error
		switch line {
		case "$MeshFormat":
			err = g.readMeshFormat()
		case "$PhysicalNames":
			err = g.readPhysicalNames()
		case "$Entities":
			err = g.sectionByVersion(nil, g.readEntities4)
		case "$Nodes":
			err = g.sectionByVersion(g.readNodes22, g.readNodes4)
		case "$Elements":
			err = g.sectionByVersion(g.readElements22, g.readElements4)
		default:
			// Periodic links, ghost elements and data sections carry
			// nothing the mesh holds
			err = g.skipSection("$End" + line[1:])
		}
		if err != nil {
			return nil, err
		}
	}
	if err := g.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if g.version == "" {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	return g.build()
}

func (g *gmshReader) readMeshFormat() error {
	if !g.scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(g.scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line: %s", g.scanner.Text())
	}
	switch {
	case strings.HasPrefix(parts[0], "2."), strings.HasPrefix(parts[0], "4."):
	default:
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	g.version = parts[0]
	return g.skipSection("$EndMeshFormat")
}

// sectionByVersion runs the reader matching the file's format version
func (g *gmshReader) sectionByVersion(v2, v4 func() error) error {
	switch {
	case g.version == "":
		return fmt.Errorf("section before $MeshFormat")
	case strings.HasPrefix(g.version, "2."):
		if v2 == nil {
			return fmt.Errorf("unexpected section in Gmsh %s file", g.version)
		}
		return v2()
	default:
		return v4()
	}
}

// readPhysicalNames reads physical group names, common to 2.2 and 4.x
func (g *gmshReader) readPhysicalNames() error {
	n, err := g.readCount("PhysicalNames")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !g.scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}
		parts := strings.Fields(g.scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid physical name line: %s", g.scanner.Text())
		}
		tag, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid physical tag %q", parts[1])
		}
		// Names may contain spaces
		g.names[tag] = strings.Trim(strings.Join(parts[2:], " "), "\"")
	}
	return g.skipSection("$EndPhysicalNames")
}

// readCount reads the single integer line opening a section
func (g *gmshReader) readCount(section string) (int, error) {
	if !g.scanner.Scan() {
		return 0, fmt.Errorf("unexpected EOF in %s", section)
	}
	n, err := strconv.Atoi(strings.TrimSpace(g.scanner.Text()))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s count %q", section, g.scanner.Text())
	}
	return n, nil
}

func (g *gmshReader) addNode(tag int, fields []string) (err error) {
	var xyz [3]float64
	for k := range xyz {
		if xyz[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
			return fmt.Errorf("invalid coordinate: %w", err)
		}
	}
	g.nodeTags = append(g.nodeTags, tag)
	g.coords = append(g.coords, xyz[:]...)
	return
}

// addElement parses the node tags of one element of a known type
func (g *gmshReader) addElement(gmshType, physical int, nodeFields []string) error {
	et, ok := gmshElementType[gmshType]
	if !ok {
		g.skipped++
		return nil
	}
	if len(nodeFields) < et.GetNumNodes() {
		return fmt.Errorf("%v element has %d nodes, expected %d", et, len(nodeFields), et.GetNumNodes())
	}
	el := gmshElement{etype: et, physical: physical, nodeTags: make([]int, et.GetNumNodes())}
	for k := range el.nodeTags {
		var err error
		if el.nodeTags[k], err = strconv.Atoi(nodeFields[k]); err != nil {
			return fmt.Errorf("invalid node tag %q", nodeFields[k])
		}
	}
	g.elements = append(g.elements, el)
	return nil
}

// skipSection skips lines until the end marker
func (g *gmshReader) skipSection(endMarker string) error {
	for g.scanner.Scan() {
		if strings.TrimSpace(g.scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF while looking for %s", endMarker)
}

// build renumbers nodes in file order and appends cells and boundary
// elements in runs
func (g *gmshReader) build() (msh *mesh.Mesh, err error) {
	var (
		index    = make(map[int]int, len(g.nodeTags))
		dim      int
		cells    = newPendingElements(mesh.GroupField)
		boundary = newPendingElements(mesh.MarkerField, mesh.BCField)
	)
	if g.skipped > 0 {
		log.Printf("Skipped %d Gmsh elements of unsupported type", g.skipped)
	}
	msh = mesh.NewMesh()
	for i, tag := range g.nodeTags {
		if _, dup := index[tag]; dup {
			return nil, fmt.Errorf("duplicate node tag %d", tag)
		}
		index[tag] = i
	}
	if _, err = msh.Nodes.Add(len(g.nodeTags), g.coords); err != nil {
		return nil, err
	}
	for _, el := range g.elements {
		dim = max(dim, el.etype.GetDimension())
	}
	for _, el := range g.elements {
		d := el.etype.GetDimension()
		if d < dim-1 {
			continue
		}
		nodes := make([]int, len(el.nodeTags))
		for k, tag := range el.nodeTags {
			var ok bool
			if nodes[k], ok = index[tag]; !ok {
				return nil, fmt.Errorf("%v element references unknown node %d", el.etype, tag)
			}
		}
		if d == dim {
			cells.add(el.etype, nodes, int32(el.physical))
			continue
		}
		name, ok := g.names[el.physical]
		if !ok {
			name = fmt.Sprintf("boundary_%d", el.physical)
		}
		msh.BoundaryTags[el.physical] = name
		boundary.add(el.etype, nodes, int32(el.physical), int32(utils.ParseBCName(name)))
	}
	if err = cells.appendTo(msh.Cells); err != nil {
		return nil, err
	}
	if err = boundary.appendTo(msh.Boundary); err != nil {
		return nil, err
	}
	return msh, msh.Check()
}
