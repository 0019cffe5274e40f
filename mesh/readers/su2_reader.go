package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// ReadSU2 reads an SU2 native format file
func ReadSU2(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseSU2(file)
}

// ParseSU2 reads an SU2 native mesh. Cells are appended in file order, one
// range per run of equal element type. Marker elements go to the boundary
// container tagged with the marker index and the BC type parsed from the
// marker name.
func ParseSU2(r io.Reader) (*mesh.Mesh, error) {
	var (
		err      error
		msh      = mesh.NewMesh()
		scanner  = bufio.NewScanner(r)
		cells    = newPendingElements()
		boundary = newPendingElements(mesh.MarkerField, mesh.BCField)
		ndime    int
		npoin    = -1
		hasNDIME bool
	)
	parseNodes := func(fields []string, n int) ([]int, error) {
		if len(fields) < n {
			return nil, fmt.Errorf("expected %d nodes, got %d fields", n, len(fields))
		}
		var (
			nodes = make([]int, n)
			err   error
		)
		for j := 0; j < n; j++ {
			if nodes[j], err = strconv.Atoi(fields[j]); err != nil {
				return nil, fmt.Errorf("invalid node index: %v", err)
			}
			if npoin >= 0 && (nodes[j] < 0 || nodes[j] >= npoin) {
				return nil, fmt.Errorf("node index %d out of range [0,%d)", nodes[j], npoin)
			}
		}
		return nodes, nil
	}
	nextLine := func(what string) (string, error) {
		if !scanner.Scan() {
			return "", fmt.Errorf("unexpected EOF reading %s", what)
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments (text after %)
		if idx := strings.Index(line, "%"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			hasNDIME = true
			fmt.Sscanf(line, "NDIME=%d", &ndime)
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NPOIN="):
			if !hasNDIME {
				return nil, fmt.Errorf("NPOIN= before NDIME=")
			}
			if _, err = fmt.Sscanf(line, "NPOIN=%d", &npoin); err != nil || npoin < 0 {
				return nil, fmt.Errorf("invalid NPOIN line: %s", line)
			}
			coords := make([]float64, 3*npoin) // Always store 3D coordinates
			for i := 0; i < npoin; i++ {
				var nodeLine string
				if nodeLine, err = nextLine("nodes"); err != nil {
					return nil, err
				}
				fields := strings.Fields(nodeLine)
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				// Node ID is implicit, a trailing explicit ID is ignored
				for j := 0; j < ndime; j++ {
					if coords[3*i+j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %v", err)
					}
				}
			}
			if _, err = msh.Nodes.Add(npoin, coords); err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			if _, err = fmt.Sscanf(line, "NELEM=%d", &nelem); err != nil || nelem < 0 {
				return nil, fmt.Errorf("invalid NELEM line: %s", line)
			}
			for i := 0; i < nelem; i++ {
				var elemLine string
				if elemLine, err = nextLine("elements"); err != nil {
					return nil, err
				}
				fields := strings.Fields(elemLine)
				if len(fields) < 2 {
					return nil, fmt.Errorf("invalid element line: %s", elemLine)
				}
				var etype utils.ElementType
				if etype, err = su2ElementType(fields[0]); err != nil {
					return nil, err
				}
				var nodes []int
				if nodes, err = parseNodes(fields[1:], etype.GetNumNodes()); err != nil {
					return nil, fmt.Errorf("element %d (%v): %w", i, etype, err)
				}
				cells.add(etype, nodes)
			}

		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			if _, err = fmt.Sscanf(line, "NMARK=%d", &nmark); err != nil || nmark < 0 {
				return nil, fmt.Errorf("invalid NMARK line: %s", line)
			}
			for i := 0; i < nmark; i++ {
				var markerLine, elemLine string
				if markerLine, err = nextLine(fmt.Sprintf("marker %d", i)); err != nil {
					return nil, err
				}
				if !strings.HasPrefix(markerLine, "MARKER_TAG=") {
					return nil, fmt.Errorf("expected MARKER_TAG=, got: %s", markerLine)
				}
				tagName := strings.TrimSpace(strings.TrimPrefix(markerLine, "MARKER_TAG="))
				if elemLine, err = nextLine("marker elements for " + tagName); err != nil {
					return nil, err
				}
				var nMarkerElems int
				if _, err = fmt.Sscanf(elemLine, "MARKER_ELEMS=%d", &nMarkerElems); err != nil {
					return nil, fmt.Errorf("invalid MARKER_ELEMS line: %s", elemLine)
				}
				msh.BoundaryTags[i] = tagName
				bc := int32(utils.ParseBCName(tagName))
				for j := 0; j < nMarkerElems; j++ {
					var bLine string
					if bLine, err = nextLine("boundary elements"); err != nil {
						return nil, err
					}
					fields := strings.Fields(bLine)
					if len(fields) < 2 {
						return nil, fmt.Errorf("invalid boundary element line: %s", bLine)
					}
					var btype utils.ElementType
					if btype, err = su2ElementType(fields[0]); err != nil {
						return nil, err
					}
					if btype.GetDimension() >= ndime {
						return nil, fmt.Errorf("boundary element type %v in a %dD mesh", btype, ndime)
					}
					var nodes []int
					if nodes, err = parseNodes(fields[1:], btype.GetNumNodes()); err != nil {
						return nil, fmt.Errorf("marker %s: %w", tagName, err)
					}
					boundary.add(btype, nodes, int32(i), bc)
				}
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}

	// Validate that we read the required sections
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if npoin < 0 {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}

	if err = cells.appendTo(msh.Cells); err != nil {
		return nil, err
	}
	if err = boundary.appendTo(msh.Boundary); err != nil {
		return nil, err
	}
	// Elements may precede the node section, so node references are
	// validated once everything is read
	if err = msh.Check(); err != nil {
		return nil, err
	}
	return msh, nil
}

func su2ElementType(token string) (utils.ElementType, error) {
	id, err := strconv.Atoi(token)
	if err != nil {
		return utils.Unknown, fmt.Errorf("invalid element type: %v", err)
	}
	// Map SU2/VTK element types to our types
	etype, ok := su2ElementTypeMap[id]
	if !ok {
		return utils.Unknown, fmt.Errorf("unknown element type: %d", id)
	}
	return etype, nil
}

// su2ElementTypeMap maps SU2/VTK element type identifiers to our ElementType
var su2ElementTypeMap = map[int]utils.ElementType{
	3:  utils.Line,     // VTK_LINE
	5:  utils.Triangle, // VTK_TRIANGLE
	9:  utils.Quad,     // VTK_QUAD
	10: utils.Tet,      // VTK_TETRA
	12: utils.Hex,      // VTK_HEXAHEDRON
	13: utils.Prism,    // VTK_WEDGE
	14: utils.Pyramid,  // VTK_PYRAMID
}

// WriteSU2 writes the cells, nodes and boundary markers of a mesh in SU2
// native format. Boundary elements are grouped by their marker field.
func WriteSU2(w io.Writer, msh *mesh.Mesh, ndime int) (err error) {
	if ndime != 2 && ndime != 3 {
		return fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
	}
	vtkID := make(map[utils.ElementType]int, len(su2ElementTypeMap))
	for id, et := range su2ElementTypeMap {
		vtkID[et] = id
	}
	for _, h := range []*mesh.HybridElements{msh.Cells, msh.Boundary} {
		for _, r := range h.Ranges() {
			if _, ok := vtkID[r.Shape()]; !ok && r.Size() > 0 {
				return fmt.Errorf("%v elements have no SU2 type", r.Shape())
			}
		}
	}
	// Every boundary element must belong to a named marker
	var markers []int32
	if msh.Boundary.Size() > 0 {
		var f mesh.Field
		if f, err = msh.Boundary.Field(mesh.MarkerField); err != nil {
			return
		}
		if markers, err = mesh.Values[int32](f); err != nil {
			return
		}
	}
	byMarker := make(map[int32][]int)
	for e, m := range markers {
		if _, ok := msh.BoundaryTags[int(m)]; !ok {
			return fmt.Errorf("boundary element %d has marker %d with no tag", e, m)
		}
		byMarker[m] = append(byMarker[m], e)
	}

	bw := bufio.NewWriter(w)
	writeElement := func(h *mesh.HybridElements, e int) error {
		et, err := h.TypeOf(e)
		if err != nil {
			return err
		}
		row, err := h.NodeConnectivity().Row(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d", vtkID[et])
		for _, v := range row {
			fmt.Fprintf(bw, " %d", v)
		}
		_, err = fmt.Fprintf(bw, " %d\n", e)
		return err
	}

	fmt.Fprintf(bw, "NDIME= %d\n", ndime)
	fmt.Fprintf(bw, "NELEM= %d\n", msh.Cells.Size())
	for e := 0; e < msh.Cells.Size(); e++ {
		if err = writeElement(msh.Cells, e); err != nil {
			return
		}
	}
	fmt.Fprintf(bw, "NPOIN= %d\n", msh.Nodes.Size())
	xyz := msh.Nodes.Coordinates()
	for i := 0; i < msh.Nodes.Size(); i++ {
		for j := 0; j < ndime; j++ {
			fmt.Fprintf(bw, "%.15g ", xyz[3*i+j])
		}
		fmt.Fprintf(bw, "%d\n", i)
	}

	tags := sortedMarkers(msh.BoundaryTags)
	fmt.Fprintf(bw, "NMARK= %d\n", len(tags))
	for _, m := range tags {
		fmt.Fprintf(bw, "MARKER_TAG= %s\n", msh.BoundaryTags[m])
		fmt.Fprintf(bw, "MARKER_ELEMS= %d\n", len(byMarker[int32(m)]))
		for _, e := range byMarker[int32(m)] {
			et, _ := msh.Boundary.TypeOf(e)
			row, _ := msh.Boundary.NodeConnectivity().Row(e)
			fmt.Fprintf(bw, "%d", vtkID[et])
			for _, v := range row {
				fmt.Fprintf(bw, " %d", v)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
