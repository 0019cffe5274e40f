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

// ReadGambitNeutral reads a Gambit neutral file (.neu)
func ReadGambitNeutral(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGambitNeutral(file)
}

// ParseGambitNeutral reads a Gambit neutral mesh. Cells carry their element
// group in the group field, face boundary conditions become boundary
// elements built from the parent cell's face.
func ParseGambitNeutral(r io.Reader) (*mesh.Mesh, error) {
	var (
		msh      = mesh.NewMesh()
		scanner  = bufio.NewScanner(r)
		cells    = newPendingElements(mesh.GroupField)
		boundary = newPendingElements(mesh.MarkerField, mesh.BCField)
		// Control variables from header
		numnp, nelem, ngrps, nbsets int
		hasControl                  bool
	)

	// Read control info section
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			// Next line contains the actual values
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values := strings.Fields(scanner.Text())
			if len(values) < 4 {
				return nil, fmt.Errorf("invalid control line: %s", scanner.Text())
			}
			counts := []*int{&numnp, &nelem, &ngrps, &nbsets}
			for i, c := range counts {
				var err error
				if *c, err = strconv.Atoi(values[i]); err != nil || *c < 0 {
					return nil, fmt.Errorf("invalid control value %q", values[i])
				}
			}
			hasControl = true
			break
		}
	}
	if !hasControl {
		return nil, fmt.Errorf("missing NUMNP/NELEM control header")
	}

	// Continue reading sections
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "ENDOFSECTION":
			continue

		case strings.Contains(line, "NODAL COORDINATES"):
			coords := make([]float64, 3*numnp)
			for i := 0; i < numnp; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid node line: %s", scanner.Text())
				}
				// Gambit uses 1-based node IDs
				nodeID, err := strconv.Atoi(fields[0])
				if err != nil || nodeID < 1 || nodeID > numnp {
					return nil, fmt.Errorf("invalid node id %q", fields[0])
				}
				idx := nodeID - 1
				for j, field := range fields[1:min(len(fields), 4)] {
					if coords[3*idx+j], err = strconv.ParseFloat(field, 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %v", err)
					}
				}
			}
			if _, err := msh.Nodes.Add(numnp, coords); err != nil {
				return nil, err
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid element line: %s", scanner.Text())
				}
				gambitType, _ := strconv.Atoi(fields[1])
				numNodes, _ := strconv.Atoi(fields[2])
				etype, ok := gambitElementTypeMap[gambitType]
				if !ok {
					return nil, fmt.Errorf("unknown Gambit element type: %d", gambitType)
				}
				if numNodes != etype.GetNumNodes() {
					return nil, fmt.Errorf("element %s of type %v has %d nodes, expected %d",
						fields[0], etype, numNodes, etype.GetNumNodes())
				}
				// Long node lists continue on the following lines
				nodeFields := fields[3:]
				for len(nodeFields) < numNodes {
					if !scanner.Scan() {
						return nil, fmt.Errorf("unexpected EOF reading element %s", fields[0])
					}
					nodeFields = append(nodeFields, strings.Fields(scanner.Text())...)
				}
				nodes := make([]int, numNodes)
				for j := 0; j < numNodes; j++ {
					nodeID, err := strconv.Atoi(nodeFields[j])
					if err != nil {
						return nil, fmt.Errorf("invalid node index: %v", err)
					}
					// Convert from 1-based to 0-based
					nodes[j] = nodeID - 1
				}
				cells.add(etype, nodes)
			}

		case strings.Contains(line, "ELEMENT GROUP"):
			if err := readGambitGroup(scanner, cells); err != nil {
				return nil, err
			}

		case strings.Contains(line, "BOUNDARY CONDITIONS"):
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF reading boundary conditions")
			}
			// Format: NAME ITYPE NENTRY NVALUES IBCODE1 ...
			parts := strings.Fields(scanner.Text())
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid boundary condition line: %s", scanner.Text())
			}
			var (
				bcName    = parts[0]
				itype, _  = strconv.Atoi(parts[1]) // 0=node, 1=element/cell
				nentry, _ = strconv.Atoi(parts[2])
				marker    = len(msh.BoundaryTags)
				bc        = int32(utils.ParseBCName(bcName))
			)
			msh.BoundaryTags[marker] = bcName
			for i := 0; i < nentry; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading boundary %s", bcName)
				}
				if itype != 1 {
					// Node boundary conditions are not kept
					continue
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid boundary entry: %s", scanner.Text())
				}
				elemID, _ := strconv.Atoi(fields[0])
				faceID, _ := strconv.Atoi(fields[2])
				btype, nodes, err := parentFace(cells, elemID-1, faceID-1)
				if err != nil {
					return nil, fmt.Errorf("boundary %s: %w", bcName, err)
				}
				boundary.add(btype, nodes, int32(marker), bc)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	if cells.len() != nelem {
		return nil, fmt.Errorf("read %d elements, header declares %d", cells.len(), nelem)
	}
	if err := cells.appendTo(msh.Cells); err != nil {
		return nil, err
	}
	if err := boundary.appendTo(msh.Boundary); err != nil {
		return nil, err
	}
	if err := msh.Check(); err != nil {
		return nil, err
	}
	return msh, nil
}

// readGambitGroup reads one element group and tags its member cells
func readGambitGroup(scanner *bufio.Scanner, cells *pendingElements) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading element group")
	}
	var (
		groupLine                 = strings.TrimSpace(scanner.Text())
		parts                     = strings.Fields(groupLine)
		groupID, numElems, nflags int
	)
	if !strings.HasPrefix(groupLine, "GROUP:") {
		return fmt.Errorf("expected GROUP:, got: %s", groupLine)
	}
	for i := 0; i < len(parts)-1; i++ {
		switch parts[i] {
		case "GROUP:":
			groupID, _ = strconv.Atoi(parts[i+1])
		case "ELEMENTS:":
			numElems, _ = strconv.Atoi(parts[i+1])
		case "NFLAGS:":
			nflags, _ = strconv.Atoi(parts[i+1])
		}
	}
	// Entity name
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading group %d", groupID)
	}
	// Flags line
	if nflags > 0 && !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading group %d", groupID)
	}
	for elementsRead := 0; elementsRead < numElems; {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading group %d", groupID)
		}
		for _, field := range strings.Fields(scanner.Text()) {
			elemID, err := strconv.Atoi(field)
			// Elements are 1-indexed in file, 0-indexed in mesh
			if err != nil || elemID < 1 || elemID > cells.len() {
				return fmt.Errorf("group %d: invalid element id %q", groupID, field)
			}
			cells.tags[0][elemID-1] = int32(groupID)
			elementsRead++
		}
	}
	return nil
}

// parentFace returns the boundary element spanning one face of a cell. Faces
// of 2D cells are their edges.
func parentFace(cells *pendingElements, elemIdx, face int) (btype utils.ElementType, nodes []int, err error) {
	if elemIdx < 0 || elemIdx >= cells.len() {
		return utils.Unknown, nil, fmt.Errorf("element %d does not exist", elemIdx+1)
	}
	var (
		parentType = cells.types[elemIdx]
		verts      = cells.nodes[elemIdx]
	)
	if parentType.GetDimension() == 2 {
		edges := parentType.GetEdges()
		if face < 0 || face >= len(edges) {
			return utils.Unknown, nil, fmt.Errorf("element %d has no face %d", elemIdx+1, face+1)
		}
		return utils.Line, []int{verts[edges[face][0]], verts[edges[face][1]]}, nil
	}
	faces := utils.GetElementFaces(parentType, verts)
	if face < 0 || face >= len(faces) {
		return utils.Unknown, nil, fmt.Errorf("element %d has no face %d", elemIdx+1, face+1)
	}
	nodes = faces[face]
	if len(nodes) == 3 {
		btype = utils.Triangle
	} else {
		btype = utils.Quad
	}
	return
}

// gambitElementTypeMap maps Gambit element type codes to our ElementType
var gambitElementTypeMap = map[int]utils.ElementType{
	1: utils.Line,     // Edge
	2: utils.Quad,     // Quadrilateral
	3: utils.Triangle, // Triangle
	4: utils.Hex,      // Brick
	5: utils.Prism,    // Wedge
	6: utils.Tet,      // Tetrahedron
	7: utils.Pyramid,  // Pyramid
}
