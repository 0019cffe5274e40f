package readers

import (
	"fmt"
	"strconv"
	"strings"
)

// readEntities4 keeps the first physical tag of every point, curve, surface
// and volume entity
func (g *gmshReader) readEntities4() error {
	if !g.scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Entities")
	}
	counts := strings.Fields(g.scanner.Text())
	if len(counts) < 4 {
		return fmt.Errorf("invalid entity counts: %s", g.scanner.Text())
	}
	for dim := 0; dim < 4; dim++ {
		n, err := strconv.Atoi(counts[dim])
		if err != nil {
			return fmt.Errorf("invalid entity count %q", counts[dim])
		}
		// Points carry one coordinate, the others a bounding box
		physPos := 7
		if dim == 0 {
			physPos = 4
		}
		for i := 0; i < n; i++ {
			if !g.scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading entities of dimension %d", dim)
			}
			fields := strings.Fields(g.scanner.Text())
			if len(fields) < physPos {
				return fmt.Errorf("invalid entity line: %s", g.scanner.Text())
			}
			tag, _ := strconv.Atoi(fields[0])
			if len(fields) > physPos+1 {
				if numPhys, _ := strconv.Atoi(fields[physPos]); numPhys > 0 {
					g.entities[dim][tag], _ = strconv.Atoi(fields[physPos+1])
				}
			}
		}
	}
	return g.skipSection("$EndEntities")
}

// readNodes4 reads entity blocks of node tags followed by their coordinates
func (g *gmshReader) readNodes4() error {
	if !g.scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	// numEntityBlocks numNodes minNodeTag maxNodeTag
	header := strings.Fields(g.scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Nodes header: %s", g.scanner.Text())
	}
	numBlocks, _ := strconv.Atoi(header[0])
	for i := 0; i < numBlocks; i++ {
		if !g.scanner.Scan() {
			return fmt.Errorf("unexpected EOF in node entity block %d", i)
		}
		// entityDim entityTag parametric numNodesInBlock
		blockHeader := strings.Fields(g.scanner.Text())
		if len(blockHeader) < 4 {
			return fmt.Errorf("invalid node block header: %s", g.scanner.Text())
		}
		n, err := strconv.Atoi(blockHeader[3])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid node block size %q", blockHeader[3])
		}
		tags := make([]int, n)
		for j := range tags {
			if !g.scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node tags")
			}
			if tags[j], err = strconv.Atoi(strings.TrimSpace(g.scanner.Text())); err != nil {
				return fmt.Errorf("invalid node tag %q", g.scanner.Text())
			}
		}
		// Parametric coordinates, when present, follow x y z and are ignored
		for j := range tags {
			if !g.scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}
			fields := strings.Fields(g.scanner.Text())
			if len(fields) < 3 {
				return fmt.Errorf("invalid node coordinate line: %s", g.scanner.Text())
			}
			if err = g.addNode(tags[j], fields); err != nil {
				return err
			}
		}
	}
	return g.skipSection("$EndNodes")
}

// readElements4 reads entity blocks of elements. An element's physical group
// is the first physical tag of its entity.
func (g *gmshReader) readElements4() error {
	if !g.scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	// numEntityBlocks numElements minElementTag maxElementTag
	header := strings.Fields(g.scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Elements header: %s", g.scanner.Text())
	}
	numBlocks, _ := strconv.Atoi(header[0])
	for i := 0; i < numBlocks; i++ {
		if !g.scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element entity block %d", i)
		}
		// entityDim entityTag elementType numElementsInBlock
		blockHeader := strings.Fields(g.scanner.Text())
		if len(blockHeader) < 4 {
			return fmt.Errorf("invalid element block header: %s", g.scanner.Text())
		}
		var values [4]int
		for k := range values {
			var err error
			if values[k], err = strconv.Atoi(blockHeader[k]); err != nil {
				return fmt.Errorf("invalid element block header: %s", g.scanner.Text())
			}
		}
		entityDim, entityTag, gmshType, n := values[0], values[1], values[2], values[3]
		if entityDim < 0 || entityDim > 3 {
			return fmt.Errorf("invalid entity dimension %d", entityDim)
		}
		physical := g.entities[entityDim][entityTag]
		for j := 0; j < n; j++ {
			if !g.scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading elements")
			}
			fields := strings.Fields(g.scanner.Text())
			if len(fields) < 1 {
				return fmt.Errorf("empty element line in block %d", i)
			}
			if err := g.addElement(gmshType, physical, fields[1:]); err != nil {
				return fmt.Errorf("element %s: %w", fields[0], err)
			}
		}
	}
	return g.skipSection("$EndElements")
}
