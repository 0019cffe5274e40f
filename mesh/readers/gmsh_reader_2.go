package readers

import (
	"fmt"
	"strconv"
	"strings"
)

// readNodes22 reads "id x y z" node lines
func (g *gmshReader) readNodes22() error {
	n, err := g.readCount("Nodes")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !g.scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(g.scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", g.scanner.Text())
		}
		tag, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node tag %q", parts[0])
		}
		if err = g.addNode(tag, parts[1:]); err != nil {
			return err
		}
	}
	return g.skipSection("$EndNodes")
}

// readElements22 reads "id type ntags tags... nodes..." element lines. The
// first tag is the physical group.
func (g *gmshReader) readElements22() error {
	n, err := g.readCount("Elements")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !g.scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		parts := strings.Fields(g.scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid element line: %s", g.scanner.Text())
		}
		elemType, err1 := strconv.Atoi(parts[1])
		numTags, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || numTags < 0 || len(parts) < 3+numTags {
			return fmt.Errorf("invalid element line: %s", g.scanner.Text())
		}
		var physical int
		if numTags > 0 {
			physical, _ = strconv.Atoi(parts[3])
		}
		if err = g.addElement(elemType, physical, parts[3+numTags:]); err != nil {
			return fmt.Errorf("element %s: %w", parts[0], err)
		}
	}
	return g.skipSection("$EndElements")
}
