package readers

import (
	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// pendingElements collects elements in file order, with one int32 tag per
// element for each named tag field, until they can be appended in runs
type pendingElements struct {
	tagNames []string
	types    []utils.ElementType
	nodes    [][]int
	tags     [][]int32
}

func newPendingElements(tagNames ...string) *pendingElements {
	return &pendingElements{
		tagNames: tagNames,
		tags:     make([][]int32, len(tagNames)),
	}
}

func (p *pendingElements) add(et utils.ElementType, nodes []int, tags ...int32) {
	p.types = append(p.types, et)
	p.nodes = append(p.nodes, nodes)
	for i := range p.tagNames {
		var v int32
		if i < len(tags) {
			v = tags[i]
		}
		p.tags[i] = append(p.tags[i], v)
	}
}

func (p *pendingElements) len() int { return len(p.types) }

// appendTo appends the elements in runs of equal type, then writes the tag
// fields for the appended elements
func (p *pendingElements) appendTo(h *mesh.HybridElements) (err error) {
	var (
		first = h.Size()
	)
	if _, err = h.AppendRuns(p.types, p.nodes); err != nil {
		return
	}
	for i, name := range p.tagNames {
		var f mesh.Field
		if f, err = h.Field(name); err != nil {
			if f, err = h.AttachField(name, 1, mesh.Int32); err != nil {
				return
			}
		}
		var vals []int32
		if vals, err = mesh.Values[int32](f); err != nil {
			return
		}
		copy(vals[first:], p.tags[i])
	}
	return
}
