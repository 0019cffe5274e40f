package mesh

import (
	"fmt"

	"github.com/notargets/gomesh/utils"
)

// Elements is a non-owning window [begin, end) into a HybridElements, tagged
// with the element type of the append call that produced it. Indices passed
// to its views are local to the window.
type Elements struct {
	owner      *HybridElements
	shape      utils.ElementType
	begin, end int
	index      int
}

// NewElements builds a standalone range in its own temporary container.
// Use HybridElements.AppendRange to copy it into a long lived container.
func NewElements(et utils.ElementType, n int, nodes []int) (*Elements, error) {
	h := NewHybridElements()
	if _, err := h.AppendElements(et, n, nodes); err != nil {
		return nil, err
	}
	return h.ranges[0], nil
}

func (e *Elements) Size() int                { return e.end - e.begin }
func (e *Elements) Begin() int               { return e.begin }
func (e *Elements) End() int                 { return e.end }
func (e *Elements) Shape() utils.ElementType { return e.shape }
func (e *Elements) Name() string             { return e.shape.String() }
func (e *Elements) NbNodes() int             { return e.shape.GetNumNodes() }
func (e *Elements) NbEdges() int             { return e.shape.GetNumEdges() }
func (e *Elements) Owner() *HybridElements   { return e.owner }

// TypeIndex is the position of this range in its container's append order
func (e *Elements) TypeIndex() int { return e.index }

func (e *Elements) NodeConnectivity() ConnectivityView {
	return e.owner.nodeConnectivity.Slice(e.begin, e.end)
}

func (e *Elements) EdgeConnectivity() ConnectivityView {
	return e.owner.edgeConnectivity.Slice(e.begin, e.end)
}

func (e *Elements) CellConnectivity() ConnectivityView {
	return e.owner.cellConnectivity.Slice(e.begin, e.end)
}

// FieldView is a named field restricted to the entries of one range
type FieldView struct {
	Field
	begin, end int
}

func (fv FieldView) Begin() int { return fv.begin }
func (fv FieldView) End() int   { return fv.end }

// Len is the number of entries in the view
func (fv FieldView) Len() int { return fv.end - fv.begin }

// Field returns the named field restricted to this range
func (e *Elements) Field(name string) (FieldView, error) {
	f, err := e.owner.Field(name)
	if err != nil {
		return FieldView{}, err
	}
	return FieldView{Field: f, begin: e.begin, end: e.end}, nil
}

// ViewValues returns the typed values of a field view, Width per entry.
// Writes through the slice are visible to the container.
func ViewValues[T Scalar](fv FieldView) ([]T, error) {
	if fv.Field == nil {
		return nil, fmt.Errorf("%w: empty field view", ErrUnknownField)
	}
	a, err := AsArray[T](fv.Field)
	if err != nil {
		return nil, err
	}
	return a.Slice(fv.begin, fv.end)
}

// RangeValues is shorthand for Field followed by ViewValues
func RangeValues[T Scalar](e *Elements, name string) ([]T, error) {
	fv, err := e.Field(name)
	if err != nil {
		return nil, err
	}
	return ViewValues[T](fv)
}

func (e *Elements) String() string {
	return fmt.Sprintf("%s[%d,%d)", e.shape, e.begin, e.end)
}
