package mesh

import (
	"fmt"

	"github.com/notargets/gomesh/types"
)

// DataType is the numeric type of the values stored in a Field
type DataType uint8

const (
	Int32 DataType = iota
	Int64
	Float32
	Float64
)

func (d DataType) String() string {
	switch d {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return "invalid"
}

// ParseDataType is the inverse of DataType.String
func ParseDataType(s string) (DataType, error) {
	for _, d := range []DataType{Int32, Int64, Float32, Float64} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: data type %q", ErrInvalidArgument, s)
}

// Scalar is the set of element types a Field can store
type Scalar interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// Field is a named array holding Width values per entry. Its length always
// tracks the entity count of the container it is attached to; the container
// is the only thing that grows it.
type Field interface {
	Name() string
	Width() int
	DataType() DataType
	// Len is the number of entries, not the number of scalar values
	Len() int
	grow(n int)
}

// Array is the concrete Field for scalar type T
type Array[T Scalar] struct {
	name  string
	width int
	dtype DataType
	fill  T
	data  []T
}

func newArray[T Scalar](name string, width int, dtype DataType, fill T, n int) *Array[T] {
	a := &Array[T]{name: name, width: width, dtype: dtype, fill: fill}
	a.grow(n)
	return a
}

// newField allocates an n entry field of the requested data type
func newField(name string, width int, dtype DataType, n int) (Field, error) {
	switch dtype {
	case Int32:
		return newArray[int32](name, width, dtype, 0, n), nil
	case Int64:
		return newArray[int64](name, width, dtype, 0, n), nil
	case Float32:
		return newArray[float32](name, width, dtype, 0, n), nil
	case Float64:
		return newArray[float64](name, width, dtype, 0, n), nil
	}
	return nil, fmt.Errorf("%w: data type %d", ErrInvalidArgument, dtype)
}

func (a *Array[T]) Name() string       { return a.name }
func (a *Array[T]) Width() int         { return a.width }
func (a *Array[T]) DataType() DataType { return a.dtype }
func (a *Array[T]) Len() int           { return len(a.data) / a.width }

// grow appends n default entries, preserving the existing prefix
func (a *Array[T]) grow(n int) {
	a.data = types.GrowSlice(a.data, n*a.width, a.fill)
}

// Values exposes the flat storage, Width values per entry. Writes are
// visible to the container; the slice header is only valid until the next
// structural append.
func (a *Array[T]) Values() []T { return a.data }

// Row returns the Width values of entry i
func (a *Array[T]) Row(i int) ([]T, error) {
	if i < 0 || i >= a.Len() {
		return nil, fmt.Errorf("%w: entry %d of field %q with %d entries", ErrIndexOutOfRange, i, a.name, a.Len())
	}
	return a.data[i*a.width : (i+1)*a.width], nil
}

// Slice returns the values of entries [begin, end)
func (a *Array[T]) Slice(begin, end int) ([]T, error) {
	if begin < 0 || end < begin || end > a.Len() {
		return nil, fmt.Errorf("%w: [%d,%d) of field %q with %d entries", ErrIndexOutOfRange, begin, end, a.name, a.Len())
	}
	return a.data[begin*a.width : end*a.width], nil
}

// Values returns the typed storage of a field
func Values[T Scalar](f Field) ([]T, error) {
	a, ok := f.(*Array[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: field %q is %s, not %T", ErrTypeMismatch, f.Name(), f.DataType(), zero)
	}
	return a.data, nil
}

// AsArray returns the typed Array behind a field
func AsArray[T Scalar](f Field) (*Array[T], error) {
	a, ok := f.(*Array[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: field %q is %s, not %T", ErrTypeMismatch, f.Name(), f.DataType(), zero)
	}
	return a, nil
}

// fieldSet is a named collection of fields sharing one entry count. Grow is
// the only way entries are added, and it grows every member by the same
// amount, so all members always agree on Len.
type fieldSet struct {
	size   int
	fields map[string]Field
	order  []string
}

func newFieldSet() fieldSet {
	return fieldSet{fields: make(map[string]Field)}
}

func (fs *fieldSet) add(name string, width int, dtype DataType) (Field, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty field name", ErrInvalidArgument)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: field %q width %d", ErrInvalidArgument, name, width)
	}
	if _, exists := fs.fields[name]; exists {
		return nil, fmt.Errorf("%w: field %q", ErrDuplicateName, name)
	}
	f, err := newField(name, width, dtype, fs.size)
	if err != nil {
		return nil, err
	}
	fs.fields[name] = f
	fs.order = append(fs.order, name)
	return f, nil
}

// attach registers a prebuilt field, used for the metadata arrays
func (fs *fieldSet) attach(f Field) {
	fs.fields[f.Name()] = f
	fs.order = append(fs.order, f.Name())
}

func (fs *fieldSet) grow(n int) {
	for _, name := range fs.order {
		fs.fields[name].grow(n)
	}
	fs.size += n
}

func (fs *fieldSet) get(name string) (Field, error) {
	f, ok := fs.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// check verifies every member against the shared size
func (fs *fieldSet) check() error {
	for _, name := range fs.order {
		if l := fs.fields[name].Len(); l != fs.size {
			return fmt.Errorf("field %q has %d entries, expected %d", name, l, fs.size)
		}
	}
	return nil
}
