package store

import (
	"encoding/json"
	"fmt"

	"github.com/notargets/gomesh/mesh"
)

func marshalField(f mesh.Field) ([]byte, error) {
	switch f.DataType() {
	case mesh.Int32:
		return marshalValues[int32](f)
	case mesh.Int64:
		return marshalValues[int64](f)
	case mesh.Float32:
		return marshalValues[float32](f)
	case mesh.Float64:
		return marshalValues[float64](f)
	}
	return nil, fmt.Errorf("%w: data type %v", mesh.ErrTypeMismatch, f.DataType())
}

func marshalValues[T mesh.Scalar](f mesh.Field) ([]byte, error) {
	vals, err := mesh.Values[T](f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(vals)
}

// unmarshalField fills an existing field with stored values, which must
// cover it exactly
func unmarshalField(f mesh.Field, data []byte) error {
	switch f.DataType() {
	case mesh.Int32:
		return unmarshalValues[int32](f, data)
	case mesh.Int64:
		return unmarshalValues[int64](f, data)
	case mesh.Float32:
		return unmarshalValues[float32](f, data)
	case mesh.Float64:
		return unmarshalValues[float64](f, data)
	}
	return fmt.Errorf("%w: data type %v", mesh.ErrTypeMismatch, f.DataType())
}

func unmarshalValues[T mesh.Scalar](f mesh.Field, data []byte) error {
	var stored []T
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	vals, err := mesh.Values[T](f)
	if err != nil {
		return err
	}
	if len(stored) != len(vals) {
		return fmt.Errorf("%w: stored %d values, field holds %d", mesh.ErrShapeMismatch, len(stored), len(vals))
	}
	copy(vals, stored)
	return nil
}
