package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		mustKey := func(verts [2]int) EdgeKey {
			en, err := NewEdgeKey(verts)
			require.NoError(t, err)
			return en
		}
		en := mustKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = mustKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)

		en = mustKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = mustKey([2]int{100, 100001})
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), en)
		assert.Equal(t, [2]int{100, 100001}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = mustKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))

		_, err := NewEdgeKey([2]int{-1, 3})
		assert.Error(t, err)
		_, err = NewEdgeKey([2]int{1 << 32, 3})
		assert.Error(t, err)
	}
	{ // Growing slices keeps the prefix and fills the tail
		s := []int32{1, 2, 3}
		g := GrowSlice(s, 2, -1)
		assert.Equal(t, []int32{1, 2, 3, -1, -1}, g)
		assert.Equal(t, []int32{1, 2, 3}, s)

		g = GrowSlice(g, 0, 7)
		assert.Len(t, g, 5)

		var empty []float64
		f := GrowSlice(empty, 3, 0.5)
		assert.Equal(t, []float64{0.5, 0.5, 0.5}, f)

		// Spare capacity is reused
		s = make([]int32, 2, 10)
		g = GrowSlice(s, 3, 9)
		assert.Equal(t, 10, cap(g))
		assert.Equal(t, []int32{0, 0, 9, 9, 9}, g)
	}
}
