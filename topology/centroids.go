package topology

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// CentroidsField holds the vertex average of each cell, three values per cell
const CentroidsField = "centroids"

// ComputeCentroids attaches the centroids field to m.Cells, or reuses it if
// present, and fills it with the average of each cell's node coordinates.
// The cells are split into ParallelDegree contiguous chunks, one goroutine
// per chunk. Each goroutine writes only its own rows.
func ComputeCentroids(m *mesh.Mesh, ParallelDegree int) (centroids []float64, err error) {
	var (
		f     mesh.Field
		cells = m.Cells
		xyz   = m.Nodes.Coordinates()
	)
	if f, err = cells.Field(CentroidsField); err != nil {
		if f, err = cells.AttachField(CentroidsField, 3, mesh.Float64); err != nil {
			return
		}
	}
	if f.Width() != 3 {
		return nil, fmt.Errorf("%w: %s has width %d", mesh.ErrShapeMismatch, CentroidsField, f.Width())
	}
	if centroids, err = mesh.Values[float64](f); err != nil {
		return
	}
	if cells.Size() == 0 {
		return
	}

	var (
		pm   = utils.NewPartitionMap(ParallelDegree, cells.Size())
		NP   = pm.ParallelDegree
		wg   = sync.WaitGroup{}
		errs = make([]error, NP)
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			conn := cells.NodeConnectivity()
			for k := kMin; k < kMax; k++ {
				row, err := conn.Row(k)
				if err != nil {
					errs[np] = err
					return
				}
				c := centroids[3*k : 3*k+3]
				c[0], c[1], c[2] = 0, 0, 0
				for _, v := range row {
					if v < 0 || 3*v+3 > len(xyz) {
						errs[np] = fmt.Errorf("%w: cell %d references node %d", mesh.ErrIndexOutOfRange, k, v)
						return
					}
					floats.Add(c, xyz[3*v:3*v+3])
				}
				if len(row) > 0 {
					floats.Scale(1/float64(len(row)), c)
				}
			}
		}(np)
	}
	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return
		}
	}
	return centroids, nil
}
