package partition

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/notargets/gomesh/utils"
)

// PartitionStats holds statistics for a single partition
type PartitionStats struct {
	ID           int
	NumElements  int
	ComputeLoad  int64
	ElementTypes map[utils.ElementType]int
	NumNeighbors map[int]int // neighbor partition -> shared faces
}

// Statistics summarizes the quality of a partitioning
type Statistics struct {
	Parts      []PartitionStats
	CutFaces   int
	CommVolume int64
	Imbalance  float64 // max load / average load - 1
	MinLoad    int64
	MaxLoad    int64
	AvgLoad    float64
}

// Analyze computes partition quality metrics from the cells' partition array
// and face adjacency
func (mp *MeshPartitioner) Analyze() (stats *Statistics, err error) {
	var (
		cells  = mp.mesh.Cells
		part   = cells.Partition()
		nparts = int(mp.config.NumPartitions)
	)
	stats = &Statistics{Parts: make([]PartitionStats, nparts)}
	for i := range stats.Parts {
		stats.Parts[i].ID = i
		stats.Parts[i].ElementTypes = make(map[utils.ElementType]int)
		stats.Parts[i].NumNeighbors = make(map[int]int)
	}

	// Gather element statistics
	for _, r := range cells.Ranges() {
		cost := mp.computeCostModel(r.Shape())
		for elem := r.Begin(); elem < r.End(); elem++ {
			p := int(part[elem])
			if p < 0 || p >= nparts {
				return nil, fmt.Errorf("cell %d is assigned to partition %d of %d", elem, p, nparts)
			}
			ps := &stats.Parts[p]
			ps.NumElements++
			ps.ElementTypes[r.Shape()]++
			ps.ComputeLoad += int64(cost)
		}
	}

	// Analyze communication
	conn, err := mp.neighbours()
	if err != nil {
		return nil, err
	}
	for elem := 0; elem < conn.Rows(); elem++ {
		row, _ := conn.Row(elem)
		for _, neighbor := range row {
			// Count each face once
			if neighbor <= elem {
				continue
			}
			elemPart, neighborPart := int(part[elem]), int(part[neighbor])
			if elemPart == neighborPart {
				continue
			}
			stats.CutFaces++
			shared, err := mp.sharedNodes(elem, neighbor)
			if err != nil {
				return nil, err
			}
			stats.CommVolume += int64(mp.commCostModel(shared))
			stats.Parts[elemPart].NumNeighbors[neighborPart]++
			stats.Parts[neighborPart].NumNeighbors[elemPart]++
		}
	}

	// Compute load imbalance
	stats.MinLoad = math.MaxInt64
	for _, ps := range stats.Parts {
		stats.AvgLoad += float64(ps.ComputeLoad)
		stats.MaxLoad = max(stats.MaxLoad, ps.ComputeLoad)
		stats.MinLoad = min(stats.MinLoad, ps.ComputeLoad)
	}
	stats.AvgLoad /= float64(nparts)
	if stats.AvgLoad > 0 {
		stats.Imbalance = float64(stats.MaxLoad)/stats.AvgLoad - 1.0
	}
	return
}

// Log reports the statistics through the standard logger
func (s *Statistics) Log() {
	log.Printf("Partition Analysis:")
	log.Printf("  Cut faces: %d", s.CutFaces)
	log.Printf("  Communication volume: %d", s.CommVolume)
	log.Printf("  Load imbalance: %.2f%%", s.Imbalance*100)
	log.Printf("  Load range: [%d, %d], avg: %.1f", s.MinLoad, s.MaxLoad, s.AvgLoad)

	log.Printf("Per-partition statistics:")
	for _, ps := range s.Parts {
		neighbors := make([]int, 0, len(ps.NumNeighbors))
		for n := range ps.NumNeighbors {
			neighbors = append(neighbors, n)
		}
		sort.Ints(neighbors)
		log.Printf("  Partition %d:", ps.ID)
		log.Printf("    Elements: %d", ps.NumElements)
		log.Printf("    Compute load: %d", ps.ComputeLoad)
		log.Printf("    Element types: %v", ps.ElementTypes)
		log.Printf("    Neighbors: %v", neighbors)
	}
}
