package partition

import (
	"fmt"
	"log"
	"strings"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/topology"
	"github.com/notargets/gomesh/utils"
)

// Strategy selects how cells are distributed over partitions
type Strategy uint8

const (
	Block      Strategy = iota // Contiguous chunks of cell indices
	RoundRobin                 // Cell e goes to partition e mod nparts
	Graph                      // METIS k-way partition of the cell adjacency graph
)

func (s Strategy) String() string {
	switch s {
	case Block:
		return "block"
	case RoundRobin:
		return "roundrobin"
	case Graph:
		return "graph"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "block":
		return Block, nil
	case "roundrobin", "round-robin":
		return RoundRobin, nil
	case "graph", "metis":
		return Graph, nil
	}
	return Block, fmt.Errorf("%w: unknown partition strategy %q", mesh.ErrInvalidArgument, name)
}

// Config holds configuration for mesh partitioning
type Config struct {
	NumPartitions    int32
	Strategy         Strategy
	ImbalanceFactor  float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights   bool
	UseVertexWeights bool
	Objective        string // "cut" or "vol"
	Verbose          bool
}

// DefaultConfig returns default partitioning configuration
func DefaultConfig(nparts int32, strategy Strategy) *Config {
	return &Config{
		NumPartitions:    nparts,
		Strategy:         strategy,
		ImbalanceFactor:  1.05,
		UseEdgeWeights:   true,
		UseVertexWeights: true,
		Objective:        "vol", // minimize communication volume
	}
}

// MeshPartitioner assigns every cell of a mesh to a partition, writing the
// result into the cells' partition array
type MeshPartitioner struct {
	mesh   *mesh.Mesh
	config *Config

	// Cost models
	computeCostModel func(elemType utils.ElementType) int32
	commCostModel    func(sharedNodes int) int32
}

// NewMeshPartitioner creates a partitioner for the given mesh
func NewMeshPartitioner(m *mesh.Mesh, config *Config) *MeshPartitioner {
	mp := &MeshPartitioner{
		mesh:   m,
		config: config,
	}

	// Relative computational expense, proportional to the vertex count
	mp.computeCostModel = func(elemType utils.ElementType) int32 {
		if n := elemType.GetNumNodes(); n > 0 {
			return int32(n)
		}
		return 1
	}

	// Cost proportional to the number of shared face vertices
	mp.commCostModel = func(sharedNodes int) int32 {
		return int32(sharedNodes)
	}

	return mp
}

// Partition fills the cells' partition array, one owner per cell, and
// returns the quality statistics of the result
func Partition(m *mesh.Mesh, nparts int, strategy Strategy) (*Statistics, error) {
	return NewMeshPartitioner(m, DefaultConfig(int32(nparts), strategy)).Partition()
}

// Partition performs the mesh partitioning
func (mp *MeshPartitioner) Partition() (stats *Statistics, err error) {
	var (
		cells  = mp.mesh.Cells
		ne     = cells.Size()
		nparts = int(mp.config.NumPartitions)
		part   = cells.Partition()
	)
	if nparts < 1 {
		return nil, fmt.Errorf("%w: %d partitions", mesh.ErrInvalidArgument, nparts)
	}
	if mp.config.Verbose {
		log.Printf("Partitioning mesh with %d elements into %d parts (%s)", ne, nparts, mp.config.Strategy)
	}

	switch mp.config.Strategy {
	case Block:
		pm := utils.NewPartitionMap(nparts, ne)
		for np := 0; np < nparts; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				part[k] = int32(np)
			}
		}
	case RoundRobin:
		for k := 0; k < ne; k++ {
			part[k] = int32(k % nparts)
		}
	case Graph:
		if err = mp.partitionGraph(); err != nil {
			return
		}
	default:
		return nil, fmt.Errorf("%w: strategy %v", mesh.ErrInvalidArgument, mp.config.Strategy)
	}

	if stats, err = mp.Analyze(); err != nil {
		return
	}
	if mp.config.Verbose {
		stats.Log()
	}
	return
}

// neighbours returns the cell adjacency, building it when the mesh has none
func (mp *MeshPartitioner) neighbours() (mesh.ConnectivityTable, error) {
	conn := mp.mesh.Cells.CellConnectivity()
	if conn.Rows() == 0 && mp.mesh.Cells.Size() > 0 {
		if err := topology.CellNeighbours(mp.mesh); err != nil {
			return conn, err
		}
	}
	return conn, nil
}

func (mp *MeshPartitioner) partitionGraph() (err error) {
	var (
		part = mp.mesh.Cells.Partition()
	)
	if mp.config.NumPartitions == 1 || len(part) == 0 {
		for k := range part {
			part[k] = 0
		}
		return
	}

	// Build METIS graph
	xadj, adjncy, vwgt, adjwgt, err := mp.buildMetisGraph()
	if err != nil {
		return
	}

	// Set METIS options
	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return fmt.Errorf("failed to set METIS options: %w", err)
	}

	// Set objective function
	if mp.config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}

	// Set allowed imbalance
	ubvec := []float32{mp.config.ImbalanceFactor}

	// Handle case where weights might be nil
	var vwgtPtr, adjwgtPtr []int32
	if mp.config.UseVertexWeights {
		vwgtPtr = vwgt
	}
	if mp.config.UseEdgeWeights {
		adjwgtPtr = adjwgt
	}

	// Perform partitioning
	metisPart, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgtPtr, adjwgtPtr,
		mp.config.NumPartitions, nil, ubvec, opts,
	)
	if err != nil {
		return fmt.Errorf("METIS partitioning failed: %w", err)
	}
	if mp.config.Verbose {
		log.Printf("  METIS objective value: %d", objval)
	}
	copy(part, metisPart)
	return
}

// buildMetisGraph converts the cell adjacency to METIS CSR format. Edge
// weights count the nodes two neighbouring cells share.
func (mp *MeshPartitioner) buildMetisGraph() (xadj, adjncy, vwgt, adjwgt []int32, err error) {
	var (
		cells = mp.mesh.Cells
		ne    = cells.Size()
		conn  mesh.ConnectivityTable
	)
	if conn, err = mp.neighbours(); err != nil {
		return
	}

	// Build vertex weights (computational cost per element)
	vwgt = make([]int32, ne)
	for _, r := range cells.Ranges() {
		cost := mp.computeCostModel(r.Shape())
		for k := r.Begin(); k < r.End(); k++ {
			vwgt[k] = cost
		}
	}

	// Build adjacency and edge weights
	xadj = make([]int32, ne+1)
	for elem := 0; elem < ne; elem++ {
		var row []int
		if row, err = conn.Row(elem); err != nil {
			return
		}
		for _, neighbor := range row {
			if neighbor < 0 || neighbor == elem {
				continue
			}
			adjncy = append(adjncy, int32(neighbor))
			var shared int
			if shared, err = mp.sharedNodes(elem, neighbor); err != nil {
				return
			}
			adjwgt = append(adjwgt, mp.commCostModel(shared))
		}
		xadj[elem+1] = int32(len(adjncy))
	}
	return
}

func (mp *MeshPartitioner) sharedNodes(a, b int) (shared int, err error) {
	var (
		conn   = mp.mesh.Cells.NodeConnectivity()
		ra, rb []int
	)
	if ra, err = conn.Row(a); err != nil {
		return
	}
	if rb, err = conn.Row(b); err != nil {
		return
	}
	for _, va := range ra {
		for _, vb := range rb {
			if va == vb {
				shared++
				break
			}
		}
	}
	return
}

// Elements returns all cells owned by a partition, in index order
func (mp *MeshPartitioner) Elements(partID int32) (elements []int) {
	for elem, p := range mp.mesh.Cells.Partition() {
		if p == partID {
			elements = append(elements, elem)
		}
	}
	return
}
