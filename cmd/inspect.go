/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/topology"
	"github.com/notargets/gomesh/utils"
)

// InspectCmd represents the inspect command
var InspectCmd = &cobra.Command{
	Use:   "inspect FILE|ID",
	Short: "Print statistics and derived topology of a mesh",
	Long: `Inspect reads a .su2 or .neu mesh file, or loads a stored snapshot by id,
checks it and prints its statistics. Derived topology is built on request.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			m *mesh.Mesh
		)
		edges, _ := cmd.Flags().GetBool("edges")
		neighbours, _ := cmd.Flags().GetBool("neighbours")
		centroids, _ := cmd.Flags().GetBool("centroids")
		if m, err = loadMesh(args[0]); err != nil {
			return
		}
		if err = m.Check(); err != nil {
			return
		}
		if err = RunInspect(m, edges, neighbours, centroids, parallelDegree()); err != nil {
			return
		}
		m.PrintStatistics()
		fmt.Println(utils.GetMemUsage())
		return
	},
}

func init() {
	rootCmd.AddCommand(InspectCmd)
	InspectCmd.Flags().Bool("edges", false, "build the edges and report boundary edges")
	InspectCmd.Flags().Bool("neighbours", false, "build cell to cell adjacency")
	InspectCmd.Flags().Bool("centroids", false, "compute cell centroids and report their extent")
}

// RunInspect builds the requested derived topology on m
func RunInspect(m *mesh.Mesh, edges, neighbours, centroids bool, parallelDegree int) (err error) {
	if edges && m.Edges.Size() == 0 {
		if err = topology.BuildEdges(m); err != nil {
			return
		}
		var bEdges []int
		if bEdges, err = topology.BoundaryEdges(m); err != nil {
			return
		}
		fmt.Printf("Edges: %d, on the boundary: %d\n", m.Edges.Size(), len(bEdges))
	}
	if neighbours && m.Cells.CellConnectivity().Rows() == 0 {
		if err = topology.CellNeighbours(m); err != nil {
			return
		}
		conn := m.Cells.CellConnectivity()
		var interior int
		for e := 0; e < conn.Rows(); e++ {
			row, _ := conn.Row(e)
			for _, nb := range row {
				if nb != topology.NoNeighbour {
					interior++
				}
			}
		}
		fmt.Printf("Cell adjacencies: %d\n", interior/2)
	}
	if centroids {
		var c []float64
		if c, err = topology.ComputeCentroids(m, parallelDegree); err != nil {
			return
		}
		if len(c) == 0 {
			return
		}
		for d, name := range []string{"X", "Y", "Z"} {
			coord := make([]float64, len(c)/3)
			for k := range coord {
				coord[k] = c[3*k+d]
			}
			fmt.Printf("Centroid %s range: [%8.5f, %8.5f]\n", name, floats.Min(coord), floats.Max(coord))
		}
	}
	return
}
