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
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/partition"
)

// PartitionCmd represents the partition command
var PartitionCmd = &cobra.Command{
	Use:   "partition FILE|ID",
	Short: "Partition the cells of a mesh",
	Long: `Partition assigns an owning partition to every cell, numbers cells and
nodes globally and optionally writes one SU2 subdomain file per partition`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			m        *mesh.Mesh
			strategy partition.Strategy
		)
		nparts, _ := cmd.Flags().GetInt32("parts")
		strategyName, _ := cmd.Flags().GetString("strategy")
		imbalance, _ := cmd.Flags().GetFloat32("imbalance")
		dir, _ := cmd.Flags().GetString("subdomains")
		if strategy, err = partition.ParseStrategy(strategyName); err != nil {
			return
		}
		if m, err = loadMesh(args[0]); err != nil {
			return
		}
		cfg := partition.DefaultConfig(nparts, strategy)
		cfg.ImbalanceFactor = imbalance
		cfg.Verbose = true
		if _, err = RunPartition(m, cfg, dir); err != nil {
			return
		}
		return saveMesh(m, filepath.Base(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(PartitionCmd)
	PartitionCmd.Flags().Int32P("parts", "n", 2, "number of partitions")
	PartitionCmd.Flags().StringP("strategy", "s", "graph", "partitioning strategy: block, roundrobin or graph")
	PartitionCmd.Flags().Float32("imbalance", 1.05, "allowed load imbalance for the graph strategy")
	PartitionCmd.Flags().String("subdomains", "", "directory for the per partition SU2 files")
}

// RunPartition partitions and numbers m, then writes the subdomains to dir
// when it is set. Returns the written file names.
func RunPartition(m *mesh.Mesh, cfg *partition.Config, dir string) (files []string, err error) {
	var (
		sub *mesh.Mesh
		mp  = partition.NewMeshPartitioner(m, cfg)
	)
	if _, err = mp.Partition(); err != nil {
		return
	}
	partition.NumberMesh(m)
	if len(dir) == 0 {
		return
	}
	for p := int32(0); p < cfg.NumPartitions; p++ {
		if len(mp.Elements(p)) == 0 {
			log.Printf("Partition %d owns no cells, skipping", p)
			continue
		}
		if sub, err = partition.ExtractSubdomain(m, p); err != nil {
			return
		}
		name := filepath.Join(dir, fmt.Sprintf("part_%d.su2", p))
		if err = writeSU2(name, sub); err != nil {
			return
		}
		log.Printf("Wrote %s: %d cells, %d nodes", name, sub.Cells.Size(), sub.Nodes.Size())
		files = append(files, name)
	}
	return
}
