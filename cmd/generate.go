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
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gomesh/InputParameters"
	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/partition"
)

const exampleParams = `
########################################
Title: "Test Case"
Nx: 16
Ny: 8
XMin: 0
XMax: 2
YMin: 0
YMax: 1
Layout: mixed # Can be quads or triangles
TriangleRows: 2
BCs:
  bottom: wall
  top: wall
  left: inflow
  right: outflow
Partitions: 4
Strategy: graph # Can be block or roundrobin
Output: channel.su2
########################################
`

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a structured hybrid mesh from a YAML parameter file",
	Long: `Generate a structured mesh of quads, triangles or a mixed band layout,
optionally partition it, write it in SU2 format and save it to the store`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			icFile, output string
			data           []byte
			m              *mesh.Mesh
		)
		icFile, _ = cmd.Flags().GetString("inputConditionsFile")
		output, _ = cmd.Flags().GetString("output")
		if len(icFile) == 0 {
			fmt.Printf("Example File:%s\n", exampleParams)
			return fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		}
		if data, err = os.ReadFile(icFile); err != nil {
			return
		}
		mp := &InputParameters.MeshParameters{}
		if err = mp.Parse(data); err != nil {
			return fmt.Errorf("parse %s: %w", icFile, err)
		}
		mp.Print()
		if m, err = RunGenerate(mp); err != nil {
			return
		}
		if len(output) == 0 {
			output = mp.Output
		}
		if len(output) != 0 {
			if err = writeSU2(output, m); err != nil {
				return
			}
			log.Printf("Wrote %s", output)
		}
		if err = saveMesh(m, mp.Title); err != nil {
			return
		}
		m.PrintStatistics()
		return
	},
}

func init() {
	rootCmd.AddCommand(GenerateCmd)
	GenerateCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for mesh parameters like:\n\t- Nx, Ny\n\t- Layout\n\t- BCs")
	GenerateCmd.Flags().StringP("output", "o", "", "SU2 file to write, overrides Output in the parameter file")
}

// RunGenerate builds the mesh described by the parameters, partitions it
// when Partitions is set and assigns global numbers
func RunGenerate(mp *InputParameters.MeshParameters) (m *mesh.Mesh, err error) {
	var (
		strategy partition.Strategy
	)
	s, err := mp.Structured()
	if err != nil {
		return
	}
	if m, err = s.Generate(); err != nil {
		return
	}
	if mp.Partitions > 0 {
		if strategy, err = partition.ParseStrategy(mp.Strategy); err != nil {
			return
		}
		cfg := partition.DefaultConfig(int32(mp.Partitions), strategy)
		cfg.Verbose = true
		if _, err = partition.NewMeshPartitioner(m, cfg).Partition(); err != nil {
			return
		}
	}
	partition.NumberMesh(m)
	return
}
