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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/notargets/gomesh/store"
)

// ListCmd represents the list command
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the mesh snapshots in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			s         *store.Store
			summaries []store.Summary
		)
		if s, err = openStore(); err != nil {
			return
		}
		defer s.Close()
		if del, _ := cmd.Flags().GetString("delete"); len(del) != 0 {
			var id uuid.UUID
			if id, err = uuid.Parse(del); err != nil {
				return
			}
			if err = s.Delete(id); err != nil {
				return
			}
			fmt.Printf("Deleted %s\n", id)
		}
		if summaries, err = s.List(); err != nil {
			return
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-36s  %-20s  %8s  %8s  %s\n", "ID", "Name", "Nodes", "Cells", "Created")
		for _, sm := range summaries {
			fmt.Fprintf(out, "%-36s  %-20s  %8d  %8d  %s\n",
				sm.ID, sm.Name, sm.NumNodes, sm.NumCells, sm.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(ListCmd)
	ListCmd.Flags().String("delete", "", "delete the snapshot with this id before listing")
}
