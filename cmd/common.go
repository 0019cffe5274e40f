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
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/mesh/readers"
	"github.com/notargets/gomesh/store"
)

// loadMesh reads a mesh file, or loads a snapshot from the store when the
// argument is a mesh id
func loadMesh(arg string) (m *mesh.Mesh, err error) {
	if id, perr := uuid.Parse(arg); perr == nil {
		var s *store.Store
		if s, err = openStore(); err != nil {
			return
		}
		defer s.Close()
		return s.Load(id)
	}
	if m, err = readers.ReadMeshFile(arg); err != nil {
		return nil, fmt.Errorf("read %s: %w", arg, err)
	}
	return
}

func openStore() (*store.Store, error) {
	dbPath := viper.GetString("store")
	if dbPath == "" {
		return nil, fmt.Errorf("no store configured, use --store or set store in the config file")
	}
	return store.Open(dbPath)
}

// saveMesh stores a snapshot when a store is configured
func saveMesh(m *mesh.Mesh, name string) (err error) {
	if viper.GetString("store") == "" {
		return
	}
	var s *store.Store
	if s, err = openStore(); err != nil {
		return
	}
	defer s.Close()
	if err = s.Save(m, name); err != nil {
		return
	}
	log.Printf("Saved mesh %s as %q in %s", m.ID, name, s.Path())
	return
}

// meshDimension is the largest dimension of the cells, at least two
func meshDimension(m *mesh.Mesh) (dim int) {
	dim = 2
	for _, r := range m.Cells.Ranges() {
		dim = max(dim, r.Shape().GetDimension())
	}
	return
}

func writeSU2(path string, m *mesh.Mesh) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return
		}
	}
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	if err = readers.WriteSU2(f, m, meshDimension(m)); err != nil {
		f.Close()
		return
	}
	return f.Close()
}
