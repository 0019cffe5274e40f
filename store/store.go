// Package store keeps mesh snapshots in a SQLite database. A snapshot holds
// the nodes, the element ranges of every container with their node
// connectivity, and every attached field, metadata arrays included. Derived
// edge and cell connectivity is not stored and is rebuilt after a load.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

//go:embed schema.sql
var schemaSQL string

// createdLayout is fixed width, so created_at sorts as text in time order
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no snapshot has the requested id
var ErrNotFound = errors.New("mesh not found")

// Container names used as keys in the ranges and fields tables
const (
	nodesContainer    = "nodes"
	cellsContainer    = "cells"
	edgesContainer    = "edges"
	boundaryContainer = "boundary"
)

// Summary describes one stored snapshot
type Summary struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	NumNodes  int
	NumCells  int
}

// Store is a SQLite backed collection of mesh snapshots
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the database at path, creating its directory and
// schema as needed
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) containers(m *mesh.Mesh) map[string]*mesh.HybridElements {
	return map[string]*mesh.HybridElements{
		cellsContainer:    m.Cells,
		edgesContainer:    m.Edges,
		boundaryContainer: m.Boundary,
	}
}

// Save writes a snapshot of m under m.ID, replacing any earlier snapshot
// with the same id
func (s *Store) Save(m *mesh.Mesh, name string) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	id := m.ID.String()
	if err = deleteSnapshot(tx, id); err != nil {
		return
	}
	if _, err = tx.Exec(`INSERT INTO meshes (mesh_id, name, created_at, num_nodes, num_cells) VALUES (?, ?, ?, ?, ?)`,
		id, name, s.now().UTC().Format(createdLayout), m.Nodes.Size(), m.Cells.Size()); err != nil {
		return fmt.Errorf("insert mesh: %w", err)
	}
	for marker, tag := range m.BoundaryTags {
		if _, err = tx.Exec(`INSERT INTO boundary_tags (mesh_id, marker, name) VALUES (?, ?, ?)`,
			id, marker, tag); err != nil {
			return fmt.Errorf("insert boundary tag: %w", err)
		}
	}
	if err = saveFields(tx, id, nodesContainer, m.Nodes.FieldNames(), m.Nodes.Field); err != nil {
		return
	}
	for container, h := range s.containers(m) {
		for _, r := range h.Ranges() {
			var (
				nodes = make([]int, 0, r.Size()*r.NbNodes())
				conn  = r.NodeConnectivity()
				row   []int
				data  []byte
			)
			for i := 0; i < r.Size(); i++ {
				if row, err = conn.Row(i); err != nil {
					return
				}
				nodes = append(nodes, row...)
			}
			if data, err = json.Marshal(nodes); err != nil {
				return
			}
			if _, err = tx.Exec(`INSERT INTO ranges (mesh_id, container, range_idx, element_type, size, nodes) VALUES (?, ?, ?, ?, ?, ?)`,
				id, container, r.TypeIndex(), r.Name(), r.Size(), string(data)); err != nil {
				return fmt.Errorf("insert range: %w", err)
			}
		}
		if err = saveFields(tx, id, container, h.FieldNames(), h.Field); err != nil {
			return
		}
	}
	return tx.Commit()
}

func saveFields(tx *sql.Tx, id, container string, names []string, lookup func(string) (mesh.Field, error)) (err error) {
	for _, name := range names {
		var (
			f    mesh.Field
			data []byte
		)
		if f, err = lookup(name); err != nil {
			return
		}
		if data, err = marshalField(f); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if _, err = tx.Exec(`INSERT INTO fields (mesh_id, container, name, data_type, width, data) VALUES (?, ?, ?, ?, ?, ?)`,
			id, container, name, f.DataType().String(), f.Width(), string(data)); err != nil {
			return fmt.Errorf("insert field: %w", err)
		}
	}
	return
}

// Load rebuilds the snapshot stored under id. Ranges are appended in their
// original order, so element indices, range boundaries and field rows are
// identical to those of the saved mesh.
func (s *Store) Load(id uuid.UUID) (m *mesh.Mesh, err error) {
	var (
		key      = id.String()
		numNodes int
	)
	err = s.db.QueryRow(`SELECT num_nodes FROM meshes WHERE mesh_id = ?`, key).Scan(&numNodes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	m = mesh.NewMesh()
	m.ID = id
	if _, err = m.Nodes.Add(numNodes, nil); err != nil {
		return nil, err
	}
	if err = s.loadTags(m, key); err != nil {
		return nil, err
	}
	for container, h := range s.containers(m) {
		if err = s.loadRanges(h, key, container); err != nil {
			return nil, err
		}
	}
	if err = s.loadFields(m, key); err != nil {
		return nil, err
	}
	return m, m.Check()
}

func (s *Store) loadTags(m *mesh.Mesh, key string) error {
	rows, err := s.db.Query(`SELECT marker, name FROM boundary_tags WHERE mesh_id = ?`, key)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			marker int
			name   string
		)
		if err = rows.Scan(&marker, &name); err != nil {
			return err
		}
		m.BoundaryTags[marker] = name
	}
	return rows.Err()
}

func (s *Store) loadRanges(h *mesh.HybridElements, key, container string) error {
	rows, err := s.db.Query(`SELECT element_type, size, nodes FROM ranges WHERE mesh_id = ? AND container = ? ORDER BY range_idx`,
		key, container)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typeName string
			size     int
			data     string
			nodes    []int
		)
		if err = rows.Scan(&typeName, &size, &data); err != nil {
			return err
		}
		et, ok := utils.ParseElementType(typeName)
		if !ok {
			return fmt.Errorf("%s: unknown element type %q", container, typeName)
		}
		if err = json.Unmarshal([]byte(data), &nodes); err != nil {
			return fmt.Errorf("%s: %w", container, err)
		}
		if _, err = h.AppendElements(et, size, nodes); err != nil {
			return fmt.Errorf("%s: %w", container, err)
		}
	}
	return rows.Err()
}

func (s *Store) loadFields(m *mesh.Mesh, key string) error {
	rows, err := s.db.Query(`SELECT container, name, data_type, width, data FROM fields WHERE mesh_id = ?`, key)
	if err != nil {
		return err
	}
	defer rows.Close()
	containers := s.containers(m)
	for rows.Next() {
		var (
			container, name, typeName, data string
			width                           int
			dtype                           mesh.DataType
			f                               mesh.Field
		)
		if err = rows.Scan(&container, &name, &typeName, &width, &data); err != nil {
			return err
		}
		if dtype, err = mesh.ParseDataType(typeName); err != nil {
			return err
		}
		if container == nodesContainer {
			if f, err = m.Nodes.Field(name); err != nil {
				f, err = m.Nodes.AttachField(name, width, dtype)
			}
		} else if h, ok := containers[container]; ok {
			if f, err = h.Field(name); err != nil {
				f, err = h.AttachField(name, width, dtype)
			}
		} else {
			err = fmt.Errorf("unknown container %q", container)
		}
		if err != nil {
			return err
		}
		if err = unmarshalField(f, []byte(data)); err != nil {
			return fmt.Errorf("%s.%s: %w", container, name, err)
		}
	}
	return rows.Err()
}

// List returns a summary of every stored snapshot, oldest first
func (s *Store) List() (summaries []Summary, err error) {
	rows, err := s.db.Query(`SELECT mesh_id, name, created_at, num_nodes, num_cells FROM meshes ORDER BY created_at, mesh_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sum         Summary
			id, created string
		)
		if err = rows.Scan(&id, &sum.Name, &created, &sum.NumNodes, &sum.NumCells); err != nil {
			return nil, err
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(createdLayout, created); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Delete removes a snapshot
func (s *Store) Delete(id uuid.UUID) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.Exec(`DELETE FROM meshes WHERE mesh_id = ?`, id.String()); err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err = deleteSnapshot(tx, id.String()); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func deleteSnapshot(tx *sql.Tx, id string) error {
	for _, table := range []string{"meshes", "ranges", "fields", "boundary_tags"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE mesh_id = ?`, id); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}
