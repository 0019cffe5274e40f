package readers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/utils"
)

// Helper function to create temporary test files
func createTempMeshFile(t *testing.T, name, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

func int32Field(t *testing.T, h *mesh.HybridElements, name string) []int32 {
	t.Helper()
	f, err := h.Field(name)
	require.NoError(t, err)
	vals, err := mesh.Values[int32](f)
	require.NoError(t, err)
	return vals
}

// Two triangles and a quad in a 2 x 1 strip, elements before nodes
const su2Mixed = `% mixed strip
NDIME= 2
NELEM= 3
5 0 1 4 0
5 0 4 3 1
9 1 2 5 4 2
NPOIN= 6
0.0 0.0 0
1.0 0.0 1
2.0 0.0 2
0.0 1.0 3
1.0 1.0 4
2.0 1.0 5
NMARK= 2
MARKER_TAG= wall
MARKER_ELEMS= 2
3 0 1
3 1 2
MARKER_TAG= farfield
MARKER_ELEMS= 1
3 2 5
`

func TestReadSU2(t *testing.T) {
	{ // Mixed cells become one range per run of equal type
		msh, err := ReadSU2(createTempMeshFile(t, "strip.su2", su2Mixed))
		require.NoError(t, err)
		assert.Equal(t, 6, msh.Nodes.Size())
		assert.Equal(t, 3, msh.Cells.Size())
		require.Equal(t, 2, msh.Cells.RangeCount())
		r0, _ := msh.Cells.Range(0)
		r1, _ := msh.Cells.Range(1)
		assert.Equal(t, utils.Triangle, r0.Shape())
		assert.Equal(t, 2, r0.Size())
		assert.Equal(t, utils.Quad, r1.Shape())
		row, err := msh.Cells.NodeConnectivity().Row(2)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 5, 4}, row)
		xyz, err := msh.Nodes.XYZ(5)
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 1, 0}, xyz)
	}
	{ // Boundary markers
		msh, err := ReadSU2(createTempMeshFile(t, "strip.su2", su2Mixed))
		require.NoError(t, err)
		assert.Equal(t, map[int]string{0: "wall", 1: "farfield"}, msh.BoundaryTags)
		assert.Equal(t, 3, msh.Boundary.Size())
		assert.Equal(t, 1, msh.Boundary.RangeCount())
		assert.Equal(t, []int32{0, 0, 1}, int32Field(t, msh.Boundary, mesh.MarkerField))
		assert.Equal(t, []int32{int32(utils.BCWall), int32(utils.BCWall), int32(utils.BCFarfield)},
			int32Field(t, msh.Boundary, mesh.BCField))
	}
	{ // Round trip through the writer
		msh, err := ParseSU2(strings.NewReader(su2Mixed))
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteSU2(&buf, msh, 2))
		back, err := ParseSU2(&buf)
		require.NoError(t, err)
		assert.Equal(t, msh.Nodes.Coordinates(), back.Nodes.Coordinates())
		assert.Equal(t, msh.Cells.RangeCount(), back.Cells.RangeCount())
		for e := 0; e < msh.Cells.Size(); e++ {
			a, _ := msh.Cells.NodeConnectivity().Row(e)
			b, _ := back.Cells.NodeConnectivity().Row(e)
			assert.Equal(t, a, b)
		}
		assert.Equal(t, msh.BoundaryTags, back.BoundaryTags)
		assert.Equal(t, int32Field(t, msh.Boundary, mesh.MarkerField), int32Field(t, back.Boundary, mesh.MarkerField))
	}
	{ // Boundary elements must belong to a tagged marker
		msh, err := ParseSU2(strings.NewReader(su2Mixed))
		require.NoError(t, err)
		delete(msh.BoundaryTags, 1)
		var buf bytes.Buffer
		assert.Error(t, WriteSU2(&buf, msh, 2))
		assert.Zero(t, buf.Len())

		_, err = msh.Cells.AppendElements(utils.Point, 1, []int{0})
		require.NoError(t, err)
		msh.BoundaryTags[1] = "farfield"
		assert.Error(t, WriteSU2(&buf, msh, 2))
	}
	{ // Errors
		// No NDIME, bad dimension, unknown type, node out of range,
		// truncated nodes, missing marker tag
		bad := []string{
			"NPOIN= 1\n0 0\n",
			"NDIME= 4\n",
			"NDIME= 2\nNELEM= 1\n7 0 1 2\nNPOIN= 0\n",
			"NDIME= 2\nNELEM= 1\n5 0 1 9\nNPOIN= 3\n0 0\n1 0\n0 1\n",
			"NDIME= 2\nNPOIN= 2\n0 0\n",
			"NDIME= 2\nNPOIN= 2\n0 0\n1 0\nNMARK= 1\nMARKER_ELEMS= 1\n",
		}
		for _, content := range bad {
			_, err := ParseSU2(strings.NewReader(content))
			assert.Error(t, err, content)
		}
		_, err := ReadSU2(filepath.Join(t.TempDir(), "missing.su2"))
		assert.Error(t, err)
	}
}

const gambitHex = `        CONTROL INFO 2.0.0
** GAMBIT NEUTRAL FILE
Test mesh for unit testing
PROGRAM:                  Gmsh     VERSION:  4.13.1
Sat Jun  7 21:41:35 2025
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         9         2         2         1         3         3
ENDOFSECTION
   NODAL COORDINATES 2.0.0
         1   0.00000000000e+00   0.00000000000e+00   0.00000000000e+00
         2   1.00000000000e+00   0.00000000000e+00   0.00000000000e+00
         3   1.00000000000e+00   1.00000000000e+00   0.00000000000e+00
         4   0.00000000000e+00   1.00000000000e+00   0.00000000000e+00
         5   0.00000000000e+00   0.00000000000e+00   1.00000000000e+00
         6   1.00000000000e+00   0.00000000000e+00   1.00000000000e+00
         7   1.00000000000e+00   1.00000000000e+00   1.00000000000e+00
         8   0.00000000000e+00   1.00000000000e+00   1.00000000000e+00
         9   5.00000000000e-01   5.00000000000e-01   2.00000000000e+00
ENDOFSECTION
   ELEMENTS/CELLS 2.0.0
         1         4         8         1         2         3         4         5         6         7
                   8
         2         7         5         5         6         7         8         9
ENDOFSECTION
       ELEMENT GROUP 2.0.0
GROUP:           1 ELEMENTS:           1 MATERIAL:           2 NFLAGS:           0
fluid
         1
ENDOFSECTION
       ELEMENT GROUP 2.0.0
GROUP:           2 ELEMENTS:           1 MATERIAL:           2 NFLAGS:           1
cap
         0
         2
ENDOFSECTION
 BOUNDARY CONDITIONS 2.0.0
                 wall       1       2       0       6
         1         4         1
         2         7         2
ENDOFSECTION
`

func TestReadGambitNeutral(t *testing.T) {
	{ // Cells, groups and nodes
		msh, err := ReadMeshFile(createTempMeshFile(t, "hex.neu", gambitHex))
		require.NoError(t, err)
		assert.Equal(t, 9, msh.Nodes.Size())
		assert.Equal(t, 2, msh.Cells.Size())
		assert.Equal(t, 2, msh.Cells.RangeCount())
		et, _ := msh.Cells.TypeOf(0)
		assert.Equal(t, utils.Hex, et)
		et, _ = msh.Cells.TypeOf(1)
		assert.Equal(t, utils.Pyramid, et)
		row, _ := msh.Cells.NodeConnectivity().Row(0)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, row)
		assert.Equal(t, []int32{1, 2}, int32Field(t, msh.Cells, mesh.GroupField))
	}
	{ // Face boundary conditions
		msh, err := ParseGambitNeutral(strings.NewReader(gambitHex))
		require.NoError(t, err)
		assert.Equal(t, map[int]string{0: "wall"}, msh.BoundaryTags)
		require.Equal(t, 2, msh.Boundary.Size())
		et, _ := msh.Boundary.TypeOf(0)
		assert.Equal(t, utils.Quad, et)
		row, _ := msh.Boundary.NodeConnectivity().Row(0)
		assert.Equal(t, []int{0, 3, 2, 1}, row) // Hex bottom face
		et, _ = msh.Boundary.TypeOf(1)
		assert.Equal(t, utils.Triangle, et)
		row, _ = msh.Boundary.NodeConnectivity().Row(1)
		assert.Equal(t, []int{4, 5, 8}, row)
		assert.Equal(t, []int32{int32(utils.BCWall), int32(utils.BCWall)}, int32Field(t, msh.Boundary, mesh.BCField))
	}
	{ // Errors
		_, err := ParseGambitNeutral(strings.NewReader("no header\n"))
		assert.Error(t, err)
		_, err = ParseGambitNeutral(strings.NewReader(strings.Replace(gambitHex,
			"         2         7         5", "         2         9         5", 1)))
		assert.Error(t, err)
		_, err = ReadMeshFile("mesh.vtk")
		assert.Error(t, err)
	}
}

// The su2Mixed strip with physical groups, plus a point element that is
// dropped
const gmsh22Mixed = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
3
1 1 "wall"
1 2 "outflow"
2 3 "fluid"
$EndPhysicalNames
$Nodes
6
1 0 0 0
2 1 0 0
3 2 0 0
4 0 1 0
5 1 1 0
6 2 1 0
$EndNodes
$Elements
7
1 15 2 0 1 1
2 1 2 1 1 1 2
3 1 2 1 1 2 3
4 1 2 2 2 3 6
5 3 2 3 1 1 2 5 4
6 2 2 3 1 2 3 6
7 2 2 3 1 2 6 5
$EndElements
$NodeData
1
"pressure"
$EndNodeData
`

const gmsh41Mixed = `$MeshFormat
4.1 0 8
$EndMeshFormat
$PhysicalNames
3
1 1 "wall"
1 2 "outflow"
2 3 "fluid"
$EndPhysicalNames
$Entities
1 2 1 0
1 0 0 0 0
1 0 0 0 2 0 0 1 1 2 1 -3
2 2 0 0 2 1 0 1 2 2 3 -6
1 0 0 0 2 1 0 1 3 0
$EndEntities
$Nodes
1 6 1 6
2 1 0 6
1
2
3
4
5
6
0 0 0
1 0 0
2 0 0
0 1 0
1 1 0
2 1 0
$EndNodes
$Elements
5 7 1 7
0 1 15 1
1 1
1 1 1 2
2 1 2
3 2 3
1 2 1 1
4 3 6
2 1 3 1
5 1 2 5 4
2 1 2 2
6 2 3 6
7 2 6 5
$EndElements
`

func TestReadGmsh(t *testing.T) {
	for _, tc := range []struct {
		name, content string
	}{
		{"v22.msh", gmsh22Mixed},
		{"v41.msh", gmsh41Mixed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			msh, err := ReadMeshFile(createTempMeshFile(t, tc.name, tc.content))
			require.NoError(t, err)
			assert.Equal(t, 6, msh.Nodes.Size())
			xyz, _ := msh.Nodes.XYZ(5)
			assert.Equal(t, []float64{2, 1, 0}, xyz)

			// Quad then a run of two triangles
			assert.Equal(t, 3, msh.Cells.Size())
			require.Equal(t, 2, msh.Cells.RangeCount())
			r0, _ := msh.Cells.Range(0)
			r1, _ := msh.Cells.Range(1)
			assert.Equal(t, utils.Quad, r0.Shape())
			assert.Equal(t, utils.Triangle, r1.Shape())
			assert.Equal(t, 2, r1.Size())
			row, _ := msh.Cells.NodeConnectivity().Row(0)
			assert.Equal(t, []int{0, 1, 4, 3}, row)
			row, _ = msh.Cells.NodeConnectivity().Row(2)
			assert.Equal(t, []int{1, 5, 4}, row)
			assert.Equal(t, []int32{3, 3, 3}, int32Field(t, msh.Cells, mesh.GroupField))

			// Lines are the boundary, the point is dropped
			assert.Equal(t, 3, msh.Boundary.Size())
			assert.Equal(t, map[int]string{1: "wall", 2: "outflow"}, msh.BoundaryTags)
			assert.Equal(t, []int32{1, 1, 2}, int32Field(t, msh.Boundary, mesh.MarkerField))
			assert.Equal(t, []int32{int32(utils.BCWall), int32(utils.BCWall), int32(utils.BCOutflow)},
				int32Field(t, msh.Boundary, mesh.BCField))
			row, _ = msh.Boundary.NodeConnectivity().Row(2)
			assert.Equal(t, []int{2, 5}, row)
		})
	}
	{ // Both versions round trip through SU2
		msh, err := ParseGmsh(strings.NewReader(gmsh41Mixed))
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteSU2(&buf, msh, 2))
		back, err := ParseSU2(&buf)
		require.NoError(t, err)
		assert.Equal(t, msh.Cells.Size(), back.Cells.Size())
		assert.Equal(t, msh.Boundary.Size(), back.Boundary.Size())
	}
	{ // Unnamed physical groups get a generated marker name
		msh, err := ParseGmsh(strings.NewReader(strings.Replace(gmsh22Mixed, `1 2 "outflow"`, `1 9 "other"`, 1)))
		require.NoError(t, err)
		assert.Equal(t, "boundary_2", msh.BoundaryTags[2])
	}
	for _, bad := range []struct {
		name, content string
	}{
		{"binary", strings.Replace(gmsh22Mixed, "2.2 0 8", "2.2 1 8", 1)},
		{"version", strings.Replace(gmsh22Mixed, "2.2 0 8", "3.0 0 8", 1)},
		{"no format", gmsh22Mixed[strings.Index(gmsh22Mixed, "$Nodes"):]},
		{"unknown node", strings.Replace(gmsh22Mixed, "7 2 2 3 1 2 6 5", "7 2 2 3 1 2 6 50", 1)},
		{"short element", strings.Replace(gmsh41Mixed, "5 1 2 5 4", "5 1 2 5", 1)},
		{"truncated", gmsh41Mixed[:strings.Index(gmsh41Mixed, "$EndElements")]},
	} {
		_, err := ParseGmsh(strings.NewReader(bad.content))
		assert.Error(t, err, bad.name)
	}
}
