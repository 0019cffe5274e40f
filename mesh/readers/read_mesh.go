package readers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notargets/gomesh/mesh"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		return ReadGmsh(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

func sortedMarkers(tags map[int]string) (keys []int) {
	keys = make([]int, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return
}
