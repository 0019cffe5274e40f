package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/gomesh/generate"
)

// Parameters obtained from the YAML input file
type MeshParameters struct {
	Title        string            `yaml:"Title"`
	Nx           int               `yaml:"Nx"`
	Ny           int               `yaml:"Ny"`
	XMin         float64           `yaml:"XMin"`
	XMax         float64           `yaml:"XMax"`
	YMin         float64           `yaml:"YMin"`
	YMax         float64           `yaml:"YMax"`
	Layout       string            `yaml:"Layout"` // quads, triangles or mixed
	TriangleRows int               `yaml:"TriangleRows"`
	BCs          map[string]string `yaml:"BCs"` // Side name (bottom, right, top, left) to marker name
	Partitions   int               `yaml:"Partitions"`
	Strategy     string            `yaml:"Strategy"` // block, roundrobin or graph
	Output       string            `yaml:"Output"`   // SU2 file written by the generator
}

func (mp *MeshParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, mp)
}

// Structured converts the parameters to a grid description
func (mp *MeshParameters) Structured() (s *generate.Structured, err error) {
	var (
		layout generate.Layout
	)
	if layout, err = generate.ParseLayout(mp.Layout); err != nil {
		return
	}
	s = &generate.Structured{
		Nx:           mp.Nx,
		Ny:           mp.Ny,
		XMin:         mp.XMin,
		XMax:         mp.XMax,
		YMin:         mp.YMin,
		YMax:         mp.YMax,
		Layout:       layout,
		TriangleRows: mp.TriangleRows,
	}
	for name, marker := range mp.BCs {
		found := false
		for side := generate.Bottom; side <= generate.Left; side++ {
			if side.String() == name {
				s.Markers[side] = marker
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown boundary side %q in BCs", name)
		}
	}
	return
}

func (mp *MeshParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%d x %d]\t\t= Cells\n", mp.Nx, mp.Ny)
	fmt.Printf("[%g, %g] x [%g, %g]\t= Domain\n", mp.XMin, mp.XMax, mp.YMin, mp.YMax)
	fmt.Printf("[%s]\t\t\t= Layout\n", mp.Layout)
	if mp.TriangleRows > 0 {
		fmt.Printf("[%d]\t\t\t\t= Triangle Rows\n", mp.TriangleRows)
	}
	if mp.Partitions > 0 {
		fmt.Printf("[%d, %s]\t\t= Partitions\n", mp.Partitions, mp.Strategy)
	}
	keys := make([]string, len(mp.BCs))
	i := 0
	for k := range mp.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, mp.BCs[key])
	}
}
