package utils

import "strings"

// BCType tags boundary elements with the condition their marker names
type BCType uint16

const (
	// BCNone indicates no boundary condition (interior element)
	BCNone BCType = iota

	BCInflow
	BCOutflow
	BCWall
	BCSlipWall
	BCSymmetry
	BCPeriodic
	BCFarfield
	BCDirichlet
	BCNeumann

	// BCPartitionBoundary marks the cut between two subdomains
	BCPartitionBoundary
)

var bcNames = [...]string{
	BCNone:              "None",
	BCInflow:            "Inflow",
	BCOutflow:           "Outflow",
	BCWall:              "Wall",
	BCSlipWall:          "SlipWall",
	BCSymmetry:          "Symmetry",
	BCPeriodic:          "Periodic",
	BCFarfield:          "Farfield",
	BCDirichlet:         "Dirichlet",
	BCNeumann:           "Neumann",
	BCPartitionBoundary: "PartitionBoundary",
}

// String returns the string representation of a BCType
func (bc BCType) String() string {
	if int(bc) < len(bcNames) {
		return bcNames[bc]
	}
	return "Unknown"
}

// BCNameMap maps common marker names to a BCType.
// Keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCType{
	"inlet":     BCInflow,
	"inflow":    BCInflow,
	"outlet":    BCOutflow,
	"outflow":   BCOutflow,
	"exit":      BCOutflow,
	"wall":      BCWall,
	"no_slip":   BCWall,
	"noslip":    BCWall,
	"slip":      BCSlipWall,
	"symmetry":  BCSymmetry,
	"farfield":  BCFarfield,
	"far":       BCFarfield,
	"periodic":  BCPeriodic,
	"dirichlet": BCDirichlet,
	"neumann":   BCNeumann,
}

// ParseBCName converts a marker name to a BCType. Matching is case-insensitive,
// and a trailing "-label" or "_label" is ignored when the full name is unknown,
// so "Wall-top" and "inflow_2" resolve. Unknown names default to wall.
func ParseBCName(name string) BCType {
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if bcType, ok := BCNameMap[lowerName]; ok {
		return bcType
	}
	if i := strings.IndexAny(lowerName, "-_"); i > 0 {
		if bcType, ok := BCNameMap[lowerName[:i]]; ok {
			return bcType
		}
	}
	return BCWall
}
