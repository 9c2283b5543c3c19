// Package truckspec holds the reference dimensions for Japanese dump truck
// classes and the material specifications used for weight calculation.
package truckspec

import "strings"

// Class is a truck class derived from maximum payload capacity.
type Class int

const (
	ClassUnknown Class = iota
	// ClassTwoTon covers 1.5-2.5t payloads.
	ClassTwoTon
	// ClassFourTon covers 3.0-4.5t payloads.
	ClassFourTon
	// ClassIncreasedTon (増トン) covers 5.0-8.0t payloads.
	ClassIncreasedTon
	// ClassTenTon covers 9.0-12.0t payloads.
	ClassTenTon
)

// ClassFromCapacity maps a maximum payload capacity in tonnes to a class.
func ClassFromCapacity(maxCapacity float64) Class {
	switch {
	case maxCapacity >= 1.5 && maxCapacity <= 2.5:
		return ClassTwoTon
	case maxCapacity >= 3.0 && maxCapacity <= 4.5:
		return ClassFourTon
	case maxCapacity >= 5.0 && maxCapacity <= 8.0:
		return ClassIncreasedTon
	case maxCapacity >= 9.0 && maxCapacity <= 12.0:
		return ClassTenTon
	default:
		return ClassUnknown
	}
}

// Label returns the canonical short label ("2t", "4t", "増トン", "10t").
func (c Class) Label() string {
	switch c {
	case ClassTwoTon:
		return "2t"
	case ClassFourTon:
		return "4t"
	case ClassIncreasedTon:
		return "増トン"
	case ClassTenTon:
		return "10t"
	default:
		return "不明"
	}
}

// ClassFromLabel parses a canonical short label back into a Class.
func ClassFromLabel(label string) Class {
	switch NormalizeType(label) {
	case "2t":
		return ClassTwoTon
	case "4t":
		return ClassFourTon
	case "増トン":
		return ClassIncreasedTon
	case "10t":
		return ClassTenTon
	default:
		return ClassUnknown
	}
}

// Spec describes the bed geometry and capacity of a truck class.
type Spec struct {
	Name        string
	MaxCapacity float64 // tonnes
	BedLength   float64 // m
	BedWidth    float64 // m
	BedHeight   float64 // m
	LevelVolume float64 // m³, struck level
	HeapVolume  float64 // m³, heaped
}

// BedArea returns the bed floor area in m².
func (s Spec) BedArea() float64 {
	return s.BedLength * s.BedWidth
}

var specs = map[string]Spec{
	"2t": {
		Name:        "2tダンプ",
		MaxCapacity: 2.0,
		BedLength:   3.0,
		BedWidth:    1.6,
		BedHeight:   0.32,
		LevelVolume: 1.5,
		HeapVolume:  2.0,
	},
	"4t": {
		Name:        "4tダンプ",
		MaxCapacity: 4.0,
		BedLength:   3.4,
		BedWidth:    2.06,
		BedHeight:   0.34,
		LevelVolume: 2.0,
		HeapVolume:  2.4,
	},
	"増トン": {
		Name:        "増トンダンプ",
		MaxCapacity: 6.5,
		BedLength:   4.0,
		BedWidth:    2.2,
		BedHeight:   0.40,
		LevelVolume: 3.5,
		HeapVolume:  4.5,
	},
	"10t": {
		Name:        "10tダンプ",
		MaxCapacity: 10.0,
		BedLength:   5.3,
		BedWidth:    2.3,
		BedHeight:   0.50,
		LevelVolume: 6.0,
		HeapVolume:  7.8,
	},
}

// DefaultBedArea is the reference bed area used when the truck type label
// cannot be resolved to a known class. It matches the 4t spec.
var DefaultBedArea = specs["4t"].BedArea()

// NormalizeType strips trailing qualifiers from a free-text truck type label,
// e.g. "4tダンプ" -> "4t", "10t(平ボディ)" -> "10t".
func NormalizeType(truckType string) string {
	s := strings.TrimSpace(truckType)
	for _, sep := range []string{"ダ", "(", "（"} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// Lookup resolves a free-text truck type label to its spec.
func Lookup(truckType string) (Spec, bool) {
	if spec, ok := specs[truckType]; ok {
		return spec, true
	}
	normalized := NormalizeType(truckType)
	if spec, ok := specs[normalized]; ok {
		return spec, true
	}
	for _, spec := range specs {
		if truckType != "" && strings.Contains(spec.Name, truckType) {
			return spec, true
		}
	}
	return Spec{}, false
}

// BedAreaFor returns the bed area for a truck type label, falling back to
// DefaultBedArea when the label is unrecognized.
func BedAreaFor(truckType string) float64 {
	if spec, ok := Lookup(truckType); ok {
		return spec.BedArea()
	}
	return DefaultBedArea
}

// MaxCapacityFor returns the nominal max capacity for a truck type label.
func MaxCapacityFor(truckType string) (float64, bool) {
	spec, ok := Lookup(truckType)
	if !ok {
		return 0, false
	}
	return spec.MaxCapacity, true
}
