package truckspec

// MaterialSpec holds the density and void ratio used for weight calculation.
type MaterialSpec struct {
	Density   float64 // t/m³
	VoidRatio float64 // fraction of volume that is air
}

var materials = map[string]MaterialSpec{
	"土砂":     {Density: 1.8, VoidRatio: 0.05},
	"As殻":    {Density: 2.5, VoidRatio: 0.30},
	"Co殻":    {Density: 2.5, VoidRatio: 0.30},
	"開粒度As殻": {Density: 2.35, VoidRatio: 0.35},
}

// Rubble defaults for materials not in the table.
const (
	DefaultDensity   = 2.5
	DefaultVoidRatio = 0.35
)

// MaterialFor looks up the spec for a material type label.
func MaterialFor(materialType string) (MaterialSpec, bool) {
	spec, ok := materials[materialType]
	return spec, ok
}

// MaterialOrDefault returns the spec for a material type, or the rubble
// defaults when the label is unknown.
func MaterialOrDefault(materialType string) MaterialSpec {
	if spec, ok := materials[materialType]; ok {
		return spec
	}
	return MaterialSpec{Density: DefaultDensity, VoidRatio: DefaultVoidRatio}
}
