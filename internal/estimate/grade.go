package estimate

// LoadGrade is a five-bucket ordinal classification of actual/capacity ratio.
type LoadGrade int

const (
	// TooLight: below 80% of capacity.
	TooLight LoadGrade = iota
	// Light: 80-90%.
	Light
	// JustRight: 90-95%.
	JustRight
	// Marginal: 95-100%.
	Marginal
	// Overloaded: above 100%.
	Overloaded
)

// Grades lists all grades in ascending order.
var Grades = []LoadGrade{TooLight, Light, JustRight, Marginal, Overloaded}

// GradeFromRatio classifies an actual/capacity ratio.
func GradeFromRatio(ratio float64) LoadGrade {
	switch {
	case ratio < 0.80:
		return TooLight
	case ratio < 0.90:
		return Light
	case ratio < 0.95:
		return JustRight
	case ratio <= 1.00:
		return Marginal
	default:
		return Overloaded
	}
}

// Label returns the Japanese display label.
func (g LoadGrade) Label() string {
	switch g {
	case TooLight:
		return "軽すぎ"
	case Light:
		return "軽め"
	case JustRight:
		return "ちょうど"
	case Marginal:
		return "ギリOK"
	default:
		return "積みすぎ"
	}
}

// String returns the machine-friendly English label.
func (g LoadGrade) String() string {
	switch g {
	case TooLight:
		return "too_light"
	case Light:
		return "light"
	case JustRight:
		return "just_right"
	case Marginal:
		return "marginal"
	default:
		return "overloaded"
	}
}
