package truckspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassFromCapacity(t *testing.T) {
	tests := []struct {
		capacity float64
		want     Class
	}{
		{2.0, ClassTwoTon},
		{1.5, ClassTwoTon},
		{2.5, ClassTwoTon},
		{4.0, ClassFourTon},
		{3.0, ClassFourTon},
		{6.5, ClassIncreasedTon},
		{10.0, ClassTenTon},
		{11.5, ClassTenTon},
		{0.5, ClassUnknown},
		{2.7, ClassUnknown},
		{15.0, ClassUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassFromCapacity(tt.capacity), "capacity %v", tt.capacity)
	}
}

func TestClassLabelRoundTrip(t *testing.T) {
	for _, c := range []Class{ClassTwoTon, ClassFourTon, ClassIncreasedTon, ClassTenTon} {
		assert.Equal(t, c, ClassFromLabel(c.Label()))
	}
	assert.Equal(t, ClassUnknown, ClassFromLabel("trailer"))
}

func TestLookupNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4t", "4tダンプ"},
		{"4tダンプ", "4tダンプ"},
		{"10t", "10tダンプ"},
		{"10t(平ボディ)", "10tダンプ"},
		{"増トン", "増トンダンプ"},
		{"増トンダンプ", "増トンダンプ"},
		{"2t", "2tダンプ"},
	}
	for _, tt := range tests {
		spec, ok := Lookup(tt.in)
		assert.True(t, ok, "lookup %q", tt.in)
		assert.Equal(t, tt.want, spec.Name, "lookup %q", tt.in)
	}

	_, ok := Lookup("トレーラー")
	assert.False(t, ok)
}

func TestFourTonSpec(t *testing.T) {
	spec, ok := Lookup("4t")
	assert.True(t, ok)
	assert.Equal(t, 4.0, spec.MaxCapacity)
	assert.Equal(t, 2.0, spec.LevelVolume)
	assert.InDelta(t, 7.004, spec.BedArea(), 0.001)
}

func TestBedAreaFallback(t *testing.T) {
	assert.Equal(t, DefaultBedArea, BedAreaFor("不明"))
	assert.InDelta(t, 7.004, DefaultBedArea, 0.001)
}

func TestMaterialFor(t *testing.T) {
	soil, ok := MaterialFor("土砂")
	assert.True(t, ok)
	assert.Equal(t, 1.8, soil.Density)
	assert.Equal(t, 0.05, soil.VoidRatio)

	_, ok = MaterialFor("unknown")
	assert.False(t, ok)

	def := MaterialOrDefault("unknown")
	assert.Equal(t, DefaultDensity, def.Density)
	assert.Equal(t, DefaultVoidRatio, def.VoidRatio)
}
