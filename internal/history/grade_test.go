package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
	"github.com/YuujiKamura/tonsuu-checker/internal/truckspec"
)

func judged(t *testing.T, s *Store, digest string, actual, capacity float64, at time.Time) {
	t.Helper()
	_, err := s.AddEntry(Entry{
		ImagePath:     digest + ".jpg",
		ImageHash:     digest,
		Estimation:    testResult(actual),
		ActualTonnage: f(actual),
		MaxCapacity:   f(capacity),
		AnalyzedAt:    at,
	})
	require.NoError(t, err)
}

func TestSelectStockByGrade(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	now := time.Now().UTC()
	// 4t class (capacity 4.0): one entry per several grades.
	judged(t, s, "a", 2.0, 4.0, now)                   // 50% TooLight
	judged(t, s, "b", 3.4, 4.0, now)                   // 85% Light
	judged(t, s, "c", 3.7, 4.0, now)                   // 92.5% JustRight
	judged(t, s, "d", 4.3, 4.0, now)                   // 107.5% Overloaded
	judged(t, s, "e", 9.0, 10.0, now)                  // 10t class, must be excluded
	judged(t, s, "f", 3.5, 4.0, now.Add(-time.Hour))   // 87.5% Light, older
	judged(t, s, "g", 3.45, 4.0, now.Add(-2*time.Hour)) // Light, oldest

	// Entry without capacity never qualifies.
	_, err = s.AddEntry(Entry{
		ImageHash:     "h",
		Estimation:    testResult(3),
		ActualTonnage: f(3.0),
		AnalyzedAt:    now,
	})
	require.NoError(t, err)

	stock := s.SelectStockByGrade(truckspec.ClassFourTon)

	// At most one entry per grade, every grade distinct, Marginal absent.
	require.Len(t, stock, 4)
	seen := make(map[estimate.LoadGrade]bool)
	for _, g := range stock {
		assert.False(t, seen[g.Grade], "duplicate grade %s", g.Grade)
		seen[g.Grade] = true
		require.NotNil(t, g.Entry.MaxCapacity)
		assert.Equal(t, truckspec.ClassFourTon, truckspec.ClassFromCapacity(*g.Entry.MaxCapacity))
	}
	assert.False(t, seen[estimate.Marginal])

	// Within the Light bucket, the most recent entry wins.
	for _, g := range stock {
		if g.Grade == estimate.Light {
			assert.Equal(t, "b", g.Entry.ImageHash)
			assert.InDelta(t, 85.0, g.LoadRatio, 1e-9)
		}
	}
}

func TestSelectStockByGradeEmptyStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, s.SelectStockByGrade(truckspec.ClassTenTon))
}

func TestSelectStockByGradeCapAtFive(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	now := time.Now().UTC()
	ratios := []float64{0.5, 0.85, 0.92, 0.97, 1.2, 0.6, 0.88, 0.93, 0.99, 1.5}
	for i, r := range ratios {
		judged(t, s, fmt.Sprintf("d%d", i), r*10.0, 10.0, now.Add(time.Duration(i)*time.Minute))
	}

	stock := s.SelectStockByGrade(truckspec.ClassTenTon)
	assert.LessOrEqual(t, len(stock), 5)
	assert.Len(t, stock, 5)
}
