package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

func f(v float64) *float64 { return &v }
func str(s string) *string { return &s }

func testResult(tonnage float64) estimate.EstimationResult {
	return estimate.EstimationResult{
		IsTargetDetected: true,
		TruckType:        "4t",
		MaterialType:     "土砂",
		EstimatedTonnage: tonnage,
		ConfidenceScore:  0.8,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		digest := fmt.Sprintf("digest-%d", i)
		_, err := s.Add(fmt.Sprintf("img%d.jpg", i), digest, testResult(float64(i)+1), nil, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.AddFeedback("digest-1", 2.5, f(4.0), str("scale ticket 42")))

	// Reopen and verify everything survived.
	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.Count())

	entry, ok := reopened.GetByDigest("digest-1")
	require.True(t, ok)
	assert.Equal(t, "img1.jpg", entry.ImagePath)
	assert.Equal(t, 2.0, entry.Estimation.EstimatedTonnage)
	require.NotNil(t, entry.ActualTonnage)
	assert.Equal(t, 2.5, *entry.ActualTonnage)
	require.NotNil(t, entry.MaxCapacity)
	assert.Equal(t, 4.0, *entry.MaxCapacity)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "scale ticket 42", *entry.Notes)
	assert.NotNil(t, entry.FeedbackAt)
}

func TestAddOverwritesSameDigest(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add("a.jpg", "d1", testResult(1.0), nil, "")
	require.NoError(t, err)
	_, err = s.Add("b.jpg", "d1", testResult(9.0), nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1, s.Count())
	entry, _ := s.GetByDigest("d1")
	assert.Equal(t, 9.0, entry.Estimation.EstimatedTonnage)
	assert.Equal(t, "b.jpg", entry.ImagePath)
}

func TestAddFeedbackUnknownDigest(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	err = s.AddFeedback("nope", 3.0, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFeedbackOmittedNotesPreservesPrevious(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add("a.jpg", "d1", testResult(3.0), nil, "")
	require.NoError(t, err)

	require.NoError(t, s.AddFeedback("d1", 3.5, nil, str("first note")))
	// Second correction without notes keeps the first note.
	require.NoError(t, s.AddFeedback("d1", 3.6, nil, nil))

	entry, _ := s.GetByDigest("d1")
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "first note", *entry.Notes)
	assert.Equal(t, 3.6, *entry.ActualTonnage)
}

func TestAddEntryIdempotentImport(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	entry := Entry{
		ImagePath:  "legacy.jpg",
		ImageHash:  "legacy-digest",
		Estimation: testResult(4.2),
		AnalyzedAt: time.Now().UTC(),
	}

	added, err := s.AddEntry(entry)
	require.NoError(t, err)
	assert.True(t, added)

	// Duplicate import is silently skipped and does not mutate.
	entry.Estimation.EstimatedTonnage = 99.0
	added, err = s.AddEntry(entry)
	require.NoError(t, err)
	assert.False(t, added)

	got, _ := s.GetByDigest("legacy-digest")
	assert.Equal(t, 4.2, got.Estimation.EstimatedTonnage)
}

func TestAllSortedNewestFirst(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := s.AddEntry(Entry{
			ImageHash:  fmt.Sprintf("d%d", i),
			Estimation: testResult(1),
			AnalyzedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "d2", all[0].ImageHash)
	assert.Equal(t, "d0", all[2].ImageHash)
}

func TestWithFeedbackAndCounts(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add("a.jpg", "d1", testResult(1), nil, "")
	require.NoError(t, err)
	_, err = s.Add("b.jpg", "d2", testResult(2), nil, "")
	require.NoError(t, err)
	require.NoError(t, s.AddFeedback("d2", 2.1, nil, nil))

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 1, s.FeedbackCount())

	withFb := s.WithFeedback()
	require.Len(t, withFb, 1)
	assert.Equal(t, "d2", withFb[0].ImageHash)
}

func TestClear(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add("a.jpg", "d1", testResult(1), nil, "")
	require.NoError(t, err)

	count, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, s.Count())

	reopened, err := Open(filepath.Dir(s.path))
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Count())
}

func TestFailedSaveRollsBackMemory(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.Add("a.jpg", "d1", testResult(3.0), nil, "")
	require.NoError(t, err)

	// Make every subsequent save fail.
	require.NoError(t, os.RemoveAll(dir))

	err = s.AddFeedback("d1", 3.5, f(4.0), str("note"))
	require.Error(t, err)
	entry, ok := s.GetByDigest("d1")
	require.True(t, ok)
	assert.Nil(t, entry.ActualTonnage, "failed save must not keep feedback in memory")
	assert.Nil(t, entry.FeedbackAt)
	assert.Nil(t, entry.Notes)

	_, err = s.Add("b.jpg", "d2", testResult(1.0), nil, "")
	require.Error(t, err)
	_, ok = s.GetByDigest("d2")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Count())

	added, err := s.AddEntry(Entry{ImageHash: "d3", Estimation: testResult(2.0)})
	require.Error(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, s.Count())

	_, err = s.Clear()
	require.Error(t, err)
	assert.Equal(t, 1, s.Count())
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, storeFileName), []byte("{{not json"), 0o644))

	s, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count())
}

func TestNoPartialFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.Add("a.jpg", "d1", testResult(1), nil, "")
	require.NoError(t, err)

	// The temp file used for the atomic replace must not linger.
	_, err = os.Stat(filepath.Join(dir, storeFileName+".tmp"))
	assert.True(t, os.IsNotExist(err))
}
