// Package history is the durable record of every analysis. It accumulates
// operator feedback and derives accuracy statistics and grade-bucketed
// reference selections from it.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

const storeFileName = "history.json"

// ErrNotFound is returned when feedback targets a digest that was never
// analyzed.
var ErrNotFound = errors.New("no analysis found for digest")

// Entry is one persisted analysis, keyed by the image's content digest.
type Entry struct {
	// ImagePath is the path the image was analyzed under. Informational
	// only; the digest is the key.
	ImagePath string `json:"image_path"`

	// ImageHash is the SHA-256 content digest of the image.
	ImageHash string `json:"image_hash"`

	// Estimation is the AI result as persisted at analysis time.
	Estimation estimate.EstimationResult `json:"estimation"`

	// ActualTonnage is the operator-supplied ground truth, if any.
	ActualTonnage *float64 `json:"actual_tonnage,omitempty"`

	// MaxCapacity from the vehicle registration, if known.
	MaxCapacity *float64 `json:"max_capacity,omitempty"`

	AnalyzedAt time.Time  `json:"analyzed_at"`
	FeedbackAt *time.Time `json:"feedback_at,omitempty"`

	Notes           *string `json:"notes,omitempty"`
	ThumbnailBase64 string  `json:"thumbnail_base64,omitempty"`
}

// Store persists entries as a single JSON file, read fully on open and
// rewritten atomically on every mutation.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// Open creates or loads a store under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	path := filepath.Join(dir, storeFileName)

	entries := make(map[string]Entry)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &entries); err != nil {
			// A corrupt file should not brick the store; start fresh and
			// let the next mutation rewrite it.
			log.Warn().Err(err).Str("path", path).Msg("history file unreadable, starting empty")
			entries = make(map[string]Entry)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	return &Store{path: path, entries: entries}, nil
}

// save rewrites the whole file. Written to a temp file first and renamed into
// place so a crash mid-write can never corrupt existing state.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// restore undoes a speculative map mutation after a failed save, keeping the
// in-memory state consistent with what is on disk.
func (s *Store) restore(digest string, prev Entry, existed bool) {
	if existed {
		s.entries[digest] = prev
	} else {
		delete(s.entries, digest)
	}
}

// Add records an analysis result under its digest, overwriting any previous
// record for the same bytes. Returns the digest.
func (s *Store) Add(imagePath, digest string, result estimate.EstimationResult, maxCapacity *float64, thumbnailBase64 string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[digest]
	s.entries[digest] = Entry{
		ImagePath:       imagePath,
		ImageHash:       digest,
		Estimation:      result,
		MaxCapacity:     maxCapacity,
		AnalyzedAt:      time.Now().UTC(),
		ThumbnailBase64: thumbnailBase64,
	}
	if err := s.save(); err != nil {
		s.restore(digest, prev, existed)
		return "", err
	}
	return digest, nil
}

// AddEntry imports a pre-built entry. Returns false without mutating when the
// digest already exists, so repeated imports are idempotent.
func (s *Store) AddEntry(entry Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ImageHash]; exists {
		return false, nil
	}
	s.entries[entry.ImageHash] = entry
	if err := s.save(); err != nil {
		delete(s.entries, entry.ImageHash)
		return false, err
	}
	return true, nil
}

// AddFeedback attaches ground truth to an existing analysis. Repeated
// corrections overwrite previous ones. A nil notes value preserves any
// existing notes.
func (s *Store) AddFeedback(digest string, actualTonnage float64, maxCapacity *float64, notes *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[digest]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, digest)
	}

	now := time.Now().UTC()
	entry := prev
	entry.ActualTonnage = &actualTonnage
	entry.FeedbackAt = &now
	if maxCapacity != nil {
		entry.MaxCapacity = maxCapacity
	}
	if notes != nil {
		entry.Notes = notes
	}
	s.entries[digest] = entry

	if err := s.save(); err != nil {
		s.entries[digest] = prev
		return err
	}
	return nil
}

// GetByDigest returns the entry for a digest.
func (s *Store) GetByDigest(digest string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[digest]
	return entry, ok
}

// All returns every entry sorted by analysis time, newest first.
func (s *Store) All() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Store) sortedLocked() []Entry {
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AnalyzedAt.After(entries[j].AnalyzedAt)
	})
	return entries
}

// WithFeedback returns entries carrying ground truth, newest first.
func (s *Store) WithFeedback() []Entry {
	all := s.All()
	filtered := all[:0]
	for _, e := range all {
		if e.ActualTonnage != nil {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Count returns the total entry count.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FeedbackCount returns the number of entries with ground truth.
func (s *Store) FeedbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if e.ActualTonnage != nil {
			count++
		}
	}
	return count
}

// Clear empties the store and returns the prior entry count.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.entries
	count := len(prev)
	s.entries = make(map[string]Entry)
	if err := s.save(); err != nil {
		s.entries = prev
		return 0, err
	}
	log.Info().Int("removed", count).Msg("history cleared")
	return count, nil
}

// AccuracyStats aggregates estimation error over every feedback-bearing
// entry.
func (s *Store) AccuracyStats() AccuracyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var samples []AccuracySample
	for _, e := range s.entries {
		if e.ActualTonnage == nil {
			continue
		}
		samples = append(samples, AccuracySample{
			Estimated:    e.Estimation.EstimatedTonnage,
			Actual:       *e.ActualTonnage,
			TruckType:    e.Estimation.TruckType,
			MaterialType: e.Estimation.MaterialType,
		})
	}
	return StatsFromSamples(samples)
}
