package ingest

import (
	"strings"

	"github.com/creditrust/complaintrag/internal/errs"
)

// Stats accumulates filtering counters across batches. One Stats value is
// owned by one Filter; Reset starts a fresh accumulation.
type Stats struct {
	BatchesProcessed     int
	RowsLoaded           int
	RowsKept             int
	DroppedWrongCategory int
	DroppedNoNarrative   int
	PerCategory          map[Category]int
}

// NewStats returns an empty, ready-to-accumulate Stats.
func NewStats() *Stats {
	return &Stats{PerCategory: make(map[Category]int)}
}

// Reset clears all counters.
func (s *Stats) Reset() {
	s.BatchesProcessed = 0
	s.RowsLoaded = 0
	s.RowsKept = 0
	s.DroppedWrongCategory = 0
	s.DroppedNoNarrative = 0
	s.PerCategory = make(map[Category]int)
}

// RowsDropped returns the total number of excluded rows.
func (s *Stats) RowsDropped() int {
	return s.RowsLoaded - s.RowsKept
}

// Filter maps raw complaint rows onto the fixed category taxonomy, drops
// unusable rows, and cleans the retained narratives. Drop counts are the
// sanctioned channel for reporting expected data loss; they are not errors.
type Filter struct {
	normalizer Normalizer
	stats      *Stats
}

// NewFilter creates a filter with its own statistics accumulator.
func NewFilter(stripSpecial bool) *Filter {
	return &Filter{
		normalizer: Normalizer{StripSpecial: stripSpecial},
		stats:      NewStats(),
	}
}

// Stats returns the running counters owned by this filter.
func (f *Filter) Stats() *Stats {
	return f.stats
}

// FilterBatch cleans one batch of raw rows. A retained row without a
// complaint ID is malformed input and fails the whole batch; no partial
// batch is accepted (counters for a failed batch are not applied).
func (f *Filter) FilterBatch(rows []RawRow) ([]ComplaintRecord, error) {
	kept := make([]ComplaintRecord, 0, len(rows))
	batchStats := NewStats()
	batchStats.RowsLoaded = len(rows)

	for _, row := range rows {
		category := MapCategory(row.Product, row.SubProduct)
		if category == CategoryUnmapped {
			batchStats.DroppedWrongCategory++
			continue
		}

		if strings.TrimSpace(row.Narrative) == "" {
			batchStats.DroppedNoNarrative++
			continue
		}

		if strings.TrimSpace(row.ID) == "" {
			return nil, errs.NewInputError(ColComplaintID, "retained row has no complaint ID")
		}

		kept = append(kept, ComplaintRecord{
			ID:               strings.TrimSpace(row.ID),
			Category:         category,
			RawNarrative:     row.Narrative,
			CleanedNarrative: f.normalizer.Clean(row.Narrative),
		})
		batchStats.PerCategory[category]++
	}

	batchStats.RowsKept = len(kept)
	f.apply(batchStats)
	return kept, nil
}

// apply folds one successful batch into the running counters. Batch N is
// fully applied before batch N+1 starts.
func (f *Filter) apply(batch *Stats) {
	f.stats.BatchesProcessed++
	f.stats.RowsLoaded += batch.RowsLoaded
	f.stats.RowsKept += batch.RowsKept
	f.stats.DroppedWrongCategory += batch.DroppedWrongCategory
	f.stats.DroppedNoNarrative += batch.DroppedNoNarrative
	for cat, n := range batch.PerCategory {
		f.stats.PerCategory[cat] += n
	}
}
