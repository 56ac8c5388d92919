package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CleanedWriter writes retained records back out in the same tabular
// format, with the narrative column overwritten by its cleaned form.
type CleanedWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCleanedWriter creates a writer over w. The header is written lazily
// with the first batch.
func NewCleanedWriter(w io.Writer) *CleanedWriter {
	return &CleanedWriter{w: csv.NewWriter(w)}
}

// WriteBatch appends one row per retained record.
func (c *CleanedWriter) WriteBatch(records []ComplaintRecord) error {
	if !c.wroteHeader {
		header := []string{ColComplaintID, ColProduct, ColNarrative}
		if err := c.w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		c.wroteHeader = true
	}

	for _, rec := range records {
		row := []string{rec.ID, string(rec.Category), rec.CleanedNarrative}
		if err := c.w.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}

	return nil
}

// Flush flushes buffered rows and reports any deferred write error.
func (c *CleanedWriter) Flush() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush cleaned output: %w", err)
	}
	return nil
}
