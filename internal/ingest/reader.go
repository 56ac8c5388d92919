package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/creditrust/complaintrag/internal/errs"
)

// BatchReader streams a complaint CSV in bounded-size row batches so large
// exports never have to fit in memory at once.
type BatchReader struct {
	r         *csv.Reader
	batchSize int

	idIdx        int
	productIdx   int
	subProdIdx   int // -1 when the optional column is absent
	narrativeIdx int
}

// NewBatchReader validates the header and prepares batch iteration.
// A missing required column fails immediately with the column named.
func NewBatchReader(r io.Reader, batchSize int) (*BatchReader, error) {
	if batchSize <= 0 {
		return nil, errs.NewInputError("", "batch size must be positive, got %d", batchSize)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows; columns are addressed by header

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	br := &BatchReader{r: cr, batchSize: batchSize, subProdIdx: -1}
	for _, col := range []string{ColComplaintID, ColProduct, ColNarrative} {
		i, ok := idx[col]
		if !ok {
			return nil, errs.NewInputError(col, "required column missing from header")
		}
		switch col {
		case ColComplaintID:
			br.idIdx = i
		case ColProduct:
			br.productIdx = i
		case ColNarrative:
			br.narrativeIdx = i
		}
	}
	if i, ok := idx[ColSubProduct]; ok {
		br.subProdIdx = i
	}

	return br, nil
}

// Next returns the next batch of rows. The final batch may be short;
// io.EOF signals the end of input after all rows have been returned.
func (b *BatchReader) Next() ([]RawRow, error) {
	batch := make([]RawRow, 0, b.batchSize)

	for len(batch) < b.batchSize {
		record, err := b.r.Read()
		if err == io.EOF {
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}
		if err != nil {
			return nil, errs.NewInputError("", "malformed CSV row: %v", err)
		}

		row := RawRow{
			ID:        b.field(record, b.idIdx),
			Product:   b.field(record, b.productIdx),
			Narrative: b.field(record, b.narrativeIdx),
		}
		if b.subProdIdx >= 0 {
			row.SubProduct = b.field(record, b.subProdIdx)
		}
		batch = append(batch, row)
	}

	return batch, nil
}

func (b *BatchReader) field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
