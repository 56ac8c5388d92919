// Package chunk splits cleaned complaint narratives into overlapping,
// bounded-length text windows, the unit of embedding and retrieval.
package chunk

import (
	"strings"

	"github.com/creditrust/complaintrag/internal/errs"
	"github.com/creditrust/complaintrag/internal/ingest"
)

// Chunk is one text window derived from exactly one complaint record.
// Index is 0-based and contiguous within the record.
type Chunk struct {
	RecordID string
	Category ingest.Category
	Index    int
	Text     string
}

// Chunker produces overlapping windows of at most Size characters, with
// Overlap characters shared between consecutive windows. Sizes count
// Unicode characters, not bytes.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters: size must be positive and
// 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, errs.NewInputError("", "chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, errs.NewInputError("", "chunk overlap must satisfy 0 <= overlap < size, got %d", overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split slides a window over text. Each window ends at a whitespace or
// sentence boundary when one exists past the overlap region, falling back
// to a hard cut at the size limit; the next window starts overlap
// characters before the previous cut. Text no longer than the window size
// yields exactly one chunk. Discarding the first overlap characters of
// every chunk after the first reconstructs the input exactly.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var out []string
	start := 0
	for {
		if len(runes)-start <= c.size {
			out = append(out, string(runes[start:]))
			return out
		}
		cut := c.boundaryCut(runes, start)
		out = append(out, string(runes[start:cut]))
		start = cut - c.overlap
	}
}

// boundaryCut picks the cut position, in runes, for the window starting at
// start. It prefers the last sentence break, then the last whitespace,
// inside the window but past the overlap region (so every window makes
// progress), and hard-cuts at the size limit otherwise.
func (c *Chunker) boundaryCut(runes []rune, start int) int {
	end := start + c.size
	minCut := start + c.overlap + 1

	for i := end - 1; i > start; i-- {
		if runes[i] != ' ' || !isSentenceEnd(runes[i-1]) {
			continue
		}
		if i+1 >= minCut {
			return i + 1
		}
		break
	}
	for i := end - 1; i >= start; i-- {
		if runes[i] != ' ' {
			continue
		}
		if i+1 >= minCut {
			return i + 1
		}
		break
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Record splits one cleaned complaint record into chunks carrying the
// record's metadata. A record without an ID fails fast with the column
// named.
func (c *Chunker) Record(rec ingest.ComplaintRecord) ([]Chunk, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return nil, errs.NewInputError(ingest.ColComplaintID, "record has no complaint ID")
	}

	parts := c.Split(rec.CleanedNarrative)
	chunks := make([]Chunk, 0, len(parts))
	for i, text := range parts {
		chunks = append(chunks, Chunk{
			RecordID: rec.ID,
			Category: rec.Category,
			Index:    i,
			Text:     text,
		})
	}
	return chunks, nil
}

// Records chunks a batch of records in order.
func (c *Chunker) Records(records []ingest.ComplaintRecord) ([]Chunk, error) {
	var all []Chunk
	for _, rec := range records {
		chunks, err := c.Record(rec)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
