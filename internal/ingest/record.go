package ingest

// Column names expected in the raw complaint export. The reader addresses
// columns by header name, not position.
const (
	ColComplaintID = "Complaint ID"
	ColProduct     = "Product"
	ColSubProduct  = "Sub-product"
	ColNarrative   = "Consumer complaint narrative"
)

// RawRow is one unfiltered row from the complaint export.
type RawRow struct {
	ID         string
	Product    string
	SubProduct string
	Narrative  string
}

// ComplaintRecord is a cleaned, retained complaint. Immutable once
// produced by the filter; invalid rows are excluded, never retained.
type ComplaintRecord struct {
	ID               string
	Category         Category
	RawNarrative     string
	CleanedNarrative string
}
