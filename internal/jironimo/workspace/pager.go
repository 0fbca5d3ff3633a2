package workspace

// DefaultMaxResults is the page size used when none is configured
const DefaultMaxResults = 16

// Pager holds the paging state of a search
type Pager struct {
	StartAt    int
	MaxResults int
	Total      int
}

// NewPager creates a pager at the first page. A non-positive page size selects DefaultMaxResults.
func NewPager(maxResults int) Pager {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return Pager{MaxResults: maxResults}
}

// BackwardOffset is the start of the previous page
func (p Pager) BackwardOffset() int {
	return max(0, p.StartAt-p.MaxResults)
}

// ForwardOffset is the start of the next page, clamped below the total
func (p Pager) ForwardOffset() int {
	return max(0, min(p.StartAt+p.MaxResults, p.Total-1))
}

// HasPrevious reports whether there is a page before the current one
func (p Pager) HasPrevious() bool {
	return p.StartAt > 0
}

// HasNext reports whether there is a page after the current one
func (p Pager) HasNext() bool {
	return p.StartAt+p.MaxResults < p.Total
}
