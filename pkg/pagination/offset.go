package pagination

// DefaultLimit is the page size used when the caller specifies none.
const DefaultLimit = 20

// MaxLimit is the largest page size a caller may request.
const MaxLimit = 100

// OffsetRequest represents a limit/offset pagination request.
type OffsetRequest struct {
	Limit  int `json:"limit" query:"limit"`
	Offset int `json:"offset" query:"offset"`
}

// Validate normalizes the parameters in place.
func (r *OffsetRequest) Validate() error {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return nil
}

// OffsetResult is a page of items plus the exact total for the query.
type OffsetResult[T any] struct {
	Data    []T   `json:"data"`
	Count   int64 `json:"count"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NewOffsetResult builds a result page; Data is never null in JSON.
func NewOffsetResult[T any](items []T, total int64, limit, offset int) *OffsetResult[T] {
	if items == nil {
		items = []T{}
	}
	return &OffsetResult[T]{
		Data:    items,
		Count:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(items)) < total,
	}
}
