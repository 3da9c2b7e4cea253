package inventory

// SortField names a sortable column of the inventory query.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortQuantity  SortField = "quantity"
	SortReserved  SortField = "reserved"
	SortAvailable SortField = "available"
)

// Page limits.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Filter selects, orders and paginates inventory records. Nil fields do not
// filter.
type Filter struct {
	ProductID      *string
	LocationID     *string
	HasStock       *bool
	HasReservation *bool
	MinQuantity    *int
	MaxQuantity    *int

	SortBy SortField
	Desc   bool

	Limit  int
	Offset int
}

// Page is one page of query results.
type Page struct {
	Records []*Record
	Total   int
}

// Normalize returns f with unknown sort fields replaced by SortCreatedAt and
// the limit and offset clamped to their allowed ranges.
func (f Filter) Normalize() Filter {
	switch f.SortBy {
	case SortCreatedAt, SortUpdatedAt, SortQuantity, SortReserved, SortAvailable:
	default:
		f.SortBy = SortCreatedAt
	}
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
