package pagination

const (
	// DefaultPageSize is the standard page size when a size is not provided.
	DefaultPageSize = 100
	// MaxPageSize caps how many parcels any single page can return.
	MaxPageSize = 1000
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Page describes the resolved window over a total record count.
type Page struct {
	Number     int
	Size       int
	Offset     int
	TotalPages int
	TotalItems int
}

// NormalizeSize enforces the configured default and maximum page sizes.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// TotalPages returns the number of pages needed for total items at the given
// size. An empty set still has one (empty) page so callers can clamp into
// a valid range.
func TotalPages(total, size int) int {
	size = NormalizeSize(size)
	if total <= 0 {
		return 1
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Resolve clamps the requested page into [1, TotalPages] and computes the
// slice window. Out-of-range pages are clamped rather than rejected.
func Resolve(params Params, totalItems int) Page {
	size := NormalizeSize(params.PageSize)
	totalPages := TotalPages(totalItems, size)

	number := params.Page
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       size,
		Offset:     (number - 1) * size,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}

// Window bounds the half-open interval [start, end) of the page within a
// slice of length totalItems.
func (p Page) Window() (start, end int) {
	start = p.Offset
	if start > p.TotalItems {
		start = p.TotalItems
	}
	end = start + p.Size
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}
