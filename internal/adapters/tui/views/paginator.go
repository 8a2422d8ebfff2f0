package views

// Paginator tracks a cursor over a list and the page of rows around it
type Paginator struct {
	pageSize int
	offset   int
	cursor   int
	total    int
}

// NewPaginator creates a paginator showing pageSize rows at a time
func NewPaginator(pageSize int) *Paginator {
	p := &Paginator{}
	p.SetPageSize(pageSize)
	return p
}

// SetPageSize changes the number of visible rows, e.g. after a resize
func (p *Paginator) SetPageSize(size int) {
	if size <= 0 {
		size = 10
	}
	p.pageSize = size
	p.clamp()
}

// SetTotal updates the number of items, keeping the cursor in range
func (p *Paginator) SetTotal(total int) {
	p.total = max(total, 0)
	p.clamp()
}

// Cursor returns the absolute cursor position
func (p *Paginator) Cursor() int {
	return p.cursor
}

// Move shifts the cursor by delta rows and reports whether it moved
func (p *Paginator) Move(delta int) bool {
	before := p.cursor
	p.cursor += delta
	p.clamp()
	return p.cursor != before
}

// Page shifts the cursor by whole pages
func (p *Paginator) Page(delta int) bool {
	return p.Move(delta * p.pageSize)
}

// Top moves the cursor to the first row
func (p *Paginator) Top() {
	p.cursor = 0
	p.clamp()
}

// VisibleRange returns the half-open range of rows on screen
func (p *Paginator) VisibleRange() (start, end int) {
	return p.offset, min(p.offset+p.pageSize, p.total)
}

// TotalPages returns the number of pages, at least 1
func (p *Paginator) TotalPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.pageSize - 1) / p.pageSize
}

// CurrentPage returns the 1-based page holding the cursor
func (p *Paginator) CurrentPage() int {
	return p.offset/p.pageSize + 1
}

func (p *Paginator) clamp() {
	if p.cursor >= p.total {
		p.cursor = p.total - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.offset = (p.cursor / p.pageSize) * p.pageSize
}
