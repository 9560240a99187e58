package feed

import (
	"strconv"
	"strings"

	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

// PageSize is the number of posts on every feed page.
const PageSize = 10

// Paginator splits Count items into pages of PerPage. An empty result still
// has one (empty) page.
type Paginator struct {
	PerPage int
	Count   int64
}

func (p Paginator) NumPages() int {
	if p.Count == 0 || p.PerPage <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Clamp maps a requested page number onto a valid one. Out-of-range numbers,
// in either direction, yield the last page.
func (p Paginator) Clamp(number int) int {
	last := p.NumPages()
	if number < 1 || number > last {
		return last
	}
	return number
}

// Offset is the index of the first item on page number, which must already be clamped.
func (p Paginator) Offset(number int) int {
	return (number - 1) * p.PerPage
}

// ParsePage reads the "page" query value. Absent or non-integer input means page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// Page is one page of a feed plus the metadata callers render as "page X of Y".
type Page struct {
	Posts              []models.Post `json:"posts"`
	Number             int           `json:"number"`
	NumPages           int           `json:"num_pages"`
	Count              int64         `json:"count"`
	HasNext            bool          `json:"has_next"`
	HasPrevious        bool          `json:"has_previous"`
	NextPageNumber     int           `json:"next_page_number,omitempty"`
	PreviousPageNumber int           `json:"previous_page_number,omitempty"`
}

func newPage(p Paginator, number int, posts []models.Post) *Page {
	if posts == nil {
		posts = []models.Post{}
	}
	page := &Page{
		Posts:       posts,
		Number:      number,
		NumPages:    p.NumPages(),
		Count:       p.Count,
		HasNext:     number < p.NumPages(),
		HasPrevious: number > 1,
	}
	if page.HasNext {
		page.NextPageNumber = number + 1
	}
	if page.HasPrevious {
		page.PreviousPageNumber = number - 1
	}
	return page
}
