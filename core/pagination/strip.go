// Package pagination builds the page-navigation strip shown under record tables.
// The strip is stateless: the caller owns the current page and is told about
// page changes through OnPageChange.
package pagination

import "fmt"

type ItemKind int

const (
	KindPage ItemKind = iota
	KindEllipsis
)

type (
	// Strip describes the caller's paging state.
	Strip struct {
		CurrentPage  int
		TotalPages   int
		ItemsPerPage int
		TotalItems   int
		OnPageChange func(page int)
	}

	// Item is one entry of the page list: a page button or a non-interactive ellipsis.
	Item struct {
		Kind    ItemKind `json:"kind"`
		Page    int      `json:"page,omitempty"`
		Current bool     `json:"current,omitempty"`
	}

	View struct {
		Summary      string `json:"summary"`
		Start        int    `json:"start"`
		End          int    `json:"end"`
		TotalItems   int    `json:"total_items"`
		CurrentPage  int    `json:"current_page"`
		TotalPages   int    `json:"total_pages"`
		PrevPage     int    `json:"prev_page"`
		NextPage     int    `json:"next_page"`
		PrevDisabled bool   `json:"prev_disabled"`
		NextDisabled bool   `json:"next_disabled"`
		Items        []Item `json:"items"`
	}
)

func (it Item) IsEllipsis() bool { return it.Kind == KindEllipsis }

func (s Strip) totalPages() int {
	if s.TotalPages < 1 {
		return 1
	}
	return s.TotalPages
}

// Range returns the 1-based positions of the first and last item on the current page.
// No clamping happens on start: an empty result set yields (1, 0).
func (s Strip) Range() (start, end int) {
	start = (s.CurrentPage-1)*s.ItemsPerPage + 1
	end = s.CurrentPage * s.ItemsPerPage
	if s.TotalItems < end {
		end = s.TotalItems
	}
	return start, end
}

func (s Strip) Summary() string {
	start, end := s.Range()
	return fmt.Sprintf("Showing %d to %d of %d results", start, end, s.TotalItems)
}

func (s Strip) PrevDisabled() bool { return s.CurrentPage == 1 }

func (s Strip) NextDisabled() bool { return s.CurrentPage == s.totalPages() }

// Items lists the page buttons: the first page, the last page and the current
// page with its direct neighbours. The pages two steps away from the current one
// render as an ellipsis when they are not buttons already.
func (s Strip) Items() []Item {
	total := s.totalPages()
	cur := s.CurrentPage

	items := make([]Item, 0, 7)
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || (p >= cur-1 && p <= cur+1):
			items = append(items, Item{Kind: KindPage, Page: p, Current: p == cur})
		case p == cur-2 || p == cur+2:
			items = append(items, Item{Kind: KindEllipsis})
		}
	}
	return items
}

// ClickPage reports a page-button click. The page is not validated.
func (s Strip) ClickPage(page int) {
	if s.OnPageChange != nil {
		s.OnPageChange(page)
	}
}

func (s Strip) ClickPrev() {
	if s.PrevDisabled() {
		return
	}
	s.ClickPage(s.CurrentPage - 1)
}

func (s Strip) ClickNext() {
	if s.NextDisabled() {
		return
	}
	s.ClickPage(s.CurrentPage + 1)
}

func (s Strip) Render() View {
	start, end := s.Range()
	return View{
		Summary:      s.Summary(),
		Start:        start,
		End:          end,
		TotalItems:   s.TotalItems,
		CurrentPage:  s.CurrentPage,
		TotalPages:   s.totalPages(),
		PrevPage:     s.CurrentPage - 1,
		NextPage:     s.CurrentPage + 1,
		PrevDisabled: s.PrevDisabled(),
		NextDisabled: s.NextDisabled(),
		Items:        s.Items(),
	}
}
