package core

const MaxPerPage = 100

// PageRequest is the caller owned pagination state: which slice of a larger result set to fetch.
// Page is 1-based.
type PageRequest struct {
	Page    int `query:"page" json:"page" validate:"omitempty,min=1"`
	PerPage int `query:"per_page" json:"per_page" validate:"omitempty,min=1,max=100"`
}

// Normalize fills unset or out of range values.
func (pr PageRequest) Normalize(defaultPerPage int) PageRequest {
	if pr.Page < 1 {
		pr.Page = 1
	}
	if pr.PerPage < 1 {
		pr.PerPage = defaultPerPage
	}
	if pr.PerPage > MaxPerPage {
		pr.PerPage = MaxPerPage
	}
	return pr
}

func (pr PageRequest) Offset() int {
	if pr.Page < 1 {
		return 0
	}
	return (pr.Page - 1) * pr.PerPage
}

// Slice returns the [start, end) bounds of the requested page within `total` items.
func (pr PageRequest) Slice(total int) (start, end int) {
	start = pr.Offset()
	if start > total {
		start = total
	}
	end = start + pr.PerPage
	if pr.PerPage <= 0 || end > total {
		end = total
	}
	return start, end
}

// TotalPages returns the number of pages needed for `totalItems`; never less than 1.
func TotalPages(totalItems, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 1
	}
	return (totalItems + perPage - 1) / perPage
}
