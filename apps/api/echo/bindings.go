package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AI-Fit-GMS/gms/core"
)

const (
	orderingParam = "ordering"
	pageParam     = "page"
	perPageParam  = "per_page"
)

// bindOrdering parses the `ordering` query param, eg: "?ordering=last_name,-created_at".
// Unknown fields are dropped by the services.
func bindOrdering(ctx echo.Context) []core.DBOrdering {
	return core.ParseOrdering(ctx.QueryParam(orderingParam))
}

// bindPage reads `page` and `per_page` as decimal numbers ("010" is 10);
// invalid values fall back to the first page of `defaultPerPage` items.
func bindPage(ctx echo.Context, defaultPerPage int) core.PageRequest {
	pr := core.PageRequest{
		Page:    queryInt(ctx, pageParam),
		PerPage: queryInt(ctx, perPageParam),
	}
	return pr.Normalize(defaultPerPage)
}

func queryInt(ctx echo.Context, name string) int {
	n, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// ListResponse is the envelope of the paginated list endpoints.
type ListResponse struct {
	Results    interface{} `json:"results"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalItems int         `json:"total_items"`
	TotalPages int         `json:"total_pages"`
}

func newListResponse(results interface{}, page core.PageRequest, total int) ListResponse {
	return ListResponse{
		Results:    results,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalItems: total,
		TotalPages: core.TotalPages(total, page.PerPage),
	}
}

type SuccessResponse struct {
	Success string `json:"success"`
}
