package params

import (
	"strconv"

	"github.com/HyunsDev/opize-calendar2notion-server/core/constants"

	"github.com/labstack/echo/v4"
)

// QueryParams carries the common pagination/search query parameters.
type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

// FromEchoContext parses page/pageSize/search query params with defaults.
func FromEchoContext(c echo.Context) QueryParams {
	p := QueryParams{
		PageNumber: constants.DefaultPageNumber,
		PageSize:   constants.DefaultPageSize,
		Search:     c.QueryParam("search"),
	}

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		p.PageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && v > 0 {
		p.PageSize = v
	}
	if p.PageSize > constants.MaxPageSize {
		p.PageSize = constants.MaxPageSize
	}

	return p
}
