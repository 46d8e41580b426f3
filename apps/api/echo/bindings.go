package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mwongozo/backend/core"
)

// bindOrdering parses the "ordering" query param into DB orderings.
// Fields are comma-separated; a "-" prefix flips a field to descending.
func bindOrdering(ctx echo.Context) []core.DBOrdering {
	raw := ctx.QueryParam("ordering")
	if raw == "" {
		return nil
	}

	var orderings []core.DBOrdering
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		asc := true
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			asc = false
		}
		orderings = append(orderings, core.DBOrdering{Field: field, Ascending: asc})
	}
	return orderings
}
