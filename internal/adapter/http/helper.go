package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// bindValid binds the body and runs the registered validator. It writes
// the error response itself and reports whether the handler may go on.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func uintParam(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// dateRangeQuery reads ?start=YYYY-MM-DD&end=YYYY-MM-DD.
func dateRangeQuery(c echo.Context) (time.Time, time.Time, bool) {
	start, err1 := time.Parse(dateLayout, c.QueryParam("start"))
	end, err2 := time.Parse(dateLayout, c.QueryParam("end"))
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// mustDate parses a value that already passed datetime validation.
func mustDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := mustDate(s)
	return &t
}
