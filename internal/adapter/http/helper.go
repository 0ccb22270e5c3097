package http

import (
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// PrincipalHeader carries the authenticated caller identity. The gateway in
// front of this service sets it; the engine treats it as unforgeable.
const PrincipalHeader = "Ax-Principal-Id"

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func callerID(c echo.Context) (string, bool) {
	p := strings.TrimSpace(c.Request().Header.Get(PrincipalHeader))
	return p, reHex32.MatchString(p)
}
