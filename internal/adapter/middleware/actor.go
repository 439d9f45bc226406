package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Headers set by the authenticating gateway in front of the portal.
const (
	HeaderActorID    = "Ax-Actor-Id"
	HeaderActorName  = "Ax-Actor-Name"
	HeaderActorEmail = "Ax-Actor-Email"
	HeaderActorGrade = "Ax-Actor-Grade"
)

const actorContextKey = "ictloan.actor"

// Actor is the authenticated portal user.
type Actor struct {
	ID    string
	Name  string
	Email string
	Grade int
}

// ActorMiddleware requires the gateway identity headers and stores the
// actor on the echo context.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			a := Actor{
				ID:    strings.TrimSpace(h.Get(HeaderActorID)),
				Name:  strings.TrimSpace(h.Get(HeaderActorName)),
				Email: strings.TrimSpace(h.Get(HeaderActorEmail)),
			}
			if a.ID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID, "code": "Unauthorized"})
			}
			if !reActorID.MatchString(a.ID) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			}
			g, err := strconv.Atoi(strings.TrimSpace(h.Get(HeaderActorGrade)))
			if err != nil || g < 0 {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorGrade})
			}
			a.Grade = g
			c.Set(actorContextKey, a)
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by ActorMiddleware.
func ActorFrom(c echo.Context) (Actor, bool) {
	a, ok := c.Get(actorContextKey).(Actor)
	return a, ok
}
