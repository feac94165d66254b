package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/oceanwatch/hazard-api/internal/apperr"
)

// RestrictTo returns a middleware that allows the request only when the
// authenticated user's stored role is in the given set. It must run
// after Protect: the decision uses the live user record attached to the
// context, not a claim baked into the token, so a role change takes
// effect on the next request rather than at token expiry. A failed
// check is terminal for the request.
func RestrictTo(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !allowed[u.Role] {
				return apperr.Forbidden("You do not have permission to perform this action.")
			}
			return next(c)
		}
	}
}
