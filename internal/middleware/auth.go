package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oceanwatch/hazard-api/internal/apperr"
	"github.com/oceanwatch/hazard-api/internal/model"
	"github.com/oceanwatch/hazard-api/internal/utils"
)

// userContextKey is where Protect stores the resolved user. Handlers
// read it through CurrentUser instead of touching the key directly.
const userContextKey = "current_user"

// UserFinder is the single lookup the auth gate needs from the
// credential store.
type UserFinder interface {
	FindByID(ctx context.Context, id uint64) (model.User, error)
}

// Protect returns the authentication gate for protected routes. The
// request must carry "Authorization: Bearer <token>"; the token must
// verify under secret and be unexpired; and the subject must still
// resolve to a live user record. The last check is what invalidates
// tokens of deleted accounts even though their signature is fine. On
// success the full user record is attached to the request context so
// downstream handlers and the role gate never re-fetch it.
func Protect(secret string, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperr.Unauthorized("You are not logged in. Please log in to get access.")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Expired, forged and malformed tokens are deliberately
			// indistinguishable here and to the client.
			userID, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return apperr.Unauthorized("Invalid token. Please log in again.")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.FindByID(ctx, userID)
			if err != nil {
				return apperr.Unauthorized("The user belonging to this token does no longer exist.")
			}

			SetCurrentUser(c, &u)
			return next(c)
		}
	}
}

// SetCurrentUser attaches the user to the request context. Protect is
// the only production caller; handler tests use it to simulate an
// authenticated request.
func SetCurrentUser(c echo.Context, u *model.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the user attached by Protect. The bool is false
// when the middleware did not run on this route.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userContextKey).(*model.User)
	return u, ok
}
