package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanwatch/hazard-api/internal/apperr"
	"github.com/oceanwatch/hazard-api/internal/model"
	"github.com/oceanwatch/hazard-api/internal/utils"
)

const testSecret = "test-secret"

type stubFinder struct {
	user model.User
	err  error
}

func (s stubFinder) FindByID(ctx context.Context, id uint64) (model.User, error) {
	return s.user, s.err
}

func invokeProtect(t *testing.T, finder UserFinder, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := Protect(testSecret, finder)(next)(c)
	return c, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Status
}

func TestProtectMissingToken(t *testing.T) {
	_, err := invokeProtect(t, stubFinder{}, "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestProtectNonBearerScheme(t *testing.T) {
	_, err := invokeProtect(t, stubFinder{}, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestProtectGarbageToken(t *testing.T) {
	_, err := invokeProtect(t, stubFinder{}, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestProtectExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, -1)
	require.NoError(t, err)

	_, err = invokeProtect(t, stubFinder{}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestProtectDeletedUser(t *testing.T) {
	// Signature and expiry are fine, but the subject no longer resolves
	// to a row: the stale session must be rejected.
	tok, err := utils.NewAccessToken(testSecret, 7, 30)
	require.NoError(t, err)

	_, err = invokeProtect(t, stubFinder{err: sql.ErrNoRows}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestProtectAttachesUser(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, 30)
	require.NoError(t, err)

	want := model.User{ID: 7, Email: "jane@x.com", Role: model.RoleCitizen}
	c, err := invokeProtect(t, stubFinder{user: want}, "Bearer "+tok.Token)
	require.NoError(t, err)

	got, ok := CurrentUser(c)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Email, got.Email)
}
