package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tables", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleManager, 5)
	require.NoError(t, err)

	rec, c := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	id, ok := UserID(c)
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, model.RoleManager, CurrentRole(c))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, model.RoleStaff, 5)
	require.NoError(t, err)

	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleStaff, -1)
	require.NoError(t, err)

	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    model.Role
		allowed []model.Role
		want    int
	}{
		{"staff on staff route", model.RoleStaff, []model.Role{model.RoleStaff, model.RoleManager, model.RoleAdmin}, http.StatusOK},
		{"admin on kitchen route", model.RoleAdmin, []model.Role{model.RoleKitchen, model.RoleAdmin}, http.StatusOK},
		{"staff on kitchen route", model.RoleStaff, []model.Role{model.RoleKitchen, model.RoleAdmin}, http.StatusForbidden},
		{"guest anywhere", model.RoleGuest, []model.Role{model.RoleStaff}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := utils.NewAccessToken(testSecret, 1, tt.role, 5)
			require.NoError(t, err)

			rec, _ := doRequest(t,
				[]echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(tt.allowed...)},
				"Bearer "+tok.Token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRoleWithoutJWTAuth(t *testing.T) {
	rec, _ := doRequest(t, []echo.MiddlewareFunc{RequireRole(model.RoleAdmin)}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "no role in context means no access")
}
