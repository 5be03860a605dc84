package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/railway-reservation/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func runJWT(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := JWTAuth(testSecret)(okHandler)(c)
	assert.NoError(t, err)
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 3, "USER", 15)
	assert.NoError(t, err)

	rec := runJWT(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":3`)
	assert.Contains(t, rec.Body.String(), `"USER"`)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec := runJWT(t, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	access, err := utils.NewAccessToken("other-secret", 3, "USER", 15)
	assert.NoError(t, err)

	rec := runJWT(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 3, "USER", -5)
	assert.NoError(t, err)

	rec := runJWT(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Tokens signed with "none" must not slip past the HMAC check.
func TestJWTAuthRejectsUnsignedToken(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 3, "role": "ADMIN"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	rec := runJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func runRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	err := RequireRole(allowed...)(okHandler)(c)
	assert.NoError(t, err)
	return rec
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRole(t, "ADMIN", "ADMIN").Code)
	assert.Equal(t, http.StatusOK, runRole(t, "USER", "USER", "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, "USER", "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, nil, "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, 42, "ADMIN").Code)
}
