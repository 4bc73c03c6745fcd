package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rakbuku/rakbuku/pkg/binder"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/profiles"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := setupTestDB(t)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler(false).Handle

	provider := identity.NewLocalProvider(db, "test-secret", time.Hour)
	RegisterRoutes(e, provider, profiles.NewService(db))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestSignUpLoginMeLogout(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	rec, body := do(t, e, http.MethodPost, "/auth/signup", `{"email":"reader@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "member", data["role"])

	rec, body = do(t, e, http.MethodPost, "/auth/login", `{"email":"reader@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := body["access_token"].(string)
	assert.Equal(t, "bearer", body["token_type"])

	rec, body = do(t, e, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := body["data"].(map[string]interface{})
	assert.Equal(t, "reader@example.com", me["email"])
	assert.Equal(t, "member", me["role"])
	assert.Equal(t, false, me["is_admin"])

	rec, _ = do(t, e, http.MethodPost, "/auth/logout", "", token)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	rec, _ := do(t, e, http.MethodPost, "/auth/signup", `{"email":"reader@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := do(t, e, http.MethodPost, "/auth/login", `{"email":"reader@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["error"])
}

func TestSignUp_Validation(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	rec, body := do(t, e, http.MethodPost, "/auth/signup", `{"email":"not-an-email","password":"secret123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `"email" is not a valid email`, body["error"])
}

func TestMe_RequiresHeader(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	rec, body := do(t, e, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing Authorization header", body["error"])

	rec, _ = do(t, e, http.MethodGet, "/auth/me", "", "garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
