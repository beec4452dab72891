package middlewares

import (
	"campusgate/src/directory"
	"campusgate/src/types"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var testKey = []byte("secret")

func token(t *testing.T, key []byte, sub uint, exp time.Duration) string {
	t.Helper()
	claims := types.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(sub), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	dept := uint(1)
	dir := directory.NewMemoryDirectory(
		directory.Person{ID: 1, Name: "Asha", Role: types.ROLE_STUDENT, DepartmentID: &dept},
		directory.Person{ID: 2, Name: "Gate", Role: types.ROLE_SECURITY},
	)
	r := gin.New()
	r.Use(SecureHeaders)
	g := r.Group("/api/v1", NewAuthMiddleware(dir, testKey))
	g.GET("/me", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"data": CurrentPerson(ctx), "id": ctx.GetUint("id")})
	})
	g.GET("/gate", RequireRoles(types.ROLE_SECURITY), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := setupRouter()

	w := do(r, "/api/v1/me", token(t, testKey, 1, time.Hour))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student", gjson.Get(w.Body.String(), "data.role").String())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "id").Int())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/v1/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/v1/me", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/v1/me", token(t, []byte("other"), 1, time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/v1/me", token(t, testKey, 1, -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/v1/me", token(t, testKey, 99, time.Hour)).Code)
}

func TestAuthMiddlewareRejectsEmptyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := directory.NewMemoryDirectory(directory.Person{ID: 1, Name: "Asha", Role: types.ROLE_STUDENT})
	for _, key := range [][]byte{nil, []byte("")} {
		r := gin.New()
		r.GET("/me", NewAuthMiddleware(dir, key), func(ctx *gin.Context) {
			ctx.Status(http.StatusOK)
		})
		w := do(r, "/me", token(t, []byte(""), 1, time.Hour))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", gjson.Get(w.Body.String(), "error").String())
	}
}

func TestRequireRoles(t *testing.T) {
	r := setupRouter()
	assert.Equal(t, http.StatusNoContent, do(r, "/api/v1/gate", token(t, testKey, 2, time.Hour)).Code)

	w := do(r, "/api/v1/gate", token(t, testKey, 1, time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", gjson.Get(w.Body.String(), "kind").String())
}
