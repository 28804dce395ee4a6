package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buyinbuyout/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/private", RequireAuth(testSecret), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter()

	valid, err := auth.GenerateAccessToken(testSecret, 42, "alice", time.Now())
	require.NoError(t, err)
	expired, err := auth.GenerateAccessToken(testSecret, 42, "alice", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	foreign, err := auth.GenerateAccessToken([]byte("other"), 42, "alice", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusForbidden},
		{"expired token", "Bearer " + expired, http.StatusForbidden},
		{"wrong secret", "Bearer " + foreign, http.StatusForbidden},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(r, tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAuth_SetsUserID(t *testing.T) {
	token, err := auth.GenerateAccessToken(testSecret, 7, "bob", time.Now())
	require.NoError(t, err)

	rec := doGet(newAuthRouter(), "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":7}`, rec.Body.String())
}

func TestRequireAuth_ErrorEnvelope(t *testing.T) {
	rec := doGet(newAuthRouter(), "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":"error","status_code":401,"error":"Authorization is missing"}`, rec.Body.String())
}
