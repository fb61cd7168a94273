package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tokens *TokenIssuer, revoked *RevocationStore) (*gin.Engine, *bool) {
	called := false
	r := gin.New()
	r.GET("/me", RequireBearer(tokens, revoked), func(c *gin.Context) {
		called = true
		c.JSON(http.StatusOK, gin.H{"user": UserIDFromContext(c)})
	})
	return r, &called
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireBearer_Rejects(t *testing.T) {
	tokens := NewTokenIssuer("k", "tasktracker", time.Hour)
	expired, err := NewTokenIssuer("k", "tasktracker", -time.Minute).Issue(context.Background(), dom.User{ID: "u1"})
	require.NoError(t, err)
	forged, err := NewTokenIssuer("other", "tasktracker", time.Hour).Issue(context.Background(), dom.User{ID: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", "authorization required"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "authorization required"},
		{"malformed", "Bearer garbage", "invalid token"},
		{"bad signature", "Bearer " + forged, "invalid token"},
		{"expired", "Bearer " + expired, "token expired"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, called := newProtectedRouter(tokens, nil)
			w := doGet(r, tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.msg)
			assert.False(t, *called, "downstream handler must not run")
		})
	}
}

func TestRequireBearer_SetsUserID(t *testing.T) {
	tokens := NewTokenIssuer("k", "tasktracker", time.Hour)
	tok, err := tokens.Issue(context.Background(), dom.User{ID: "u42"})
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + tok, "bearer " + tok, tok} {
		r, called := newProtectedRouter(tokens, nil)
		w := doGet(r, header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":"u42"}`, w.Body.String())
		assert.True(t, *called)
	}
}

func TestRequireBearer_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRevocationStore(rdb)

	tokens := NewTokenIssuer("k", "tasktracker", time.Hour)
	tok, err := tokens.Issue(context.Background(), dom.User{ID: "u1"})
	require.NoError(t, err)
	claims, err := tokens.Parse(tok)
	require.NoError(t, err)

	r, _ := newProtectedRouter(tokens, store)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+tok).Code)

	require.NoError(t, store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	w := doGet(r, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token revoked")
}
