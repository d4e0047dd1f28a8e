package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
	"github.com/mo-amir99/coursetrack-server-go/internal/testsupport"
	"github.com/mo-amir99/coursetrack-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
)

const secret = "test-secret"

func newRouter(t *testing.T) (*gin.Engine, *AuthMiddleware) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testsupport.OpenDB(t, &user.User{})
	auth := NewAuthMiddleware(db, secret, logger.Discard())

	router := gin.New()
	router.GET("/me", auth.AuthenticateToken(), func(c *gin.Context) {
		usr, ok := GetUserFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": usr.ID, "username": usr.Username})
	})
	return router, auth
}

func get(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateToken_SyncsUser(t *testing.T) {
	router, auth := newRouter(t)
	id := uuid.New()

	token, err := jwt.GenerateAccessToken(id, "alice", secret, time.Hour)
	require.NoError(t, err)

	rec := get(router, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	names, err := user.UsernamesByID(t.Context(), auth.db, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Equal(t, "alice", names[id])

	renamed, err := jwt.GenerateAccessToken(id, "alice.smith", secret, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(router, "Bearer "+renamed).Code)

	names, err = user.UsernamesByID(t.Context(), auth.db, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Equal(t, "alice.smith", names[id])

	total, err := user.Count(t.Context(), auth.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAuthenticateToken_Rejections(t *testing.T) {
	router, _ := newRouter(t)
	id := uuid.New()

	expired, err := jwt.GenerateAccessToken(id, "alice", secret, -time.Minute)
	require.NoError(t, err)
	foreign, err := jwt.GenerateAccessToken(id, "alice", "another-secret", time.Hour)
	require.NoError(t, err)
	anonymous, err := jwt.GenerateAccessToken(uuid.Nil, "ghost", secret, time.Hour)
	require.NoError(t, err)
	nameless, err := jwt.GenerateAccessToken(id, "  ", secret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer   "},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + foreign},
		{name: "nil id", header: "Bearer " + anonymous},
		{name: "blank username", header: "Bearer " + nameless},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestAuthenticateToken_UsernameTakenByAnotherIdentity(t *testing.T) {
	router, _ := newRouter(t)

	first, err := jwt.GenerateAccessToken(uuid.New(), "bob", secret, time.Hour)
	require.NoError(t, err)
	second, err := jwt.GenerateAccessToken(uuid.New(), "bob", secret, time.Hour)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, get(router, "Bearer "+first).Code)
	assert.Equal(t, http.StatusConflict, get(router, "Bearer "+second).Code)
}
