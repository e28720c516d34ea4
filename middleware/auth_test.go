package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olekhov/mediapress/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newAuthRouter(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired()}, extra...)
	handlers = append(handlers, func(ctx *gin.Context) {
		p, _ := CurrentPrincipal(ctx)
		ctx.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredResolvesPrincipal(t *testing.T) {
	token, err := utils.GenerateToken(7, "casey", utils.RoleEditor, time.Hour)
	require.NoError(t, err)

	w := get(newAuthRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"role":"editor"`)
}

func TestAuthRequiredRejections(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code, "missing header")
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic abc").Code, "wrong scheme")
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer ").Code, "empty token")
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not.a.token").Code, "garbage token")

	expired, err := utils.GenerateToken(7, "casey", utils.RoleEditor, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+expired).Code, "expired token")
}

func TestRequireEditor(t *testing.T) {
	r := newAuthRouter(RequireEditor())

	editor, err := utils.GenerateToken(1, "ed", utils.RoleEditor, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+editor).Code)

	admin, err := utils.GenerateToken(2, "root", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+admin).Code)

	plain, err := utils.GenerateToken(3, "reader", utils.RoleUser, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+plain).Code)
}

func TestElevated(t *testing.T) {
	assert.True(t, Principal{Role: utils.RoleAdmin}.Elevated())
	assert.True(t, Principal{Role: utils.RoleEditor}.Elevated())
	assert.False(t, Principal{Role: utils.RoleUser}.Elevated())
	assert.False(t, Principal{}.Elevated())
}
