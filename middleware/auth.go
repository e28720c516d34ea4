package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/olekhov/mediapress/utils"
)

// ContextPrincipalKey is the key used to store the authenticated principal in Gin context.
const ContextPrincipalKey = "principal"

// Principal is the already-authenticated identity injected by the auth layer.
// This subsystem trusts it and never validates credentials itself.
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// Elevated reports whether the principal may mutate records it does not own.
func (p Principal) Elevated() bool {
	return utils.Elevated(p.Role)
}

// AuthRequired ensures the request is authenticated via JWT and resolves the
// bearer token into a Principal.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextPrincipalKey, Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		ctx.Next()
	}
}

// RequireEditor rejects principals without an elevated role. Uploads are
// restricted to editors and admins.
func RequireEditor() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, ok := CurrentPrincipal(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "unauthorized")
			ctx.Abort()
			return
		}
		if !p.Elevated() {
			utils.Error(ctx, http.StatusForbidden, 40301, "editor role required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentPrincipal extracts the authenticated principal from the context.
func CurrentPrincipal(ctx *gin.Context) (Principal, bool) {
	value, exists := ctx.Get(ContextPrincipalKey)
	if !exists {
		return Principal{}, false
	}
	p, ok := value.(Principal)
	return p, ok
}
