package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/qaforum/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextRoleKey stores the role carried by the token.
	ContextRoleKey = "role"
	// ContextTokenKey stores the raw bearer token for logout.
	ContextTokenKey = "token"
	// ContextTokenExpiryKey stores the token expiry time.
	ContextTokenExpiryKey = "token_expires_at"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status, code, msg := authenticate(ctx)
		if code != 0 {
			utils.Error(ctx, status, code, msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through unchanged.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader("Authorization") != "" {
			_, _, _ = authenticate(ctx)
		}
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context) (int, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return http.StatusUnauthorized, 40101, "authorization header missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return http.StatusUnauthorized, 40102, "invalid authorization header format"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return http.StatusUnauthorized, 40103, "empty bearer token"
	}

	if utils.IsTokenBlacklisted(ctx.Request.Context(), tokenString) {
		return http.StatusUnauthorized, 40104, "token revoked"
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return http.StatusUnauthorized, 40105, "invalid token"
	}

	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextUsernameKey, claims.Username)
	ctx.Set(ContextRoleKey, claims.Role)
	ctx.Set(ContextTokenKey, tokenString)
	if claims.ExpiresAt != nil {
		ctx.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
	}
	return 0, 0, ""
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}

// CurrentRole returns the role from the token, empty for anonymous requests.
func CurrentRole(ctx *gin.Context) string {
	return ctx.GetString(ContextRoleKey)
}
