package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Dm-vYzion/StoryForge/cache"
	"github.com/Dm-vYzion/StoryForge/config"
	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
	EmailKey  = "user_email"

	// TokenCookie is the HTTP-only cookie carrying the session token.
	TokenCookie = "token"
)

// tokenFromRequest reads the token from the Authorization header or the
// session cookie.
func tokenFromRequest(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if tok, err := ctx.Cookie(TokenCookie); err == nil {
		return tok
	}
	return ""
}

// Auth validates the session token (bearer header or cookie) and checks
// the session cache.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr := tokenFromRequest(ctx)
		if tokenStr == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "error": "Authentication required",
			})
			return
		}

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "error": "Invalid token",
			})
			return
		}

		// Check session still valid in cache.
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		exists, err := c.Exists(cacheCtx, "session:"+tokenStr)
		if err != nil || !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "error": "Session expired",
			})
			return
		}

		ctx.Set(UserIDKey, claims.UserID)
		ctx.Set(EmailKey, claims.Email)
		ctx.Next()
	}
}

// OptionalAuth attaches the user identity when a valid token is present,
// but lets unauthenticated requests through.
func OptionalAuth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr := tokenFromRequest(ctx)
		if tokenStr == "" {
			ctx.Next()
			return
		}
		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.Next()
			return
		}
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if exists, err := c.Exists(cacheCtx, "session:"+tokenStr); err == nil && exists {
			ctx.Set(UserIDKey, claims.UserID)
			ctx.Set(EmailKey, claims.Email)
		}
		ctx.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) int64 {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(int64)
	}
	return 0
}
