// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's Principal from the identity headers set by
// the upstream gateway. Credentials are never inspected here: the gateway has
// already authenticated the caller and forwards the outcome.
//
//	X-User-ID:   opaque user identifier; absent means anonymous
//	X-User-Role: "voter" (default) or "admin"
//
// Downstream code reads the result with PrincipalFrom. Authorization is
// decided by the services, which receive the Principal explicitly.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
)

// Identity headers forwarded by the gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const ctxKeyPrincipal = "principal"

// maxUserIDLen matches the width of the user id columns.
const maxUserIDLen = 64

// Authenticate stores the request's Principal in the Gin context.
//
// A missing X-User-ID yields the anonymous principal. An unknown role or an
// oversized user id is rejected with 401, since the gateway contract was
// violated and the caller's rights cannot be determined.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			c.Set(ctxKeyPrincipal, domain.Principal{})
			c.Next()
			return
		}
		if len(uid) > maxUserIDLen {
			abortUnauthorized(c, "invalid user id")
			return
		}
		role, err := domain.ParseRole(c.GetHeader(HeaderUserRole))
		if err != nil {
			abortUnauthorized(c, "unknown role")
			return
		}

		p := domain.Principal{UserID: uid, Role: role}
		c.Set(ctxKeyPrincipal, p)

		// Enrich the request-scoped logger installed by Logger.
		lg := LoggerFrom(c).With().
			Str("user_id", p.UserID).
			Str("role", p.Role.String()).
			Logger()
		c.Set(ctxKeyLogger, &lg)

		c.Next()
	}
}

// PrincipalFrom returns the Principal resolved by Authenticate, or the
// anonymous principal when the middleware did not run.
func PrincipalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(ctxKeyPrincipal); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
