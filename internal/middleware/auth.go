package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rusdhi-de/clinic-api/internal/handler"
	"github.com/rusdhi-de/clinic-api/internal/model"
	authService "github.com/rusdhi-de/clinic-api/internal/service/auth"
)

const (
	// ContextPrincipal is the gin context key holding the resolved principal.
	ContextPrincipal = "principal"
	// ContextToken holds the raw session token of the current request.
	ContextToken = "session_token"
	// SessionCookie carries the session token for browser clients; API
	// clients can use the Authorization header instead.
	SessionCookie = "session"
)

type AuthMiddleware struct {
	authService *authService.Service
}

func NewAuthMiddleware(authService *authService.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// token extracts the session token from the Authorization header or the
// session cookie.
func (m *AuthMiddleware) token(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Authenticate resolves the session token into a principal and stores it in
// the request context. Missing, malformed and revoked tokens all fail the
// same way.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
			c.Abort()
			return
		}

		principal, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// RequireAdmin rejects any principal that is not of the admin kind.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok || !principal.IsAdmin() {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePatient rejects any principal that is not of the patient kind.
func (m *AuthMiddleware) RequirePatient() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok || !principal.IsPatient() {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated principal set by Authenticate.
func Principal(c *gin.Context) (*model.Principal, bool) {
	v, exists := c.Get(ContextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := v.(*model.Principal)
	return principal, ok
}
