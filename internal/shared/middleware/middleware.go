package middleware

import (
	"net/http"
	"strings"

	"clubtrips/internal/shared/utils/response"
	"clubtrips/internal/users"
	"clubtrips/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by JWTAuth
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserName  = "user_name"
	ContextUserRole  = "user_role"
)

// JWTAuth creates a JWT authentication middleware. Tokens are issued by the
// identity provider; this service only verifies them.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		claims, err := parseBearer(authHeader, secret)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func unauthorized(c *gin.Context, reason string) {
	logger.GetDefault().LogAuthFailure(c.Request.Context(), reason, c.ClientIP())
	response.Error(c, http.StatusUnauthorized, reason, nil)
}

func parseBearer(authHeader, secret string) (jwt.MapClaims, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBadHeader
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errBadToken
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, errBadTokenType
	}
	if sub, _ := claims["user_id"].(string); sub == "" {
		return nil, errBadToken
	}
	if !users.IsValidRole(claimString(claims, "role")) {
		return nil, errBadRole
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) {
	c.Set(ContextUserID, claimString(claims, "user_id"))
	c.Set(ContextUserEmail, claimString(claims, "email"))
	c.Set(ContextUserName, claimString(claims, "name"))
	c.Set(ContextUserRole, strings.ToUpper(claimString(claims, "role")))
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// ActorFromContext returns the identified caller, if any
func ActorFromContext(c *gin.Context) (users.Actor, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return users.Actor{}, false
	}
	return users.Actor{
		UserID: userID,
		Name:   c.GetString(ContextUserName),
		Email:  c.GetString(ContextUserEmail),
		Role:   users.Role(c.GetString(ContextUserRole)),
	}, true
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(string(users.RoleAdmin))
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			response.Error(c, http.StatusUnauthorized, "user role not found in context", nil)
			return
		}

		for _, role := range requiredRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
	}
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errBadHeader    authError = "authorization header format must be Bearer {token}"
	errBadToken     authError = "invalid or expired token"
	errBadTokenType authError = "invalid token type"
	errBadRole      authError = "token carries an unknown role"
)
