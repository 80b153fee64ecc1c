package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	userIDKey = "auth_user_id"
	roleKey   = "auth_role"
)

// Claims are the fields the storefront puts into its access tokens.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate verifies an optional HS256 bearer token. Requests without
// an Authorization header pass through anonymously; a header that does
// not carry a valid token is rejected with 401.
func Authenticate(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		claims, err := parseBearer(header, key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userIDKey, claims.ID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(userIDKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		if c.GetString(roleKey) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Next()
	}
}

// UserID returns the authenticated user id, or nil for anonymous requests.
func UserID(c *gin.Context) *int64 {
	v, ok := c.Get(userIDKey)
	if !ok {
		return nil
	}

	id, ok := v.(int64)
	if !ok {
		return nil
	}

	return &id
}

// Sign issues a token for the given claims. Used by tests and tooling.
func Sign(secret string, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return signed, nil
}

func parseBearer(header string, key []byte) (*Claims, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("invalid authorization header")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt.ParseWithClaims: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return &claims, nil
}
