package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/codes"

	"survivalboard/utils/response"
)

const (
	RoleAdmin   = "admin"
	adminIssuer = "survivalboard"
)

// AdminClaims is the payload of an operator token
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// NewAdminToken signs an HS256 operator token valid for ttl
func NewAdminToken(secret string, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin JWT secret is not configured")
	}
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: RoleAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAdminToken verifies signature, expiry and role
func ParseAdminToken(secret, token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, errors.New("token does not carry the admin role")
	}
	return claims, nil
}

// AdminAuth guards operator endpoints with a Bearer token. An empty secret
// disables them entirely.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.Error(c, codes.PermissionDenied, "admin endpoints are disabled")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error(c, codes.Unauthenticated, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := ParseAdminToken(secret, token)
		if err != nil {
			response.Error(c, codes.Unauthenticated, "invalid token")
			c.Abort()
			return
		}
		c.Set("admin", claims.Subject)
		c.Next()
	}
}
