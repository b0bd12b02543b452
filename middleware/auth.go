package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the access token claims issued by the auth provider
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 access token and returns its subject as a member id
func ParseToken(secret, tokenString string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !token.Valid {
		return uuid.Nil, nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid subject: %w", err)
	}
	return userID, claims, nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func isServiceKey(serviceRoleKey, token string) bool {
	return serviceRoleKey != "" && subtle.ConstantTimeCompare([]byte(serviceRoleKey), []byte(token)) == 1
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// Auth requires a valid member access token
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Authorization header required")
			return
		}

		userID, claims, err := ParseToken(jwtSecret, token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Set(contextKeyRole, claims.Role)
		c.Next()
	}
}

// ServiceRole requires the service role key as bearer token
func ServiceRole(serviceRoleKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Authorization header required")
			return
		}
		if !isServiceKey(serviceRoleKey, token) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Service role required"})
			return
		}

		c.Set(contextKeyServiceRole, true)
		c.Next()
	}
}

// AuthOrServiceRole accepts either the service role key or a member access token
func AuthOrServiceRole(jwtSecret, serviceRoleKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Authorization header required")
			return
		}

		if isServiceKey(serviceRoleKey, token) {
			c.Set(contextKeyServiceRole, true)
			c.Next()
			return
		}

		userID, claims, err := ParseToken(jwtSecret, token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Set(contextKeyRole, claims.Role)
		c.Next()
	}
}
