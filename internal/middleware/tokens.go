package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/dapur-api/internal/config"
)

// Token validation errors.
var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidUserID    = errors.New("invalid user_id in token")
)

// ParseAccessToken validates an HS256 access token and returns its user ID.
func ParseAccessToken(tokenString, secret string) (uint, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	// Refresh tokens are only accepted by the refresh endpoint
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return 0, ErrInvalidTokenType
	}

	// JSON numbers decode as float64
	idFloat, ok := claims["user_id"].(float64)
	if !ok || idFloat <= 0 {
		return 0, ErrInvalidUserID
	}
	return uint(idFloat), nil
}

// VerifyTokenMiddleware verifies the JWT token provided in the Authorization header.
func VerifyTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		userID, err := ParseAccessToken(tokenString, cfg.EnvVars.JwtSecretKey)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrInvalidUserID) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"message": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
