package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/anvilworks/cms-api/utils"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// claimsFromHeader verifies the bearer token and extracts the identity
// claims. Token issuance lives with the upstream auth service; this layer
// only resolves an already-issued identity.
func claimsFromHeader(c *gin.Context) (*utils.UserClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 {
		return nil, false
	}

	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(bearerToken[1], claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, false
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, false
	}

	userClaims := &utils.UserClaims{UserID: uint(userID)}
	if name, ok := claims["name"].(string); ok {
		userClaims.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		userClaims.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		userClaims.Role = role
	}
	return userClaims, true
}

// AuthRequired rejects requests without a valid token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			c.Abort()
			return
		}
		c.Set(string(utils.UserContextKey), claims)
		c.Next()
	}
}

// OptionalAuth resolves identity when a token is present and lets anonymous
// requests through. Guest-capable endpoints (create, vote, report) use this.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c); ok {
			c.Set(string(utils.UserContextKey), claims)
		}
		c.Next()
	}
}

// ModeratorRequired gates the admin surface. Runs after AuthRequired.
func ModeratorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := utils.GetActor(c)
		if !actor.IsModerator() {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Moderator permission required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
