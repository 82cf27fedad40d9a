package utils

import (
	"fmt"

	"github.com/anvilworks/cms-api/services"
	"github.com/gin-gonic/gin"
)

// UserClaims is what the identity resolver middleware extracts from a
// verified token.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type contextKey string

const UserContextKey contextKey = "user"

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}

// GetActor converts the request identity into the typed actor the services
// consume. Returns nil for anonymous requests.
func GetActor(c *gin.Context) *services.Actor {
	claims := GetUser(c)
	if claims == nil {
		return nil
	}
	return &services.Actor{
		ID:          claims.UserID,
		Name:        claims.Name,
		Email:       claims.Email,
		Permissions: services.PermissionsForRole(claims.Role),
	}
}

// VoterKey is the opaque dedup identity for the voting ledger: the user id
// when authenticated, the request-origin IP otherwise.
func VoterKey(c *gin.Context) string {
	if claims := GetUser(c); claims != nil {
		return fmt.Sprintf("user:%d", claims.UserID)
	}
	return "ip:" + c.ClientIP()
}
