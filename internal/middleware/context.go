package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/util"
)

// UserLookup resolves a user ID taken from a verified token.
type UserLookup interface {
	GetUserByID(userID uint) (*models.User, error)
}

// AttachUserToContext attaches a user to the context. Handlers that need a
// user reject the request when none could be attached.
func AttachUserToContext(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := util.GetUserIDFromContext(c)
		if err != nil {
			c.Set("user", nil)
			c.Next()
			return
		}

		user, err := users.GetUserByID(userID)
		if err != nil {
			c.Set("user", nil)
		} else {
			c.Set("user", user)
		}
		c.Next()
	}
}
