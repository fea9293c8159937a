package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// claims may arrive as int, int64, float64 or string depending on the issuer
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID, roleID int) {
	if id, ok := getIntFromCtx(c, "user_id"); ok {
		userID = id
	}
	if id, ok := getIntFromCtx(c, "role_id"); ok {
		roleID = id
	}
	return
}

// sessionKey scopes the page state to the authenticated user.
func sessionKey(c *gin.Context) string {
	userID, _ := getUserAndRole(c)
	return "user:" + strconv.Itoa(userID)
}
