package admin

import (
	handlershared "github.com/roofdash/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.admin_id_invalid", "error.admin_id_type_invalid")
}

func getAdminUsername(c *gin.Context) string {
	value, ok := c.Get("username")
	if !ok {
		return ""
	}
	if username, ok := value.(string); ok {
		return username
	}
	return ""
}
