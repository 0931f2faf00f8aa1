package auth

import "github.com/gin-gonic/gin"

// GetUserID returns the authenticated guest's account ID, or an empty
// string outside an authenticated request.
func GetUserID(c *gin.Context) string {
	return stringFromContext(c, ctxUserIDKey)
}

// GetUserEmail returns the authenticated guest's email, or an empty string.
func GetUserEmail(c *gin.Context) string {
	return stringFromContext(c, ctxUserEmailKey)
}

func stringFromContext(c *gin.Context, key string) string {
	v, ok := c.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
