package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/furukawa-sg/sg-reserve-api/internal/middleware"
)

func authFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextAuthKey)
	if !exists {
		return ""
	}
	auth, ok := value.(string)
	if !ok {
		return ""
	}
	return auth
}

func subjectFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextSubjectKey)
	if !exists {
		return ""
	}
	subject, ok := value.(string)
	if !ok {
		return ""
	}
	return subject
}
