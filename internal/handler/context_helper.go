package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jipjipmoney/keywords-api/internal/middleware"
	"github.com/jipjipmoney/keywords-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func usernameFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Username
}
