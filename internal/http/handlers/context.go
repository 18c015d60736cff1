package handlers

import (
	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// getClaims 从上下文取令牌声明（由鉴权中间件放入）
func getClaims(c *gin.Context) (*service.JWTClaims, bool) {
	value, exists := c.Get("jwt_claims")
	if !exists {
		respondError(c, response.CodeUnauthorized, "未登录", nil)
		return nil, false
	}
	claims, ok := value.(*service.JWTClaims)
	if !ok || claims == nil {
		respondError(c, response.CodeInternal, "身份信息类型错误", nil)
		return nil, false
	}
	return claims, true
}

// getUserID 从上下文取当前用户 ID
func getUserID(c *gin.Context) (uint, bool) {
	claims, ok := getClaims(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

// getCurrentUser 解析当前活跃用户（需要完整用户记录的接口使用）
func (h *Handler) getCurrentUser(c *gin.Context) (*models.User, bool) {
	claims, ok := getClaims(c)
	if !ok {
		return nil, false
	}
	user, err := h.AuthService.ResolveActiveUser(claims)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return user, true
}
