package router

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keyan-next/internal/authz"
	"github.com/keyan-next/internal/config"
	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

const claimsContextKey = "jwt_claims"
const identityContextKey = "identity"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(l *zap.Logger) gin.HandlerFunc {
	if l == nil {
		l = zap.L()
	}
	sugar := l.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// JWTAuthMiddleware JWT 鉴权中间件
// 只验证令牌本身并把声明放入上下文，身份分级判定交给后续中间件。
func JWTAuthMiddleware(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			response.Unauthorized(c, "服务端未配置签名密钥")
			c.Abort()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Unauthorized(c, "认证信息格式错误")
			c.Abort()
			return
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		claims := &service.JWTClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || claims.UserID == 0 {
			response.Unauthorized(c, "无效的 token")
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("is_superuser", claims.IsSuperuser)
		c.Next()
	}
}

// ClaimsFromContext 取出令牌声明
func ClaimsFromContext(c *gin.Context) *service.JWTClaims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*service.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// IdentityFromContext 取出判定后的有效身份
func IdentityFromContext(c *gin.Context) *service.Identity {
	value, ok := c.Get(identityContextKey)
	if !ok {
		return nil
	}
	identity, ok := value.(*service.Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequireReviewer 审核权限中间件
// 声明断言超管或科研管理员时直接放行，否则回查用户表。
func RequireReviewer(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authService.ResolveReviewer(ClaimsFromContext(c))
		if err != nil {
			if err == service.ErrPermissionDenied || err == service.ErrNotFound {
				response.Forbidden(c, service.ErrPermissionDenied.Error())
			} else {
				logger.Errorw("reviewer_resolve_failed", "error", err)
				response.Error(c, response.CodeInternal, "服务内部错误")
			}
			c.Abort()
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// RequireSuperuser 超管权限中间件
func RequireSuperuser(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authService.ResolveSuperuser(ClaimsFromContext(c))
		if err != nil {
			if err == service.ErrPermissionDenied || err == service.ErrNotFound {
				response.Forbidden(c, service.ErrPermissionDenied.Error())
			} else {
				logger.Errorw("superuser_resolve_failed", "error", err)
				response.Error(c, response.CodeInternal, "服务内部错误")
			}
			c.Abort()
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// RequirePermission 权限编码中间件
// 超管直接放行，其余按角色在执行索引中判定。
func RequirePermission(authzService *authz.Service, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			response.Unauthorized(c, "未登录")
			c.Abort()
			return
		}
		if claims.IsSuperuser {
			c.Next()
			return
		}

		allowed, err := authzService.CheckPermission(claims.Role, code)
		if err != nil {
			logger.Errorw("permission_check_failed",
				"role", claims.Role,
				"code", code,
				"error", err,
			)
			response.Error(c, response.CodeInternal, "服务内部错误")
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("permission_denied",
				"user_id", claims.UserID,
				"role", claims.Role,
				"code", code,
				"path", c.Request.URL.Path,
			)
			response.Forbidden(c, "没有操作权限")
			c.Abort()
			return
		}
		c.Next()
	}
}
