package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/jwt"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// 上下文键
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenID  = "token_id"
	CtxTokenExp = "token_exp"
)

// Blacklist 已注销 Token 查询，*redis.Client 实现该接口
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 角色在此解析为 workflow.Role 后注入上下文。
// blacklist 为 nil 时不检查注销状态
func JWTAuth(jwtMgr *jwt.Manager, blacklist Blacklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, 40100, "缺少认证头")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Abort(c, http.StatusUnauthorized, 40100, "认证头格式无效")
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil || claims.TokenType != "access" {
			response.Abort(c, http.StatusUnauthorized, 40100, "Token 无效或已过期")
			return
		}

		role, err := workflow.ParseRole(claims.Role)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, 40100, "Token 角色无效")
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Redis 不可用时放行，与限流降级策略一致
				logger.Warn("查询 Token 黑名单失败", zap.Error(err))
			} else if revoked {
				response.Abort(c, http.StatusUnauthorized, 40100, "Token 已注销")
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, role)
		c.Set(CtxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		} else {
			c.Set(CtxTokenExp, time.Time{})
		}

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRole)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, 40100, "未认证")
			return
		}

		role, _ := v.(workflow.Role)
		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, 40300, "无权限访问")
	}
}
