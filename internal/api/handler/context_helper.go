package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/api/middleware"
	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取当前用户。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (workflow.Actor, bool) {
	userID := c.GetString(middleware.CtxUserID)
	v, exists := c.Get(middleware.CtxRole)
	role, ok := v.(workflow.Role)
	if userID == "" || !exists || !ok {
		response.Unauthorized(c, 40100, "未认证")
		return workflow.Actor{}, false
	}
	return workflow.Actor{UserID: userID, Role: role}, true
}

// tokenInfo 当前 Access Token 的 jti 与过期时间
func tokenInfo(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return c.GetString(middleware.CtxTokenID), t
}

// parseUintParam 解析路径中的数字 ID
func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 40000, "无效的 "+name)
		return 0, false
	}
	return id, true
}

// bindError 参数绑定或校验失败，请求体超限时返回 413
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 41300, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 40000, "参数校验失败", dto.TranslateError(err, "请求格式错误"))
}

// writeError 业务错误按分类映射状态码，其余记录日志后返回 500
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	if appErr, ok := pkgerrors.As(err); ok && appErr.Kind != pkgerrors.KindInternal {
		response.Error(c, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message)
		return
	}
	_ = c.Error(err)
	logger.Error("请求处理失败",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	response.InternalError(c)
}
