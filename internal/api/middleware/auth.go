package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"collabboard/internal/model"
	"collabboard/internal/service"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
	"collabboard/pkg/utils"
)

// AuthMiddleware JWT认证中间件，Token 解析出的用户写入 context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "缺少Authorization Header")
			c.Abort()
			return
		}

		// 检查Bearer前缀
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			utils.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "Authorization格式错误")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix))

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.CtxUser, user)
		c.Set(constants.CtxUserID, user.ID)
		c.Set(constants.CtxUserRole, user.Role)

		c.Next()
	}
}

// RequireRole 系统角色校验，需放在 AuthMiddleware 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "未登录")
			c.Abort()
			return
		}
		if !lo.Contains(roles, user.Role) {
			utils.ErrorWithCode(c, pkgErrors.CodeForbidden, "权限不足")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，未认证时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(constants.CtxUser)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
