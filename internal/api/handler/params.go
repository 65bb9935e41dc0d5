package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"collabboard/internal/api/middleware"
	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
	"collabboard/pkg/utils"
)

// pathID 解析路径中的ID，失败时已写回响应
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorWithCode(c, pkgErrors.CodeBadRequest, "无效的"+name)
		return 0, false
	}
	return id, true
}

// currentUser 认证中间件之后总能取到
func currentUser(c *gin.Context) (*model.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "未登录")
		return nil, false
	}
	return user, true
}

func bindError(c *gin.Context, err error) {
	utils.BindError(c, err)
}
