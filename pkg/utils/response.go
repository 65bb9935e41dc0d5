package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collabboard/pkg/errors"
)

// Response HTTP 状态恒为 200，业务结果看 code
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 管理端分页列表
type PageResponse struct {
	Response
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: errors.CodeSuccess, Message: message, Data: data})
}

func PageSuccess(c *gin.Context, data interface{}, total int64, page, size int) {
	resp := PageResponse{
		Response: Response{Code: errors.CodeSuccess, Message: "success", Data: data},
		Total:    total,
		Page:     page,
		Size:     size,
	}
	if size > 0 {
		resp.Pages = int((total + int64(size) - 1) / int64(size))
	}
	c.JSON(http.StatusOK, resp)
}

// Error 非 AppError 按内部错误返回，不暴露原始信息
func Error(c *gin.Context, err error) {
	ErrorWithCode(c, errors.CodeOf(err), errors.MessageOf(err))
}

func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{Code: code, Message: message})
}

// BindError 请求绑定或校验失败，detail 逐字段说明原因
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeBadRequest,
		Message: errors.ErrBadRequest.Message,
		Detail:  FormatValidationError(err),
	})
}
