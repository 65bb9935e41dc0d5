package handler

import (
	"github.com/gin-gonic/gin"

	"collabboard/internal/dto"
	"collabboard/internal/service"
	pkgErrors "collabboard/pkg/errors"
	"collabboard/pkg/utils"
)

const uploadField = "file"

type FileHandler struct {
	fileService service.FileService
}

func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload 上传文件
// @Summary 上传项目文件
// @Tags File
// @Accept multipart/form-data
// @Produce json
// @Param project_id formData int64 true "项目ID"
// @Param file formData file true "文件"
// @Success 200 {object} utils.Response{data=dto.FileResponse}
// @Router /api/files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UploadFileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		utils.ErrorWithCode(c, pkgErrors.CodeBadRequest, "未选择文件")
		return
	}

	f, err := header.Open()
	if err != nil {
		utils.Error(c, pkgErrors.Wrap(pkgErrors.CodeInternalError, "读取上传文件失败", err))
		return
	}
	defer f.Close()

	file, err := h.fileService.Upload(c.Request.Context(), user, req.ProjectID, &service.FileUpload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      f,
	})
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, file)
}

// List 项目文件列表
// @Summary 项目文件列表
// @Tags File
// @Produce json
// @Param projectId path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.FileResponse}
// @Router /api/files/{projectId} [get]
func (h *FileHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	files, err := h.fileService.List(c.Request.Context(), user.ID, projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, files)
}

// Delete 删除文件
// @Summary 删除文件（同时删除存储中的对象）
// @Tags File
// @Produce json
// @Param fileId path int64 true "文件ID"
// @Success 200 {object} utils.Response
// @Router /api/files/{fileId} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c, "fileId")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), user.ID, fileID); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}
