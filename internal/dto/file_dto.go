package dto

import "time"

// UploadFileRequest 上传文件表单
type UploadFileRequest struct {
	ProjectID int64 `form:"project_id" binding:"required,min=1"`
}

// FileResponse 文件响应
type FileResponse struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project_id"`
	UploadedBy   int64      `json:"uploaded_by"`
	Uploader     *UserBrief `json:"uploader,omitempty"`
	FileURL      string     `json:"file_url"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name"`
	FileSize     int64      `json:"file_size"`
	MimeType     string     `json:"mime_type"`
	CreatedAt    time.Time  `json:"created_at"`
}
