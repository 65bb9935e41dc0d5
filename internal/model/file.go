package model

const FileTableName = "files"

// File 上传文件元数据，实体存放在外部存储
type File struct {
	BaseModel
	ProjectID    int64  `gorm:"not null;index" json:"project_id"`
	UploadedBy   int64  `gorm:"not null;index" json:"uploaded_by"`
	FileURL      string `gorm:"size:1024;not null" json:"file_url"`
	Filename     string `gorm:"size:255;not null" json:"filename"`
	OriginalName string `gorm:"size:255;not null" json:"original_name"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	MimeType     string `gorm:"size:127" json:"mime_type"`
	StorageID    string `gorm:"size:255" json:"storage_id"`

	Uploader *User `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

func (File) TableName() string {
	return FileTableName
}
