// domain/service/file_storage_service.go
package service

import "mime/multipart"

// FileUploadResult - ผลลัพธ์การอัปโหลดไฟล์
type FileUploadResult struct {
	URL          string
	Path         string
	PublicID     string
	ResourceType string
	Format       string
	Size         int
	Width        int
	Height       int
}

// FileStorageService เป็น interface สำหรับจัดเก็บไฟล์รูปภาพของข้อความ
type FileStorageService interface {
	UploadImage(file *multipart.FileHeader, folder string) (*FileUploadResult, error)
	DeleteFile(path string) error
	GetPublicURL(path string) string
}
