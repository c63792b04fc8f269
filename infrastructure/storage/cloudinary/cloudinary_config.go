// infrastructure/storage/cloudinary/cloudinary_config.go
package cloudinary

// CloudinaryConfig การตั้งค่าสำหรับ Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}
