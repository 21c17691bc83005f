package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 上传素材相关常量
const (
	MimeAudio       = "audio/"
	MimeImage       = "image/"
	MimeVideo       = "video/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedAudioExtensions = []string{".mp3", ".m4a", ".ogg", ".wav", ".webm"}
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}
)
