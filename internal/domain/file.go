package domain

// FileType classifies what an uploaded file is used for.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeOther    FileType = "other"
)

// File is uploaded media: animal photos, profile pictures, application attachments.
type File struct {
	Base
	Filename  string   `json:"filename"`
	FileType  FileType `json:"fileType"`
	MimeType  string   `json:"mimeType,omitempty"`
	Size      int64    `json:"size"`
	SourceURL string   `json:"sourceUrl"`
	OwnerID   string   `json:"ownerId,omitempty"`
}
