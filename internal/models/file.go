package models

// FileType partitions course documents into behavior instructions and knowledge content.
type FileType string

const (
	FileTypeBehavior FileType = "behavior"
	FileTypeContent  FileType = "content"
)

func (t FileType) Valid() bool {
	return t == FileTypeBehavior || t == FileTypeContent
}

type UploadedFile struct {
	ID          string    `json:"id"`
	AssistantID string    `json:"assistant_id"`
	FileName    string    `json:"file_name"`
	FileURL     *string   `json:"file_url"`
	FileSize    *int64    `json:"file_size"`
	UploadedAt  Timestamp `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by"`
	FileType    FileType  `json:"file_type,omitempty"`
}

// EffectiveType defaults an unset type to content.
func (f UploadedFile) EffectiveType() FileType {
	if f.FileType == "" {
		return FileTypeContent
	}
	return f.FileType
}

type FileList struct {
	Files []UploadedFile `json:"files"`
	Total int            `json:"total"`
}

// Download is a fetched file body.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}
