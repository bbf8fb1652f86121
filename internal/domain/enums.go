package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// InvoiceStatus tracks an invoice through extraction and validation.
type InvoiceStatus string

const (
	// InvoiceStatusQueued waits for the extraction worker.
	InvoiceStatusQueued     InvoiceStatus = "queued"
	InvoiceStatusProcessing InvoiceStatus = "processing"
	// InvoiceStatusAccepted passed validation with no errors.
	InvoiceStatusAccepted InvoiceStatus = "accepted"
	// InvoiceStatusRejected has one or more validation errors.
	InvoiceStatusRejected InvoiceStatus = "rejected"
	// InvoiceStatusFailed could not be extracted or validated.
	InvoiceStatusFailed InvoiceStatus = "failed"
)

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusQueued, InvoiceStatusProcessing, InvoiceStatusAccepted,
		InvoiceStatusRejected, InvoiceStatusFailed:
		return true
	}
	return false
}
