package upload

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for files outside the accepted set.
var ErrUnsupportedType = errors.New("unsupported file type")

// UnsupportedTypeMessage is what the form shows for ErrUnsupportedType.
const UnsupportedTypeMessage = "Please upload a CSV, PDF, or image file (JPG, PNG, WebP, HEIC)"

// Kind groups accepted files by how the form treats them.
type Kind int

const (
	KindUnsupported Kind = iota
	KindCSV
	KindPDF
	KindImage
)

// AcceptAttr is the value for the file input's accept attribute.
const AcceptAttr = ".csv,.pdf,.jpg,.jpeg,.png,.webp,.heic,.heif"

var kinds = map[string]Kind{
	".csv":  KindCSV,
	".pdf":  KindPDF,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".webp": KindImage,
	".heic": KindImage,
	".heif": KindImage,
}

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// KindOf classifies a filename by its extension, case-insensitively.
func KindOf(filename string) Kind {
	return kinds[strings.ToLower(filepath.Ext(filename))]
}

// IsAccepted reports whether the filename has an accepted extension.
func IsAccepted(filename string) bool {
	return KindOf(filename) != KindUnsupported
}

// IsImage reports whether the file gets an image preview.
func IsImage(filename string) bool {
	return KindOf(filename) == KindImage
}

// ContentType returns the MIME type for an accepted filename, or
// application/octet-stream.
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
