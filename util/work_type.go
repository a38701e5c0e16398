package util

import (
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/richardlehane/siegfried"
	"github.com/richardlehane/siegfried/pkg/static"
	"github.com/workledger/registry-services/constants"
)

var codeMimeTypes = []string{
	"application/javascript",
	"application/x-httpd-php",
	"application/x-python",
	"application/x-sh",
	"text/javascript",
	"text/x-c",
	"text/x-go",
	"text/x-java-source",
	"text/x-python",
	"text/x-shellscript",
}

var textMimeTypes = []string{
	"application/msword",
	"application/pdf",
	"application/rtf",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var extensionWorkTypes = map[string]string{
	"c":    constants.WorkTypeCode,
	"doc":  constants.WorkTypeText,
	"docx": constants.WorkTypeText,
	"gif":  constants.WorkTypeImage,
	"go":   constants.WorkTypeCode,
	"jpeg": constants.WorkTypeImage,
	"jpg":  constants.WorkTypeImage,
	"js":   constants.WorkTypeCode,
	"mp3":  constants.WorkTypeMusic,
	"mp4":  constants.WorkTypeVideo,
	"pdf":  constants.WorkTypeText,
	"png":  constants.WorkTypeImage,
	"py":   constants.WorkTypeCode,
	"txt":  constants.WorkTypeText,
}

// WorkTypeIdentifier guesses the work type of a file from its
// content, using siegfried's built-in PRONOM signatures. Falls back
// to the file extension when siegfried can't tell.
type WorkTypeIdentifier struct {
	once sync.Once
	sf   *siegfried.Siegfried
}

func NewWorkTypeIdentifier() *WorkTypeIdentifier {
	return &WorkTypeIdentifier{}
}

// Loading signatures takes a while, so we don't do it until the
// first file comes in.
func (w *WorkTypeIdentifier) load() *siegfried.Siegfried {
	w.once.Do(func() {
		w.sf = static.New()
	})
	return w.sf
}

// Identify returns the work type for the content in r. The name is
// used as a hint and for the extension fallback.
func (w *WorkTypeIdentifier) Identify(r io.Reader, name string) string {
	return WorkTypeFor(w.MimeType(r, name), name)
}

// MimeType returns siegfried's MIME type for the content in r, or
// an empty string if it doesn't recognize the format.
func (w *WorkTypeIdentifier) MimeType(r io.Reader, name string) string {
	sf := w.load()
	if sf == nil {
		return ""
	}
	ids, err := sf.Identify(r, name, "")
	if err != nil {
		return ""
	}
	for _, id := range ids {
		for _, pair := range sf.Label(id) {
			if pair[0] == "mime" && pair[1] != "" {
				return pair[1]
			}
		}
	}
	return ""
}

// WorkTypeFor maps a MIME type to a work type. When mimeType is empty
// or unknown, it tries the extension of filename, and finally returns
// the default work type.
func WorkTypeFor(mimeType, filename string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch {
	case mimeType == "":
	case StringListContains(codeMimeTypes, mimeType):
		return constants.WorkTypeCode
	case StringListContains(textMimeTypes, mimeType):
		return constants.WorkTypeText
	case strings.HasPrefix(mimeType, "image/"):
		return constants.WorkTypeImage
	case strings.HasPrefix(mimeType, "audio/"):
		return constants.WorkTypeMusic
	case strings.HasPrefix(mimeType, "video/"):
		return constants.WorkTypeVideo
	case strings.HasPrefix(mimeType, "text/"):
		return constants.WorkTypeText
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if workType, ok := extensionWorkTypes[ext]; ok {
		return workType
	}
	if mimeType != "" {
		return constants.WorkTypeOther
	}
	return constants.DefaultWorkType
}
