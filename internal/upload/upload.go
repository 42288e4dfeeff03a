// Package upload vets history pages submitted through the chat bot or the API.
package upload

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxSize is the largest accepted history page
const MaxSize = 1 << 20

var (
	// ErrUnsupportedType is returned for anything not declared or sniffed as HTML
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge is returned for pages over the size limit
	ErrTooLarge = errors.New("file too large")
)

// allowedDetectedTypes is what http.DetectContentType may report for a saved page.
// Pages saved without a doctype often sniff as plain text.
var allowedDetectedTypes = map[string]bool{
	"text/html":  true,
	"text/plain": true,
}

// CheckDeclared validates the client-declared MIME type and size before any
// bytes are read
func CheckDeclared(contentType string, size, limit int64) error {
	if limit <= 0 {
		limit = MaxSize
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "text/html") {
		return fmt.Errorf("%w: %q is not text/html", ErrUnsupportedType, contentType)
	}
	if size > limit {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
	}
	return nil
}

// CheckContent validates the bytes actually received
func CheckContent(data []byte, limit int64) error {
	if limit <= 0 {
		limit = MaxSize
	}
	if int64(len(data)) > limit {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(limit)))
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected := strings.ToLower(strings.Split(http.DetectContentType(head), ";")[0])
	if !allowedDetectedTypes[detected] {
		return fmt.Errorf("%w: content looks like %s", ErrUnsupportedType, detected)
	}
	return nil
}

// UserMessage turns a validation error into the reply shown to the uploader
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("File is too large (max %s)", humanize.IBytes(MaxSize))
	case errors.Is(err, ErrUnsupportedType):
		return `Wrong file type (expected an HTML page, mime type "text/html")`
	default:
		return err.Error()
	}
}
