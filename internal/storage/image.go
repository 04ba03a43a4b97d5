package storage

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageMimes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/gif":  ".gif",
}

// ErrNotAnImage is returned when sniffed content is not an allowed image.
type ErrNotAnImage struct {
	Detected string
}

func (e *ErrNotAnImage) Error() string {
	return fmt.Sprintf("content type %s is not an allowed image", e.Detected)
}

// DetectImage sniffs content and returns its MIME type and file extension.
// The client-declared type is ignored.
func DetectImage(content []byte) (mime string, ext string, err error) {
	detected := mimetype.Detect(content)
	mime = detected.String()
	if ext, ok := allowedImageMimes[mime]; ok {
		return mime, ext, nil
	}
	// heic/heif may carry parameters; fall back to the parent chain.
	for m := detected; m != nil; m = m.Parent() {
		if ext, ok := allowedImageMimes[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return "", "", &ErrNotAnImage{Detected: mime}
}
