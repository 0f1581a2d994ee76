// Package vision wraps the vision-language model behind the calls the
// identification pipeline makes: captioning, candidate listing, species
// details, and text-only chat.
package vision

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
)

var (
	// ErrEmptyImage indicates an image with no bytes.
	ErrEmptyImage = errors.New("image is empty")
	// ErrUnsupportedImage indicates an image that is neither PNG nor JPEG.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// Image is raw image bytes with a sniffed content type.
type Image struct {
	Data        []byte
	ContentType string
}

// NewImage wraps data, detecting its content type.
func NewImage(data []byte) Image {
	return Image{
		Data:        data,
		ContentType: http.DetectContentType(data),
	}
}

// Check reports ErrEmptyImage or ErrUnsupportedImage for images the model
// cannot be sent.
func (i Image) Check() error {
	if len(i.Data) == 0 {
		return ErrEmptyImage
	}
	if _, ok := i.format(); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, i.ContentType)
	}
	return nil
}

func (i Image) format() (document.ImageFormat, bool) {
	switch {
	case strings.HasPrefix(i.ContentType, "image/png"):
		return document.PNG, true
	case strings.HasPrefix(i.ContentType, "image/jpeg"):
		return document.JPEG, true
	}
	return "", false
}

// DataURI encodes the image as a base64 data URI for model input.
func (i Image) DataURI() (string, error) {
	if err := i.Check(); err != nil {
		return "", err
	}

	format, _ := i.format()
	uri, err := encoding.EncodeImageDataURI(i.Data, format)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return uri, nil
}
