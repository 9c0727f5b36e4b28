package decoder

import (
	"errors"
	"image"
)

// Image is a validated image: the encoded bytes as fetched plus the
// decoded bitmap.
type Image struct {
	Data   []byte
	Format string
	Bitmap image.Image
	Width  int
	Height int
}

// Cost approximates the memory held by the image: encoded bytes plus
// an RGBA bitmap.
func (img *Image) Cost() int64 {
	return int64(len(img.Data)) + int64(img.Width)*int64(img.Height)*4
}

func (img *Image) ContentType() string {
	switch img.Format {
	case "jpeg", "png", "gif", "webp", "bmp", "tiff":
		return "image/" + img.Format
	default:
		return "application/octet-stream"
	}
}

type Decoder interface {
	Decode(data []byte) (*Image, error)
}

var (
	ErrEmptyData     = errors.New("image data is empty")
	ErrInvalidImage  = errors.New("data is not a valid image")
	ErrImageTooLarge = errors.New("image dimensions exceed the limit")
)
