package stdimagedecoder

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/thebartekbanach/imgcache/pkg/decoder"
)

type Config struct {
	// MaxPixels limits width * height declared by the image header,
	// zero disables the check.
	MaxPixels int64
}

type Decoder struct {
	config Config
}

var _ decoder.Decoder = (*Decoder)(nil)

func NewDecoder(config Config) *Decoder {
	return &Decoder{config}
}

func (dec *Decoder) Decode(data []byte) (*decoder.Image, error) {
	if len(data) == 0 {
		return nil, decoder.ErrEmptyData
	}

	header, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", decoder.ErrInvalidImage, err)
	}

	pixels := int64(header.Width) * int64(header.Height)
	if dec.config.MaxPixels > 0 && pixels > dec.config.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", decoder.ErrImageTooLarge, header.Width, header.Height)
	}

	bitmap, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", decoder.ErrInvalidImage, err)
	}

	bounds := bitmap.Bounds()
	return &decoder.Image{
		Data:   data,
		Format: format,
		Bitmap: bitmap,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
