package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrNotAnImage = errors.New("file is not a decodable image")

// Result is an encoded image ready for storage.
type Result struct {
	Data        []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Processor normalises uploaded images.
type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// SquareAvatar center-crops the image to a square and scales it down to at
// most size pixels per side. Images are never upscaled. PNG input stays
// PNG to keep transparency; everything else becomes JPEG.
func (p *Processor) SquareAvatar(reader io.Reader, size int) (*Result, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	cropped := cropSquare(img)
	side := cropped.Bounds().Dx()
	if size > 0 && side > size {
		side = size
	}

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	res := &Result{Width: side, Height: side}
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		res.ContentType, res.Extension = "image/png", ".png"
	} else {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		res.ContentType, res.Extension = "image/jpeg", ".jpg"
	}
	res.Data = buf.Bytes()
	return res, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func cropSquare(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return img
	}
	side := w
	if h < side {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	rect := image.Rect(x0, y0, x0+side, y0+side)

	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// GetImageDimensions returns the dimensions without decoding pixels.
func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return cfg.Width, cfg.Height, nil
}
