package utils

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/setanarut/heatmapper"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ReadImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// LoadPixelBuffer reads path as an 8-bit RGB buffer. It is a heatmapper.Loader.
func LoadPixelBuffer(path string) (*heatmapper.PixelBuffer, error) {
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return heatmapper.FromImage(img)
}

// SaveImage writes img as PNG, creating parent directories as needed.
func SaveImage(img image.Image, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return f.Close()
}

func SaveBuffer(buf *heatmapper.PixelBuffer, filename string) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return SaveImage(buf.ToRGBA(), filename)
}
