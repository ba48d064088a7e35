package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/tiff"
)

// Format is an export raster format.
type Format string

const (
	FormatTIFF Format = "tiff"
	FormatJPG  Format = "jpg"
	FormatPNG  Format = "png"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTIFF, FormatJPG, FormatPNG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want tiff, jpg, or png)", s)
	}
}

// exportTimeLayout keeps the filename convention curators already archive by,
// e.g. MontanaSpecimensMaps_A_12_49_PM_6_12_2025.tiff.
const exportTimeLayout = "3_04_PM_1_2_2006"

// Export writes both variants of the pair into dir as timestamped files and
// returns the written paths (A then B). The timestamp keeps repeated exports
// from colliding.
func Export(dir string, pair *MapPair, format Format, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	ts := now.Format(exportTimeLayout)
	variants := []struct {
		suffix string
		img    image.Image
	}{
		{"A", pair.MapA},
		{"B", pair.MapB},
	}

	paths := make([]string, 0, len(variants))
	for _, v := range variants {
		name := fmt.Sprintf("MontanaSpecimensMaps_%s_%s.%s", v.suffix, ts, format)
		path := filepath.Join(dir, name)
		if err := writeImage(path, v.img, format); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, img image.Image, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Encode(f, img, format); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes the image in the given format. TIFF uses deflate compression
// to keep print-resolution files manageable.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
