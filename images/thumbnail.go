package images

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/muesli/termenv"
)

const halfBlock = "▀"

// Thumbnail renders ref as a block of half-height cells, width columns wide.
// Each cell shows two vertically stacked pixels: the upper as foreground and
// the lower as background.
func Thumbnail(ref Ref, width int, profile termenv.Profile) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("images: thumbnail width must be positive")
	}
	data, err := ref.Decode()
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("images: decode %s: %w", ref.Name, err)
	}
	return renderHalfBlocks(imaging.Resize(img, width, 0, imaging.Box), profile), nil
}

func renderHalfBlocks(img *image.NRGBA, profile termenv.Profile) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			cell := termenv.String(halfBlock).Foreground(profile.Color(hexAt(img, x, y)))
			if y+1 < b.Max.Y {
				cell = cell.Background(profile.Color(hexAt(img, x, y+1)))
			}
			sb.WriteString(cell.String())
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexAt(img *image.NRGBA, x, y int) string {
	c := img.NRGBAAt(x, y)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
