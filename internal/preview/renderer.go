package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"photoaudit/internal/models"
	"photoaudit/internal/providers"
	"photoaudit/internal/structures"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

const (
	jpegQuality   = 85
	cellPadding   = 8
	captionHeight = 20
)

var (
	sheetBackground = color.White
	placeholderFill = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	errorText       = color.RGBA{R: 0xc0, G: 0x10, B: 0x10, A: 0xff}
)

type RendererInterface interface {
	Render(photo models.PhotoRecord) ([]byte, error)
	Placeholder(photo models.PhotoRecord, cause error) ([]byte, error)
	ContactSheet(visit models.Visit) ([]byte, error)
	WriteContactSheet(visit models.Visit, position int) (string, error)
}

type Renderer struct {
	maxWidth int
	columns  int
	dir      string
	logger   providers.Logger
}

func NewRenderer(conf *structures.Config, logger providers.Logger) RendererInterface {
	dir := conf.Preview.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "photoaudit")
	}
	return &Renderer{
		maxWidth: conf.Preview.MaxWidth,
		columns:  conf.Preview.Columns,
		dir:      dir,
		logger:   logger,
	}
}

// Load decodes the photo, applies its EXIF orientation and shrinks it to
// the display width. Narrower images keep their size.
func (r *Renderer) Load(photo models.PhotoRecord) (image.Image, error) {
	data, err := os.ReadFile(photo.Location)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = Orient(img, Orientation(data))

	return Fit(img, r.maxWidth), nil
}

// Fit scales img down to width preserving the aspect ratio.
func Fit(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	ratio := float64(width) / float64(b.Dx())
	height := max(1, int(float64(b.Dy())*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Render returns the display-sized photo as JPEG.
func (r *Renderer) Render(photo models.PhotoRecord) ([]byte, error) {
	img, err := r.Load(photo)
	if err != nil {
		r.logger.Warnf(providers.TypeReview, "Failed to load image %s: %s", photo.Location, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) placeholderContext(photo models.PhotoRecord, cause error) *gg.Context {
	w := float64(r.maxWidth)
	h := w * 3 / 4
	dc := gg.NewContext(int(w), int(h))
	dc.SetColor(placeholderFill)
	dc.Clear()

	dc.SetColor(errorText)
	msg := "Failed to load image"
	if errors.Is(cause, image.ErrFormat) {
		msg += ": unsupported format"
	}
	dc.DrawStringWrapped(msg, w/2, h/2, 0.5, 0.5, w-2*cellPadding, 1.4, gg.AlignCenter)
	return dc
}

// Placeholder draws the tile shown in place of an unreadable photo, as PNG.
func (r *Renderer) Placeholder(photo models.PhotoRecord, cause error) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.placeholderContext(photo, cause).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// sheet lays the visit's photos out r.columns per row with a caption under
// each one. Unreadable photos become placeholders.
func (r *Renderer) sheet(visit models.Visit) *gg.Context {
	tiles := make([]image.Image, 0, len(visit.Photos))
	for _, photo := range visit.Photos {
		img, err := r.Load(photo)
		if err != nil {
			r.logger.Debugf(providers.TypeReview, "Failed to load image %s: %s", photo.Location, err)
			img = r.placeholderContext(photo, err).Image()
		}
		tiles = append(tiles, img)
	}

	cols := max(1, min(r.columns, len(tiles)))
	rows := (len(tiles) + cols - 1) / cols

	rowHeights := make([]int, rows)
	for i, tile := range tiles {
		rowHeights[i/cols] = max(rowHeights[i/cols], tile.Bounds().Dy())
	}

	cell := r.maxWidth + cellPadding
	width := cols*cell + cellPadding
	height := cellPadding
	for _, rh := range rowHeights {
		height += rh + captionHeight + cellPadding
	}

	dc := gg.NewContext(width, max(height, 2*cellPadding))
	dc.SetColor(sheetBackground)
	dc.Clear()
	dc.SetColor(color.Black)

	y := cellPadding
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(tiles) {
				break
			}
			x := cellPadding + col*cell
			dc.DrawImage(tiles[i], x, y)
			caption := fmt.Sprintf("Photo %d", i+1)
			dc.DrawStringAnchored(truncate(caption, r.maxWidth/7), float64(x), float64(y+rowHeights[row]+captionHeight/2), 0, 0.5)
		}
		y += rowHeights[row] + captionHeight + cellPadding
	}
	return dc
}

// truncate shortens s to n runes for captions drawn in the fixed 7px font.
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 3 || len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func (r *Renderer) ContactSheet(visit models.Visit) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.sheet(visit).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode contact sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteContactSheet saves the visit's contact sheet as a PNG in the preview
// directory and returns its path. The file is named by the visit's review
// position; nothing in the name or the captions tells decoys apart.
func (r *Renderer) WriteContactSheet(visit models.Visit, position int) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, fmt.Sprintf("visit_%d.png", position))
	if err := r.sheet(visit).SavePNG(path); err != nil {
		return "", fmt.Errorf("failed to write contact sheet: %w", err)
	}
	return path, nil
}
