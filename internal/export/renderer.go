package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/session"
)

const (
	cellSize     = 64
	discInset    = 5
	sideMargin   = 24
	headerHeight = 56
	footerHeight = 28
)

var (
	backgroundColor = color.RGBA{R: 24, G: 26, B: 36, A: 255}
	boardColor      = color.RGBA{R: 45, G: 98, B: 196, A: 255}
	lastMoveColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textColor       = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	mutedTextColor  = color.NRGBA{R: 150, G: 158, B: 180, A: 255}
)

// Options are the header lines drawn above the board.
type Options struct {
	Title   string
	Caption string
}

// Size returns the pixel dimensions of every exported image.
func Size() (w, h int) {
	return board.Cols*cellSize + sideMargin*2, headerHeight + board.Rows*cellSize + footerHeight
}

// CellCenter returns the pixel center of (row, col).
func CellCenter(row, col int) image.Point {
	return image.Pt(sideMargin+col*cellSize+cellSize/2, headerHeight+row*cellSize+cellSize/2)
}

// RenderPNG draws the snapshot's board as a PNG.
func RenderPNG(ctx context.Context, snap session.Snapshot, opts Options) ([]byte, error) {
	w, h := Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	boardRect := image.Rect(sideMargin, headerHeight, sideMargin+board.Cols*cellSize, headerHeight+board.Rows*cellSize)
	draw.Draw(img, boardRect, image.NewUniform(boardColor), image.Point{}, draw.Src)

	for r := 0; r < board.Rows; r++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for c := 0; c < board.Cols; c++ {
			d, err := discImage(snap.Cells.Cell(r, c), cellSize-2*discInset)
			if err != nil {
				return nil, err
			}
			at := image.Pt(sideMargin+c*cellSize+discInset, headerHeight+r*cellSize+discInset)
			draw.Draw(img, d.Bounds().Add(at), d, image.Point{}, draw.Over)
		}
	}
	if snap.Moves > 0 {
		markLastMove(img, snap.Last)
	}

	drawText(img, sideMargin, 22, opts.Title, textColor)
	drawText(img, sideMargin, 42, opts.Caption, mutedTextColor)
	for c := 0; c < board.Cols; c++ {
		x := sideMargin + c*cellSize + cellSize/2 - 3
		drawText(img, x, headerHeight+board.Rows*cellSize+19, strconv.Itoa(c+1), mutedTextColor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// markLastMove draws a small square in the middle of the last placed disc.
func markLastMove(img *image.RGBA, last session.Placement) {
	c := CellCenter(last.Row, last.Column)
	const half = 4
	draw.Draw(img, image.Rect(c.X-half, c.Y-half, c.X+half, c.Y+half), image.NewUniform(lastMoveColor), image.Point{}, draw.Over)
}

func drawText(img *image.RGBA, x, y int, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	maxWidth := img.Bounds().Dx() - x - sideMargin
	d.DrawString(truncate(d, text, maxWidth))
}

func truncate(d *font.Drawer, text string, maxWidth int) string {
	if d.MeasureString(text).Round() <= maxWidth {
		return text
	}
	const ellipsis = "..."
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if d.MeasureString(string(runes)+ellipsis).Round() <= maxWidth {
			return string(runes) + ellipsis
		}
	}
	return ellipsis
}

// WriteFile renders snap and writes it to path, creating parent directories.
func WriteFile(ctx context.Context, path string, snap session.Snapshot, opts Options) ([]byte, error) {
	data, err := RenderPNG(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return data, nil
}
