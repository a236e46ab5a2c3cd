package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/cheese-connect4/internal/board"
)

const discSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<circle cx="50" cy="50" r="46" fill="%s" stroke="%s" stroke-width="4"/>
<circle cx="50" cy="50" r="30" fill="none" stroke="%s" stroke-width="3"/>
</svg>`

type discStyle struct{ fill, rim, ring string }

var discStyles = map[board.Player]discStyle{
	board.None:    {fill: "#1B2A4A", rim: "#13203A", ring: "#1B2A4A"},
	board.PlayerA: {fill: "#E06C75", rim: "#9E3B45", ring: "#C8505A"},
	board.PlayerB: {fill: "#E5C07B", rim: "#A8843E", ring: "#CDA55C"},
}

type discKey struct {
	p    board.Player
	size int
}

var (
	discCache   = map[discKey]image.Image{}
	discCacheMu sync.RWMutex
)

// discImage rasterizes the disc (or empty hole) for p at size×size pixels.
func discImage(p board.Player, size int) (image.Image, error) {
	key := discKey{p: p, size: size}
	discCacheMu.RLock()
	if img, ok := discCache[key]; ok {
		discCacheMu.RUnlock()
		return img, nil
	}
	discCacheMu.RUnlock()

	st, ok := discStyles[p]
	if !ok {
		return nil, fmt.Errorf("no disc style for player %d", p)
	}
	src := fmt.Sprintf(discSVG, st.fill, st.rim, st.ring)
	icon, err := oksvg.ReadIconStream(bytes.NewReader([]byte(src)))
	if err != nil {
		return nil, fmt.Errorf("parse disc svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	discCacheMu.Lock()
	discCache[key] = img
	discCacheMu.Unlock()
	return img, nil
}
