package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var (
	panelColor     = color.RGBA{192, 192, 192, 255}
	borderColor    = color.RGBA{128, 128, 128, 255}
	highlightColor = color.RGBA{0, 0, 128, 255}

	// 3D bevel colors for old-school embossed look.
	bevelLight  = color.RGBA{255, 255, 255, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}

	sunkenBgColor = color.RGBA{24, 24, 32, 255}
)

func fillRect(screen *ebiten.Image, rect image.Rectangle, c color.Color) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), c)
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawDarkPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, color.RGBA{0, 0, 0, 255})
	drawSunkenBorder(screen, rect)
}

// drawToggle draws a raised button, or a sunken highlighted one when pressed.
func (g *game) drawToggle(screen *ebiten.Image, rect image.Rectangle, label string, pressed bool) {
	offset := 0
	if pressed {
		fillRect(screen, rect, highlightColor)
		drawSunkenBorder(screen, rect)
		offset = 1
	} else {
		fillRect(screen, rect, panelColor)
		drawBorder(screen, rect)
	}
	labelW := len([]rune(label)) * charW
	x := rect.Min.X + (rect.Dx()-labelW)/2 + offset
	y := rect.Min.Y + (rect.Dy()-lineH)/2 + offset
	g.drawText(screen, label, x, y)
}

// drawBorder draws a raised 3D bevel (highlight top/left, shadow bottom/right).
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken 3D bevel (shadow top/left, highlight bottom/right).
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

// drawFrame outlines the window in the configured border color.
func (g *game) drawFrame(screen *ebiten.Image) {
	w, h := float64(g.viewW), float64(g.viewH)
	const fw = frameWidth
	ebitenutil.DrawRect(screen, 0, 0, w, fw, g.frame)
	ebitenutil.DrawRect(screen, 0, h-fw, w, fw, g.frame)
	ebitenutil.DrawRect(screen, 0, fw, fw, h-2*fw, g.frame)
	ebitenutil.DrawRect(screen, w-fw, fw, fw, h-2*fw, g.frame)
}

func (g *game) drawVignette(screen *ebiten.Image) {
	if g.vignette == nil || g.vignetteW != g.viewW || g.vignetteH != g.viewH {
		if g.vignette != nil {
			g.vignette.Deallocate()
		}
		g.vignetteW, g.vignetteH = g.viewW, g.viewH
		g.vignette = ebiten.NewImageFromImage(vignetteImage(g.viewW, g.viewH))
	}
	screen.DrawImage(g.vignette, nil)
}

// vignetteImage darkens toward the corners: transparent inside 60% of the
// half-diagonal, fading to 70% black at the corners.
func vignetteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	maxD := math.Hypot(cx, cy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxD
			t := (d - 0.6) / 0.4
			if t <= 0 {
				continue
			}
			a := uint8(math.Min(t*t, 1) * 0.7 * 255)
			// Premultiplied black.
			img.Pix[img.PixOffset(x, y)+3] = a
		}
	}
	return img
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 1000 {
			g.textCache = make(map[string]*ebiten.Image, 256)
		}
		g.textCache[msg] = img
	}
	opS := &ebiten.DrawImageOptions{}
	opS.GeoM.Scale(textScale, textScale)
	opS.GeoM.Translate(float64(x+2), float64(y+2))
	opS.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, opS)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}
