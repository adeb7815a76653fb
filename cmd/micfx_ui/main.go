package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/cbegin/micfx-go"
	"github.com/cbegin/micfx-go/internal/config"
	"github.com/cbegin/micfx-go/internal/rack"
)

const (
	windowW    = 640
	windowH    = 880
	minWindowW = 420
	minWindowH = 820

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	buttonH     = 40
	buttonGap   = 8
	buttonWidth = 0.7
	frameWidth  = 4
)

type game struct {
	rack     *micfx.Rack
	settings config.Settings
	analyzer *analyzer

	background color.RGBA
	frame      color.RGBA

	scopeImg *ebiten.Image
	scopeW   int
	scopeH   int
	wavePeak float64

	vignette  *ebiten.Image
	vignetteW int
	vignetteH int

	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(settings config.Settings) (*game, error) {
	g := &game{
		settings:   settings,
		analyzer:   newAnalyzer(),
		background: config.MustColor(settings.BackgroundColor),
		frame:      config.MustColor(settings.BorderColor),
		status:     "Ready",
		textCache:  make(map[string]*ebiten.Image, 256),
		viewW:      windowW,
		viewH:      windowH,
	}
	r, err := micfx.New(settings,
		micfx.WithSampleTap(g.analyzer.Tap),
		micfx.WithAutoSave(settings.RecordingsDir, g.recordingSaved),
	)
	if err != nil {
		return nil, err
	}
	g.rack = r
	if err := r.Start(); err != nil {
		return nil, err
	}
	if !settings.SoundEnabled {
		g.setStatus("Sound disabled")
	}
	return g, nil
}

// recordingSaved runs inside Toggle, on the game goroutine.
func (g *game) recordingSaved(path string, err error) {
	switch {
	case errors.Is(err, micfx.ErrNoRecording):
		g.setStatus("Nothing recorded")
	case err != nil:
		g.setError(err.Error())
	default:
		g.setStatus("Saved " + path)
	}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		return ebiten.Termination
	}
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)

	l := g.layoutRects()
	for i, c := range g.rack.Controls() {
		if i >= len(l.buttons) {
			break
		}
		g.drawToggle(screen, l.buttons[i], c.Label, c.Pressed())
	}
	g.drawDarkPanel(screen, l.scope)
	g.drawScope(screen, l.scope)
	g.drawSunkenPanel(screen, l.status)
	g.drawStatus(screen, l.status)

	if g.settings.VignetteEnabled {
		g.drawVignette(screen)
	}
	if g.settings.BorderEnabled {
		g.drawFrame(screen)
	}
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = max(outsideW, minWindowW)
	g.viewH = max(outsideH, minWindowH)
	return g.viewW, g.viewH
}

func (g *game) Close() {
	if err := g.rack.Stop(); err != nil {
		log.Printf("stop: %v", err)
	}
	if on, _ := g.rack.Enabled(rack.Record); on {
		if err := g.rack.SetEnabled(rack.Record, false); err != nil {
			log.Printf("record: %v", err)
		}
	}
}

func (g *game) handleMouse() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()
	controls := g.rack.Controls()
	for i, rect := range l.buttons {
		if i >= len(controls) || !pointInRect(mx, my, rect) {
			continue
		}
		if err := g.rack.Toggle(controls[i].Kind); err != nil {
			g.setError(err.Error())
		}
		return
	}
}

type uiLayout struct {
	buttons       []image.Rectangle
	scope, status image.Rectangle
}

// layoutRects stacks one button per control, centered, above the scope and
// status rows.
func (g *game) layoutRects() uiLayout {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)

	pad := 20
	statusH := 40
	statusTop := h - pad - statusH

	bw := int(float64(w) * buttonWidth)
	bx := (w - bw) / 2
	n := len(g.rack.Controls())
	buttons := make([]image.Rectangle, n)
	y := pad
	for i := range buttons {
		buttons[i] = image.Rect(bx, y, bx+bw, y+buttonH)
		y += buttonH + buttonGap
	}

	scopeTop := y + 4
	scopeBottom := max(statusTop-12, scopeTop+40)
	return uiLayout{
		buttons: buttons,
		scope:   image.Rect(bx, scopeTop, bx+bw, scopeBottom),
		status:  image.Rect(pad, statusTop, w-pad, statusTop+statusH),
	}
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	maxChars := max(1, (rect.Dx()-16)/charW)
	msg := g.status
	if g.statusErr {
		msg = "Error: " + msg
	}
	msg = shortenMiddle(msg, maxChars)
	g.drawText(screen, msg, rect.Min.X+8, rect.Min.Y+(rect.Dy()-lineH)/2)
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func shortenMiddle(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 7 {
		return string(r[:maxChars])
	}
	left := (maxChars - 3) / 2
	right := maxChars - 3 - left
	return string(r[:left]) + "..." + string(r[len(r)-right:])
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:   "micfx_ui",
		Short: "Microphone effects rack with on-screen toggles",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			g, err := newGame(settings)
			if err != nil {
				return err
			}
			defer g.Close()

			ebiten.SetWindowSize(windowW, windowH)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
			ebiten.SetWindowTitle(fmt.Sprintf("micfx %d Hz", settings.SampleRate))
			if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
				return err
			}
			return nil
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "settings file (default $HOME/.micfx.yaml)")

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
