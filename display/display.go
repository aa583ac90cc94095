// Package display runs the console inside an ebiten window: it polls
// the keyboard into controller 1, steps one frame per tick and blits
// the PPU's framebuffer.
package display

import (
	"image/color"
	"log"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sqweek/dialog"

	"github.com/meadori/nescore/bus"
	"github.com/meadori/nescore/cartridge"
	"github.com/meadori/nescore/controller"
	"github.com/meadori/nescore/ppu"
)

const (
	// SampleRate is the audio output rate in Hz.
	SampleRate = 44100

	scale = 3
)

type soundStream struct {
	sys *bus.System
}

func (s *soundStream) Read(p []byte) (n int, err error) {
	if s.sys == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	return s.sys.APU.ReadSamples(p)
}

// Display is the ebiten game hosting a System. The System may be nil
// until a ROM is loaded, in which case the screen shows TV static.
type Display struct {
	sys    *bus.System
	stream *soundStream

	frameImage    *ebiten.Image
	staticImage   *ebiten.Image
	staticPix     []byte
	scanlineImage *ebiten.Image

	romLoadChan chan string
}

// New creates a Display. sys may be nil.
func New(sys *bus.System) *Display {
	stream := &soundStream{sys: sys}
	audioContext := audio.NewContext(SampleRate)
	player, err := audioContext.NewPlayer(stream)
	if err != nil {
		log.Printf("audio unavailable: %v", err)
	} else {
		player.Play()
	}

	scanImg := ebiten.NewImage(ppu.Width, ppu.Height)
	for y := 0; y < ppu.Height; y += 2 {
		vector.DrawFilledRect(scanImg, 0, float32(y), ppu.Width, 1, color.RGBA{0, 0, 0, 70}, false)
	}

	return &Display{
		sys:           sys,
		stream:        stream,
		frameImage:    ebiten.NewImage(ppu.Width, ppu.Height),
		staticImage:   ebiten.NewImage(ppu.Width, ppu.Height),
		staticPix:     make([]byte, ppu.Width*ppu.Height*4),
		scanlineImage: scanImg,
		romLoadChan:   make(chan string, 1),
	}
}

func (d *Display) loadROM(path string) {
	cart, err := cartridge.New(path)
	if err != nil {
		log.Printf("loading ROM: %v", err)
		return
	}
	sys, err := bus.New(cart, SampleRate)
	if err != nil {
		log.Printf("loading ROM: %v", err)
		return
	}
	d.sys = sys
	d.stream.sys = sys
}

func (d *Display) pollButtons() byte {
	var buttons byte
	keys := [8]ebiten.Key{
		controller.ButtonA:      ebiten.KeyZ,
		controller.ButtonB:      ebiten.KeyX,
		controller.ButtonSelect: ebiten.KeyShift,
		controller.ButtonStart:  ebiten.KeyEnter,
		controller.ButtonUp:     ebiten.KeyArrowUp,
		controller.ButtonDown:   ebiten.KeyArrowDown,
		controller.ButtonLeft:   ebiten.KeyArrowLeft,
		controller.ButtonRight:  ebiten.KeyArrowRight,
	}
	for bit, key := range keys {
		if ebiten.IsKeyPressed(key) {
			buttons |= 1 << bit
		}
	}
	return buttons
}

// Update advances the console by one video frame.
func (d *Display) Update() error {
	select {
	case filename := <-d.romLoadChan:
		d.loadROM(filename)
	default:
	}

	// O opens a ROM, R soft-resets the console.
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		go func() {
			filename, err := dialog.File().Filter("NES ROM", "nes").Load()
			if err != nil {
				log.Println(err)
				return
			}
			d.romLoadChan <- filename
		}()
	}

	if d.sys == nil {
		for i := 0; i < len(d.staticPix); i += 4 {
			val := byte(rand.Intn(256))
			d.staticPix[i] = val
			d.staticPix[i+1] = val
			d.staticPix[i+2] = val
			d.staticPix[i+3] = 255
		}
		d.staticImage.WritePixels(d.staticPix)
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		d.sys.Reset()
	}

	d.sys.Controller(0).SetButtons(d.pollButtons())

	if _, err := d.sys.StepFrame(); err != nil {
		return err
	}
	return nil
}

// Draw blits the last completed frame with a scanline overlay.
func (d *Display) Draw(screen *ebiten.Image) {
	var frame *ebiten.Image
	if d.sys != nil {
		d.frameImage.WritePixels(d.sys.PPU.Frame().Pix)
		frame = d.frameImage
	} else {
		frame = d.staticImage
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(frame, op)

	opScan := &ebiten.DrawImageOptions{}
	opScan.GeoM.Scale(scale, scale)
	screen.DrawImage(d.scanlineImage, opScan)
}

// Layout reports the logical screen size.
func (d *Display) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.Width * scale, ppu.Height * scale
}

// Run opens the window and blocks until it is closed.
func Run(d *Display) error {
	ebiten.SetWindowSize(ppu.Width*scale, ppu.Height*scale)
	ebiten.SetWindowTitle("nescore")
	return ebiten.RunGame(d)
}
