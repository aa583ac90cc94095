package ppu

import (
	"image"

	"github.com/meadori/nescore/cartridge"
	"github.com/meadori/nescore/mapper"
)

// PPUCTRL bits.
const (
	CtrlNametable       byte = 0x03
	CtrlIncrement       byte = 0x04
	CtrlSpriteTable     byte = 0x08
	CtrlBackgroundTable byte = 0x10
	CtrlSpriteSize      byte = 0x20
	CtrlNMIEnable       byte = 0x80
)

// PPUMASK bits.
const (
	MaskShowLeftBackground byte = 0x02
	MaskShowLeftSprites    byte = 0x04
	MaskShowBackground     byte = 0x08
	MaskShowSprites        byte = 0x10
)

// PPUSTATUS bits.
const (
	StatusSpriteOverflow byte = 0x20
	StatusSpriteZeroHit  byte = 0x40
	StatusVBlank         byte = 0x80
)

// Screen dimensions in pixels.
const (
	Width  = 256
	Height = 240
)

// PPU represents the Picture Processing Unit. Clock advances it one dot;
// 341 dots per scanline, 262 scanlines per frame (scanline -1 is the
// pre-render line).
type PPU struct {
	mapper mapper.Mapper

	vram         [2048]byte
	palette      [32]byte
	oam          [256]byte
	secondaryOAM [32]byte

	// CPU-visible registers
	Ctrl    byte
	Mask    byte
	Status  byte
	oamAddr byte

	// Loopy internal registers
	vramAddr    uint16 // v
	vramTmpAddr uint16 // t
	fineX       byte
	addrLatch   bool // write toggle
	dataBuffer  byte // $2007 read buffer

	lastRegister byte // stale bus bits returned in the low 5 status bits

	Scanline   int // -1 .. 260
	Dot        int // 0 .. 340
	FrameCount uint64

	// NMI is the pending request the bus consumes before each
	// instruction fetch.
	NMI bool

	// Background fetch pipeline
	bgNextTileID      byte
	bgNextTileAttrib  byte
	bgNextTileLSB     byte
	bgNextTileMSB     byte
	bgShifterPatternL uint16
	bgShifterPatternH uint16
	bgShifterAttribL  uint16
	bgShifterAttribH  uint16

	// Sprites selected for the scanline in flight
	spriteCount      int
	spritePatterns   [8]uint32
	spritePositions  [8]byte
	spritePriorities [8]byte
	spriteIndexes    [8]byte

	front    *image.RGBA
	back     *image.RGBA
	frontPix []byte
	backPix  []byte
}

// New creates a new PPU reading pattern data through the given mapper.
func New(m mapper.Mapper) *PPU {
	p := &PPU{
		mapper:   m,
		front:    image.NewRGBA(image.Rect(0, 0, Width, Height)),
		back:     image.NewRGBA(image.Rect(0, 0, Width, Height)),
		frontPix: make([]byte, Width*Height),
		backPix:  make([]byte, Width*Height),
	}
	p.Reset()
	return p
}

// Reset clears registers, latches and counters. VRAM, palette RAM and
// OAM survive a soft reset, as on real hardware.
func (p *PPU) Reset() {
	p.Ctrl = 0
	p.Mask = 0
	p.Status = 0
	p.oamAddr = 0
	p.vramAddr = 0
	p.vramTmpAddr = 0
	p.fineX = 0
	p.addrLatch = false
	p.dataBuffer = 0
	p.Scanline = -1
	p.Dot = 0
	p.NMI = false
	p.spriteCount = 0
	p.bgShifterPatternL = 0
	p.bgShifterPatternH = 0
	p.bgShifterAttribL = 0
	p.bgShifterAttribH = 0
}

// Frame returns the last completed frame as RGBA.
func (p *PPU) Frame() *image.RGBA {
	return p.front
}

// Pixels returns the last completed frame as 6-bit master palette
// indices, one byte per pixel, row-major 256x240.
func (p *PPU) Pixels() []byte {
	return p.frontPix
}

// OAM exposes sprite memory (DMA target).
func (p *PPU) OAM() []byte {
	return p.oam[:]
}

// WriteOAM stores one byte at oamAddr and advances it (DMA path).
func (p *PPU) WriteOAM(data byte) {
	p.oam[p.oamAddr] = data
	p.oamAddr++
}

// mirrorAddress folds a nametable address ($2000-$2FFF) into the 2KB of
// physical VRAM according to the cartridge's mirroring mode.
var mirrorLookup = [...][4]uint16{
	cartridge.MirrorHorizontal: {0, 0, 1, 1},
	cartridge.MirrorVertical:   {0, 1, 0, 1},
	cartridge.MirrorFourScreen: {0, 1, 2, 3},
}

func (p *PPU) mirrorAddress(addr uint16) uint16 {
	addr = (addr - 0x2000) % 0x1000
	table := addr / 0x0400
	offset := addr % 0x0400
	return (mirrorLookup[p.mapper.Mirroring()][table]*0x0400 + offset) % 2048
}

func paletteIndex(addr uint16) uint16 {
	addr &= 0x1F
	// $3F10/$3F14/$3F18/$3F1C mirror the background entries.
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	return addr
}

func (p *PPU) ppuRead(addr uint16) byte {
	addr &= 0x3FFF
	switch {
	case addr <= 0x1FFF:
		if data, ok := p.mapper.PPUMapRead(addr); ok {
			return data
		}
		return 0
	case addr <= 0x3EFF:
		return p.vram[p.mirrorAddress(addr)]
	default:
		return p.palette[paletteIndex(addr)]
	}
}

func (p *PPU) ppuWrite(addr uint16, data byte) {
	addr &= 0x3FFF
	switch {
	case addr <= 0x1FFF:
		p.mapper.PPUMapWrite(addr, data)
	case addr <= 0x3EFF:
		p.vram[p.mirrorAddress(addr)] = data
	default:
		p.palette[paletteIndex(addr)] = data
	}
}

// ReadRegister serves CPU reads of $2000-$2007.
func (p *PPU) ReadRegister(addr uint16) byte {
	switch addr {
	case 0x2002:
		status := p.Status | p.lastRegister&0x1F
		p.Status &^= StatusVBlank
		p.addrLatch = false
		return status
	case 0x2004:
		data := p.oam[p.oamAddr]
		if p.oamAddr&0x03 == 0x02 {
			// Attribute bytes have three unimplemented bits.
			data &= 0xE3
		}
		return data
	case 0x2007:
		data := p.dataBuffer
		p.dataBuffer = p.ppuRead(p.vramAddr)
		if p.vramAddr&0x3FFF >= 0x3F00 {
			// Palette reads bypass the buffer.
			data = p.dataBuffer
		}
		p.incrementVRAMAddr()
		return data
	}
	return 0
}

// WriteRegister serves CPU writes of $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, data byte) {
	p.lastRegister = data
	switch addr {
	case 0x2000:
		prevEnable := p.Ctrl&CtrlNMIEnable != 0
		p.Ctrl = data
		// t: ....BA.. ........ <- d: ......BA
		p.vramTmpAddr = p.vramTmpAddr&0xF3FF | uint16(data&0x03)<<10
		// Enabling NMI mid-VBlank raises one immediately.
		if !prevEnable && data&CtrlNMIEnable != 0 && p.Status&StatusVBlank != 0 {
			p.NMI = true
		}
	case 0x2001:
		p.Mask = data
	case 0x2003:
		p.oamAddr = data
	case 0x2004:
		p.WriteOAM(data)
	case 0x2005:
		if !p.addrLatch {
			// t: ....... ...ABCDE <- d: ABCDE...   x: FGH <- d: .....FGH
			p.vramTmpAddr = p.vramTmpAddr&0xFFE0 | uint16(data)>>3
			p.fineX = data & 0x07
			p.addrLatch = true
		} else {
			// t: FGH..AB CDE..... <- d: ABCDEFGH
			p.vramTmpAddr = p.vramTmpAddr&0x8FFF | uint16(data&0x07)<<12
			p.vramTmpAddr = p.vramTmpAddr&0xFC1F | uint16(data&0xF8)<<2
			p.addrLatch = false
		}
	case 0x2006:
		if !p.addrLatch {
			// t: ..FEDCBA ........ <- d: ..FEDCBA
			p.vramTmpAddr = p.vramTmpAddr&0x00FF | uint16(data&0x3F)<<8
			p.addrLatch = true
		} else {
			// t: ........ ABCDEFGH <- d: ABCDEFGH, then v <- t
			p.vramTmpAddr = p.vramTmpAddr&0xFF00 | uint16(data)
			p.vramAddr = p.vramTmpAddr
			p.addrLatch = false
		}
	case 0x2007:
		p.ppuWrite(p.vramAddr, data)
		p.incrementVRAMAddr()
	}
}

func (p *PPU) incrementVRAMAddr() {
	if p.Ctrl&CtrlIncrement == 0 {
		p.vramAddr++
	} else {
		p.vramAddr += 32
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.Mask&(MaskShowBackground|MaskShowSprites) != 0
}

// Clock advances the PPU by one dot.
func (p *PPU) Clock() {
	visibleLine := p.Scanline >= 0 && p.Scanline < Height
	preLine := p.Scanline == -1
	renderLine := visibleLine || preLine

	if p.renderingEnabled() {
		if renderLine && ((p.Dot >= 2 && p.Dot <= 257) || (p.Dot >= 321 && p.Dot <= 337)) {
			p.updateShifters()
			switch (p.Dot - 1) % 8 {
			case 0:
				p.loadShifters()
				p.bgNextTileID = p.ppuRead(0x2000 | p.vramAddr&0x0FFF)
			case 2:
				p.fetchAttribute()
			case 4:
				p.bgNextTileLSB = p.ppuRead(p.tileAddress())
			case 6:
				p.bgNextTileMSB = p.ppuRead(p.tileAddress() + 8)
			case 7:
				p.incrementX()
			}
		}

		if visibleLine && p.Dot >= 1 && p.Dot <= 256 {
			p.renderPixel()
		}

		if renderLine && p.Dot == 256 {
			p.incrementY()
		}
		if renderLine && p.Dot == 257 {
			p.copyX()
		}
		if preLine && p.Dot >= 280 && p.Dot <= 304 {
			p.copyY()
		}

		// Sprite evaluation for the next scanline.
		if p.Dot == 257 {
			if visibleLine {
				p.evaluateSprites()
			} else {
				p.spriteCount = 0
			}
		}
	} else if visibleLine && p.Dot >= 1 && p.Dot <= 256 {
		// Rendering disabled: the screen shows the backdrop color.
		p.putPixel(p.Dot-1, p.Scanline, p.palette[0])
	}

	if p.Scanline == 241 && p.Dot == 1 {
		p.Status |= StatusVBlank
		p.swapBuffers()
		if p.Ctrl&CtrlNMIEnable != 0 {
			p.NMI = true
		}
	}
	if preLine && p.Dot == 1 {
		p.Status &^= StatusVBlank | StatusSpriteZeroHit | StatusSpriteOverflow
	}

	p.Dot++
	if p.Dot > 340 {
		p.Dot = 0
		p.Scanline++
		if p.Scanline > 260 {
			p.Scanline = -1
			p.FrameCount++
		}
	}
}

func (p *PPU) tileAddress() uint16 {
	table := uint16(0)
	if p.Ctrl&CtrlBackgroundTable != 0 {
		table = 0x1000
	}
	fineY := p.vramAddr >> 12 & 0x07
	return table + uint16(p.bgNextTileID)*16 + fineY
}

func (p *PPU) fetchAttribute() {
	v := p.vramAddr
	addr := 0x23C0 | v&0x0C00 | v>>4&0x38 | v>>2&0x07
	shift := v >> 4 & 4 | v & 2
	p.bgNextTileAttrib = p.ppuRead(addr) >> shift & 0x03
}

func (p *PPU) updateShifters() {
	p.bgShifterPatternL <<= 1
	p.bgShifterPatternH <<= 1
	p.bgShifterAttribL <<= 1
	p.bgShifterAttribH <<= 1
}

func (p *PPU) loadShifters() {
	p.bgShifterPatternL = p.bgShifterPatternL&0xFF00 | uint16(p.bgNextTileLSB)
	p.bgShifterPatternH = p.bgShifterPatternH&0xFF00 | uint16(p.bgNextTileMSB)
	p.bgShifterAttribL = p.bgShifterAttribL&0xFF00 | uint16(p.bgNextTileAttrib&1)*0xFF
	p.bgShifterAttribH = p.bgShifterAttribH&0xFF00 | uint16(p.bgNextTileAttrib>>1)*0xFF
}

func (p *PPU) copyX() {
	// v: ....A.. ...BCDEF <- t
	p.vramAddr = p.vramAddr&0xFBE0 | p.vramTmpAddr&0x041F
}

func (p *PPU) copyY() {
	// v: GHIA.BC DEF..... <- t
	p.vramAddr = p.vramAddr&0x841F | p.vramTmpAddr&0x7BE0
}

func (p *PPU) incrementX() {
	if p.vramAddr&0x001F == 31 {
		p.vramAddr &= 0xFFE0
		p.vramAddr ^= 0x0400
	} else {
		p.vramAddr++
	}
}

func (p *PPU) incrementY() {
	if p.vramAddr&0x7000 != 0x7000 {
		p.vramAddr += 0x1000
	} else {
		p.vramAddr &= 0x8FFF
		y := p.vramAddr >> 5 & 0x1F
		switch y {
		case 29:
			y = 0
			p.vramAddr ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.vramAddr = p.vramAddr&0xFC1F | y<<5
	}
}

func (p *PPU) backgroundPixel() byte {
	if p.Mask&MaskShowBackground == 0 {
		return 0
	}
	mux := uint16(0x8000) >> p.fineX
	var pixel byte
	if p.bgShifterPatternL&mux != 0 {
		pixel |= 1
	}
	if p.bgShifterPatternH&mux != 0 {
		pixel |= 2
	}
	if p.bgShifterAttribL&mux != 0 {
		pixel |= 1 << 2
	}
	if p.bgShifterAttribH&mux != 0 {
		pixel |= 2 << 2
	}
	return pixel
}

func (p *PPU) spritePixel() (int, byte) {
	if p.Mask&MaskShowSprites == 0 {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := p.Dot - 1 - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		pixel := byte(p.spritePatterns[i] >> uint((7-offset)*4) & 0x0F)
		if pixel%4 == 0 {
			continue
		}
		return i, pixel
	}
	return 0, 0
}

func (p *PPU) renderPixel() {
	x := p.Dot - 1
	y := p.Scanline

	background := p.backgroundPixel()
	i, sprite := p.spritePixel()

	if x < 8 && p.Mask&MaskShowLeftBackground == 0 {
		background = 0
	}
	if x < 8 && p.Mask&MaskShowLeftSprites == 0 {
		sprite = 0
	}

	b := background%4 != 0
	s := sprite%4 != 0

	var color byte
	switch {
	case !b && !s:
		color = 0
	case !b && s:
		color = sprite | 0x10
	case b && !s:
		color = background
	default:
		if p.spriteIndexes[i] == 0 && x < 255 {
			p.Status |= StatusSpriteZeroHit
		}
		if p.spritePriorities[i] == 0 {
			color = sprite | 0x10
		} else {
			color = background
		}
	}

	p.putPixel(x, y, p.palette[paletteIndex(uint16(color))])
}

func (p *PPU) putPixel(x, y int, index byte) {
	index &= 0x3F
	p.backPix[y*Width+x] = index
	p.back.SetRGBA(x, y, SystemPalette[index])
}

func (p *PPU) swapBuffers() {
	p.front, p.back = p.back, p.front
	p.frontPix, p.backPix = p.backPix, p.frontPix
}

// evaluateSprites scans all 64 OAM entries for the next scanline, copies
// the first eight hits into secondary OAM in order, and flags a ninth as
// sprite overflow.
func (p *PPU) evaluateSprites() {
	height := 8
	if p.Ctrl&CtrlSpriteSize != 0 {
		height = 16
	}

	count := 0
	for i := 0; i < 64; i++ {
		y := p.oam[i*4]
		row := p.Scanline - int(y)
		if row < 0 || row >= height {
			continue
		}
		if count < 8 {
			copy(p.secondaryOAM[count*4:count*4+4], p.oam[i*4:i*4+4])
			p.spritePatterns[count] = p.fetchSpritePattern(count, row)
			p.spritePositions[count] = p.secondaryOAM[count*4+3]
			p.spritePriorities[count] = p.secondaryOAM[count*4+2] >> 5 & 1
			p.spriteIndexes[count] = byte(i)
		}
		count++
	}
	if count > 8 {
		count = 8
		p.Status |= StatusSpriteOverflow
	}
	p.spriteCount = count
}

// fetchSpritePattern reads one 8-pixel pattern row for the sprite in
// secondary OAM slot n, packed 4 bits per pixel with the palette's high
// bits folded in.
func (p *PPU) fetchSpritePattern(n, row int) uint32 {
	tile := p.secondaryOAM[n*4+1]
	attr := p.secondaryOAM[n*4+2]

	var addr uint16
	if p.Ctrl&CtrlSpriteSize == 0 {
		if attr&0x80 != 0 {
			row = 7 - row // vertical flip
		}
		table := uint16(0)
		if p.Ctrl&CtrlSpriteTable != 0 {
			table = 0x1000
		}
		addr = table + uint16(tile)*16 + uint16(row)
	} else {
		// 8x16: the tile's low bit selects the pattern table, rows
		// past 7 land in the next tile.
		if attr&0x80 != 0 {
			row = 15 - row
		}
		table := uint16(tile&1) * 0x1000
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		addr = table + uint16(tile)*16 + uint16(row)
	}

	low := p.ppuRead(addr)
	high := p.ppuRead(addr + 8)
	paletteHigh := (attr & 0x03) << 2

	var data uint32
	for i := 0; i < 8; i++ {
		var p1, p2 byte
		if attr&0x40 != 0 { // horizontal flip
			p1 = low & 1
			p2 = (high & 1) << 1
			low >>= 1
			high >>= 1
		} else {
			p1 = (low & 0x80) >> 7
			p2 = (high & 0x80) >> 6
			low <<= 1
			high <<= 1
		}
		data = data<<4 | uint32(paletteHigh|p2|p1)
	}
	return data
}
