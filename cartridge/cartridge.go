package cartridge

import (
	"errors"
	"fmt"
	"os"
)

// Mirroring types
const (
	MirrorHorizontal byte = 0
	MirrorVertical   byte = 1
	MirrorFourScreen byte = 2
)

const (
	headerSize  = 16
	trainerSize = 512
	prgBankSize = 16384
	chrBankSize = 8192
)

// Load-time errors. No partial Cartridge is ever returned alongside one of these.
var (
	ErrBadMagic   = errors.New("missing iNES signature")
	ErrTruncated  = errors.New("declared bank sizes exceed file length")
	ErrNoPRGBanks = errors.New("header declares zero PRG banks")
)

// Cartridge represents a parsed iNES ROM image. PRG ROM and the header
// fields are immutable after Load; CHR bytes are writable only when the
// image declared zero CHR banks (CHR-RAM), and SRAM is always writable.
type Cartridge struct {
	PRGROM []byte
	CHRROM []byte
	SRAM   []byte

	PRGBanks int
	CHRBanks int

	MapperID   byte
	Mirror     byte
	IsCHRRAM   bool
	HasBattery bool
	HasTrainer bool
}

// Load parses an iNES image from memory.
func Load(data []byte) (*Cartridge, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("invalid NES ROM: %w", ErrTruncated)
	}
	if data[0] != 'N' || data[1] != 'E' || data[2] != 'S' || data[3] != 0x1A {
		return nil, fmt.Errorf("invalid NES ROM: %w", ErrBadMagic)
	}

	c := &Cartridge{
		PRGBanks: int(data[4]),
		CHRBanks: int(data[5]),
	}
	// A cartridge needs at least one PRG bank to hold the vectors.
	if c.PRGBanks == 0 {
		return nil, fmt.Errorf("invalid NES ROM: %w", ErrNoPRGBanks)
	}

	flags6 := data[6]
	flags7 := data[7]

	// Flags 6 bit 0: 0 = vertical, 1 = horizontal. Bit 3 (four-screen)
	// overrides either.
	if flags6&0x08 != 0 {
		c.Mirror = MirrorFourScreen
	} else if flags6&0x01 != 0 {
		c.Mirror = MirrorHorizontal
	} else {
		c.Mirror = MirrorVertical
	}
	c.HasBattery = flags6&0x02 != 0
	c.HasTrainer = flags6&0x04 != 0
	c.MapperID = (flags6 >> 4) | (flags7 & 0xF0)

	offset := headerSize
	if c.HasTrainer {
		offset += trainerSize
	}

	prgSize := c.PRGBanks * prgBankSize
	chrSize := c.CHRBanks * chrBankSize
	if offset+prgSize+chrSize > len(data) {
		return nil, fmt.Errorf("invalid NES ROM: %w", ErrTruncated)
	}

	c.PRGROM = make([]byte, prgSize)
	copy(c.PRGROM, data[offset:offset+prgSize])

	if c.CHRBanks == 0 {
		// No CHR ROM on the cartridge; the PPU sees 8KB of CHR-RAM instead.
		c.CHRROM = make([]byte, chrBankSize)
		c.IsCHRRAM = true
	} else {
		c.CHRROM = make([]byte, chrSize)
		copy(c.CHRROM, data[offset+prgSize:offset+prgSize+chrSize])
	}

	c.SRAM = make([]byte, 8192)

	return c, nil
}

// New reads and parses a .nes file.
func New(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cart, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cart, nil
}
