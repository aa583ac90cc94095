package mapper

import (
	"fmt"

	"github.com/meadori/nescore/cartridge"
)

// Mapper defines the cartridge-side address translation contract. CPU
// methods cover $6000-$FFFF, PPU methods cover $0000-$1FFF; the bool
// return reports whether the mapper claimed the access.
type Mapper interface {
	CPUMapRead(addr uint16) (byte, bool)
	CPUMapWrite(addr uint16, data byte) bool
	PPUMapRead(addr uint16) (byte, bool)
	PPUMapWrite(addr uint16, data byte) bool
	Mirroring() byte
}

// UnsupportedError reports a mapper ID with no implementation.
type UnsupportedError struct {
	ID byte
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported mapper: %d", e.ID)
}

// New creates a Mapper instance based on the cartridge's mapper ID.
func New(cart *cartridge.Cartridge) (Mapper, error) {
	switch cart.MapperID {
	case 0:
		return newNROM(cart), nil
	case 2:
		return newUxROM(cart), nil
	case 3:
		return newCNROM(cart), nil
	default:
		return nil, &UnsupportedError{ID: cart.MapperID}
	}
}
