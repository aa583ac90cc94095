package mapper

import "github.com/meadori/nescore/cartridge"

// NROM (mapper 0) has no bank switching at all: 16KB or 32KB of PRG ROM
// and 8KB of CHR ROM or RAM, mapped straight through. A single 16KB PRG
// bank is mirrored across both halves of $8000-$FFFF.
type nrom struct {
	cart *cartridge.Cartridge
}

func newNROM(cart *cartridge.Cartridge) *nrom {
	return &nrom{cart: cart}
}

func (n *nrom) CPUMapRead(addr uint16) (byte, bool) {
	switch {
	case addr >= 0x8000:
		mapped := int(addr - 0x8000)
		if n.cart.PRGBanks == 1 {
			mapped &= 0x3FFF
		}
		return n.cart.PRGROM[mapped], true
	case addr >= 0x6000:
		return n.cart.SRAM[addr-0x6000], true
	}
	return 0, false
}

func (n *nrom) CPUMapWrite(addr uint16, data byte) bool {
	if addr >= 0x6000 && addr <= 0x7FFF {
		n.cart.SRAM[addr-0x6000] = data
		return true
	}
	// Writes to ROM space are ignored on NROM.
	return false
}

func (n *nrom) PPUMapRead(addr uint16) (byte, bool) {
	if addr <= 0x1FFF {
		return n.cart.CHRROM[addr], true
	}
	return 0, false
}

func (n *nrom) PPUMapWrite(addr uint16, data byte) bool {
	if addr <= 0x1FFF && n.cart.IsCHRRAM {
		n.cart.CHRROM[addr] = data
		return true
	}
	return false
}

func (n *nrom) Mirroring() byte {
	return n.cart.Mirror
}
