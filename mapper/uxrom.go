package mapper

import "github.com/meadori/nescore/cartridge"

// UxROM (mapper 2) has a switchable 16KB PRG bank at $8000-$BFFF and the
// last 16KB bank fixed at $C000-$FFFF. CHR is 8KB, normally CHR-RAM.
type uxrom struct {
	cart       *cartridge.Cartridge
	bankSelect int
}

func newUxROM(cart *cartridge.Cartridge) *uxrom {
	return &uxrom{cart: cart}
}

func (u *uxrom) CPUMapRead(addr uint16) (byte, bool) {
	switch {
	case addr >= 0xC000:
		bank := u.cart.PRGBanks - 1
		return u.cart.PRGROM[bank*16384+int(addr-0xC000)], true
	case addr >= 0x8000:
		bank := u.bankSelect % u.cart.PRGBanks
		return u.cart.PRGROM[bank*16384+int(addr-0x8000)], true
	case addr >= 0x6000:
		return u.cart.SRAM[addr-0x6000], true
	}
	return 0, false
}

func (u *uxrom) CPUMapWrite(addr uint16, data byte) bool {
	switch {
	case addr >= 0x8000:
		u.bankSelect = int(data)
		return true
	case addr >= 0x6000:
		u.cart.SRAM[addr-0x6000] = data
		return true
	}
	return false
}

func (u *uxrom) PPUMapRead(addr uint16) (byte, bool) {
	if addr <= 0x1FFF {
		return u.cart.CHRROM[addr], true
	}
	return 0, false
}

func (u *uxrom) PPUMapWrite(addr uint16, data byte) bool {
	if addr <= 0x1FFF && u.cart.IsCHRRAM {
		u.cart.CHRROM[addr] = data
		return true
	}
	return false
}

func (u *uxrom) Mirroring() byte {
	return u.cart.Mirror
}
