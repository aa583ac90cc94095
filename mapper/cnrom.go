package mapper

import "github.com/meadori/nescore/cartridge"

// CNROM (mapper 3) keeps PRG fixed like NROM but switches the whole 8KB
// CHR window through a register written anywhere in ROM space.
type cnrom struct {
	cart       *cartridge.Cartridge
	bankSelect int
}

func newCNROM(cart *cartridge.Cartridge) *cnrom {
	return &cnrom{cart: cart}
}

func (c *cnrom) CPUMapRead(addr uint16) (byte, bool) {
	switch {
	case addr >= 0x8000:
		mapped := int(addr - 0x8000)
		if c.cart.PRGBanks == 1 {
			mapped &= 0x3FFF
		}
		return c.cart.PRGROM[mapped], true
	case addr >= 0x6000:
		return c.cart.SRAM[addr-0x6000], true
	}
	return 0, false
}

func (c *cnrom) CPUMapWrite(addr uint16, data byte) bool {
	switch {
	case addr >= 0x8000:
		c.bankSelect = int(data & 0x03)
		return true
	case addr >= 0x6000:
		c.cart.SRAM[addr-0x6000] = data
		return true
	}
	return false
}

func (c *cnrom) PPUMapRead(addr uint16) (byte, bool) {
	if addr <= 0x1FFF {
		bank := 0
		// CHR-RAM boards have a single unbanked 8KB window.
		if c.cart.CHRBanks > 0 {
			bank = c.bankSelect % c.cart.CHRBanks
		}
		return c.cart.CHRROM[bank*8192+int(addr)], true
	}
	return 0, false
}

func (c *cnrom) PPUMapWrite(addr uint16, data byte) bool {
	if addr <= 0x1FFF && c.cart.IsCHRRAM {
		c.cart.CHRROM[addr] = data
		return true
	}
	return false
}

func (c *cnrom) Mirroring() byte {
	return c.cart.Mirror
}
