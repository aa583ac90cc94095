package cpu

// Addressing mode tags.
type addrMode byte

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeRelative
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndexedIndirect // (zp,X)
	modeIndirectIndexed // (zp),Y
)

// Instruction byte count per addressing mode.
var modeSizes = [...]uint16{
	modeImplied:         1,
	modeAccumulator:     1,
	modeImmediate:       2,
	modeZeroPage:        2,
	modeZeroPageX:       2,
	modeZeroPageY:       2,
	modeRelative:        2,
	modeAbsolute:        3,
	modeAbsoluteX:       3,
	modeAbsoluteY:       3,
	modeIndirect:        3,
	modeIndexedIndirect: 2,
	modeIndirectIndexed: 2,
}

// Operation tags. opXXX marks opcode slots with no documented operation;
// executing one is a fault, not a silent NOP.
type opID byte

const (
	opXXX opID = iota
	opADC
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA
)

// Instruction is one slot of the static dispatch table: addressing mode,
// operation, base cycle count and whether a crossed page boundary costs
// one extra cycle for this encoding.
type Instruction struct {
	Op        opID
	Mode      addrMode
	Cycles    int
	PageCycle bool
}

// opTable holds the 256 opcode slots. Unlisted slots stay at the zero
// value (opXXX) and fault on execution. The undocumented NOP family is
// decoded with its documented widths so ROMs that rely on it keep running.
var opTable = [256]Instruction{
	// Loads and stores.
	0xA9: {opLDA, modeImmediate, 2, false},
	0xA5: {opLDA, modeZeroPage, 3, false},
	0xB5: {opLDA, modeZeroPageX, 4, false},
	0xAD: {opLDA, modeAbsolute, 4, false},
	0xBD: {opLDA, modeAbsoluteX, 4, true},
	0xB9: {opLDA, modeAbsoluteY, 4, true},
	0xA1: {opLDA, modeIndexedIndirect, 6, false},
	0xB1: {opLDA, modeIndirectIndexed, 5, true},
	0xA2: {opLDX, modeImmediate, 2, false},
	0xA6: {opLDX, modeZeroPage, 3, false},
	0xB6: {opLDX, modeZeroPageY, 4, false},
	0xAE: {opLDX, modeAbsolute, 4, false},
	0xBE: {opLDX, modeAbsoluteY, 4, true},
	0xA0: {opLDY, modeImmediate, 2, false},
	0xA4: {opLDY, modeZeroPage, 3, false},
	0xB4: {opLDY, modeZeroPageX, 4, false},
	0xAC: {opLDY, modeAbsolute, 4, false},
	0xBC: {opLDY, modeAbsoluteX, 4, true},
	0x85: {opSTA, modeZeroPage, 3, false},
	0x95: {opSTA, modeZeroPageX, 4, false},
	0x8D: {opSTA, modeAbsolute, 4, false},
	0x9D: {opSTA, modeAbsoluteX, 5, false},
	0x99: {opSTA, modeAbsoluteY, 5, false},
	0x81: {opSTA, modeIndexedIndirect, 6, false},
	0x91: {opSTA, modeIndirectIndexed, 6, false},
	0x86: {opSTX, modeZeroPage, 3, false},
	0x96: {opSTX, modeZeroPageY, 4, false},
	0x8E: {opSTX, modeAbsolute, 4, false},
	0x84: {opSTY, modeZeroPage, 3, false},
	0x94: {opSTY, modeZeroPageX, 4, false},
	0x8C: {opSTY, modeAbsolute, 4, false},

	// Arithmetic.
	0x69: {opADC, modeImmediate, 2, false},
	0x65: {opADC, modeZeroPage, 3, false},
	0x75: {opADC, modeZeroPageX, 4, false},
	0x6D: {opADC, modeAbsolute, 4, false},
	0x7D: {opADC, modeAbsoluteX, 4, true},
	0x79: {opADC, modeAbsoluteY, 4, true},
	0x61: {opADC, modeIndexedIndirect, 6, false},
	0x71: {opADC, modeIndirectIndexed, 5, true},
	0xE9: {opSBC, modeImmediate, 2, false},
	0xE5: {opSBC, modeZeroPage, 3, false},
	0xF5: {opSBC, modeZeroPageX, 4, false},
	0xED: {opSBC, modeAbsolute, 4, false},
	0xFD: {opSBC, modeAbsoluteX, 4, true},
	0xF9: {opSBC, modeAbsoluteY, 4, true},
	0xE1: {opSBC, modeIndexedIndirect, 6, false},
	0xF1: {opSBC, modeIndirectIndexed, 5, true},

	// Logic.
	0x29: {opAND, modeImmediate, 2, false},
	0x25: {opAND, modeZeroPage, 3, false},
	0x35: {opAND, modeZeroPageX, 4, false},
	0x2D: {opAND, modeAbsolute, 4, false},
	0x3D: {opAND, modeAbsoluteX, 4, true},
	0x39: {opAND, modeAbsoluteY, 4, true},
	0x21: {opAND, modeIndexedIndirect, 6, false},
	0x31: {opAND, modeIndirectIndexed, 5, true},
	0x09: {opORA, modeImmediate, 2, false},
	0x05: {opORA, modeZeroPage, 3, false},
	0x15: {opORA, modeZeroPageX, 4, false},
	0x0D: {opORA, modeAbsolute, 4, false},
	0x1D: {opORA, modeAbsoluteX, 4, true},
	0x19: {opORA, modeAbsoluteY, 4, true},
	0x01: {opORA, modeIndexedIndirect, 6, false},
	0x11: {opORA, modeIndirectIndexed, 5, true},
	0x49: {opEOR, modeImmediate, 2, false},
	0x45: {opEOR, modeZeroPage, 3, false},
	0x55: {opEOR, modeZeroPageX, 4, false},
	0x4D: {opEOR, modeAbsolute, 4, false},
	0x5D: {opEOR, modeAbsoluteX, 4, true},
	0x59: {opEOR, modeAbsoluteY, 4, true},
	0x41: {opEOR, modeIndexedIndirect, 6, false},
	0x51: {opEOR, modeIndirectIndexed, 5, true},
	0x24: {opBIT, modeZeroPage, 3, false},
	0x2C: {opBIT, modeAbsolute, 4, false},

	// Compares.
	0xC9: {opCMP, modeImmediate, 2, false},
	0xC5: {opCMP, modeZeroPage, 3, false},
	0xD5: {opCMP, modeZeroPageX, 4, false},
	0xCD: {opCMP, modeAbsolute, 4, false},
	0xDD: {opCMP, modeAbsoluteX, 4, true},
	0xD9: {opCMP, modeAbsoluteY, 4, true},
	0xC1: {opCMP, modeIndexedIndirect, 6, false},
	0xD1: {opCMP, modeIndirectIndexed, 5, true},
	0xE0: {opCPX, modeImmediate, 2, false},
	0xE4: {opCPX, modeZeroPage, 3, false},
	0xEC: {opCPX, modeAbsolute, 4, false},
	0xC0: {opCPY, modeImmediate, 2, false},
	0xC4: {opCPY, modeZeroPage, 3, false},
	0xCC: {opCPY, modeAbsolute, 4, false},

	// Increments and decrements.
	0xE6: {opINC, modeZeroPage, 5, false},
	0xF6: {opINC, modeZeroPageX, 6, false},
	0xEE: {opINC, modeAbsolute, 6, false},
	0xFE: {opINC, modeAbsoluteX, 7, false},
	0xC6: {opDEC, modeZeroPage, 5, false},
	0xD6: {opDEC, modeZeroPageX, 6, false},
	0xCE: {opDEC, modeAbsolute, 6, false},
	0xDE: {opDEC, modeAbsoluteX, 7, false},
	0xE8: {opINX, modeImplied, 2, false},
	0xC8: {opINY, modeImplied, 2, false},
	0xCA: {opDEX, modeImplied, 2, false},
	0x88: {opDEY, modeImplied, 2, false},

	// Shifts and rotates.
	0x0A: {opASL, modeAccumulator, 2, false},
	0x06: {opASL, modeZeroPage, 5, false},
	0x16: {opASL, modeZeroPageX, 6, false},
	0x0E: {opASL, modeAbsolute, 6, false},
	0x1E: {opASL, modeAbsoluteX, 7, false},
	0x4A: {opLSR, modeAccumulator, 2, false},
	0x46: {opLSR, modeZeroPage, 5, false},
	0x56: {opLSR, modeZeroPageX, 6, false},
	0x4E: {opLSR, modeAbsolute, 6, false},
	0x5E: {opLSR, modeAbsoluteX, 7, false},
	0x2A: {opROL, modeAccumulator, 2, false},
	0x26: {opROL, modeZeroPage, 5, false},
	0x36: {opROL, modeZeroPageX, 6, false},
	0x2E: {opROL, modeAbsolute, 6, false},
	0x3E: {opROL, modeAbsoluteX, 7, false},
	0x6A: {opROR, modeAccumulator, 2, false},
	0x66: {opROR, modeZeroPage, 5, false},
	0x76: {opROR, modeZeroPageX, 6, false},
	0x6E: {opROR, modeAbsolute, 6, false},
	0x7E: {opROR, modeAbsoluteX, 7, false},

	// Jumps and subroutines.
	0x4C: {opJMP, modeAbsolute, 3, false},
	0x6C: {opJMP, modeIndirect, 5, false},
	0x20: {opJSR, modeAbsolute, 6, false},
	0x60: {opRTS, modeImplied, 6, false},
	0x00: {opBRK, modeImplied, 7, false},
	0x40: {opRTI, modeImplied, 6, false},

	// Branches. Base 2 cycles; +1 taken, +1 more crossing a page.
	0x90: {opBCC, modeRelative, 2, false},
	0xB0: {opBCS, modeRelative, 2, false},
	0xF0: {opBEQ, modeRelative, 2, false},
	0xD0: {opBNE, modeRelative, 2, false},
	0x30: {opBMI, modeRelative, 2, false},
	0x10: {opBPL, modeRelative, 2, false},
	0x50: {opBVC, modeRelative, 2, false},
	0x70: {opBVS, modeRelative, 2, false},

	// Stack and register transfers.
	0x48: {opPHA, modeImplied, 3, false},
	0x68: {opPLA, modeImplied, 4, false},
	0x08: {opPHP, modeImplied, 3, false},
	0x28: {opPLP, modeImplied, 4, false},
	0xAA: {opTAX, modeImplied, 2, false},
	0x8A: {opTXA, modeImplied, 2, false},
	0xA8: {opTAY, modeImplied, 2, false},
	0x98: {opTYA, modeImplied, 2, false},
	0xBA: {opTSX, modeImplied, 2, false},
	0x9A: {opTXS, modeImplied, 2, false},

	// Flag operations.
	0x18: {opCLC, modeImplied, 2, false},
	0x38: {opSEC, modeImplied, 2, false},
	0x58: {opCLI, modeImplied, 2, false},
	0x78: {opSEI, modeImplied, 2, false},
	0xB8: {opCLV, modeImplied, 2, false},
	0xD8: {opCLD, modeImplied, 2, false},
	0xF8: {opSED, modeImplied, 2, false},

	// NOP and its undocumented multi-byte variants.
	0xEA: {opNOP, modeImplied, 2, false},
	0x1A: {opNOP, modeImplied, 2, false},
	0x3A: {opNOP, modeImplied, 2, false},
	0x5A: {opNOP, modeImplied, 2, false},
	0x7A: {opNOP, modeImplied, 2, false},
	0xDA: {opNOP, modeImplied, 2, false},
	0xFA: {opNOP, modeImplied, 2, false},
	0x80: {opNOP, modeImmediate, 2, false},
	0x82: {opNOP, modeImmediate, 2, false},
	0x89: {opNOP, modeImmediate, 2, false},
	0xC2: {opNOP, modeImmediate, 2, false},
	0xE2: {opNOP, modeImmediate, 2, false},
	0x04: {opNOP, modeZeroPage, 3, false},
	0x44: {opNOP, modeZeroPage, 3, false},
	0x64: {opNOP, modeZeroPage, 3, false},
	0x14: {opNOP, modeZeroPageX, 4, false},
	0x34: {opNOP, modeZeroPageX, 4, false},
	0x54: {opNOP, modeZeroPageX, 4, false},
	0x74: {opNOP, modeZeroPageX, 4, false},
	0xD4: {opNOP, modeZeroPageX, 4, false},
	0xF4: {opNOP, modeZeroPageX, 4, false},
	0x0C: {opNOP, modeAbsolute, 4, false},
	0x1C: {opNOP, modeAbsoluteX, 4, true},
	0x3C: {opNOP, modeAbsoluteX, 4, true},
	0x5C: {opNOP, modeAbsoluteX, 4, true},
	0x7C: {opNOP, modeAbsoluteX, 4, true},
	0xDC: {opNOP, modeAbsoluteX, 4, true},
	0xFC: {opNOP, modeAbsoluteX, 4, true},
}

var opNames = [...]string{
	opXXX: "???", opADC: "ADC", opAND: "AND", opASL: "ASL", opBCC: "BCC",
	opBCS: "BCS", opBEQ: "BEQ", opBIT: "BIT", opBMI: "BMI", opBNE: "BNE",
	opBPL: "BPL", opBRK: "BRK", opBVC: "BVC", opBVS: "BVS", opCLC: "CLC",
	opCLD: "CLD", opCLI: "CLI", opCLV: "CLV", opCMP: "CMP", opCPX: "CPX",
	opCPY: "CPY", opDEC: "DEC", opDEX: "DEX", opDEY: "DEY", opEOR: "EOR",
	opINC: "INC", opINX: "INX", opINY: "INY", opJMP: "JMP", opJSR: "JSR",
	opLDA: "LDA", opLDX: "LDX", opLDY: "LDY", opLSR: "LSR", opNOP: "NOP",
	opORA: "ORA", opPHA: "PHA", opPHP: "PHP", opPLA: "PLA", opPLP: "PLP",
	opROL: "ROL", opROR: "ROR", opRTI: "RTI", opRTS: "RTS", opSBC: "SBC",
	opSEC: "SEC", opSED: "SED", opSEI: "SEI", opSTA: "STA", opSTX: "STX",
	opSTY: "STY", opTAX: "TAX", opTAY: "TAY", opTSX: "TSX", opTXA: "TXA",
	opTXS: "TXS", opTYA: "TYA",
}

// OpcodeName returns the mnemonic for an opcode byte.
func OpcodeName(opcode byte) string {
	return opNames[opTable[opcode].Op]
}

// OpcodeSize returns the byte length of an opcode's encoding.
func OpcodeSize(opcode byte) uint16 {
	return modeSizes[opTable[opcode].Mode]
}
