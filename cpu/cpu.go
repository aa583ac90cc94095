package cpu

import "fmt"

// Bus defines the interface for the CPU to interact with the bus.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, data byte)
}

// Interrupt vectors.
const (
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Status flag bits. The unused bit reads as 1 on real hardware and is
// kept set in P at all times.
const (
	FlagC byte = 1 << 0
	FlagZ byte = 1 << 1
	FlagI byte = 1 << 2
	FlagD byte = 1 << 3
	FlagB byte = 1 << 4
	FlagU byte = 1 << 5
	FlagV byte = 1 << 6
	FlagN byte = 1 << 7
)

const (
	interruptNone = iota
	interruptNMI
	interruptIRQ
)

// CPUFrequency is the NTSC 2A03 clock rate in Hz.
const CPUFrequency = 1789773

// IllegalOpcodeError reports an opcode byte with no decodable operation.
// Execution is not recoverable past one of these: silently treating the
// byte as a NOP would desynchronize everything that follows.
type IllegalOpcodeError struct {
	Opcode byte
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode $%02X at $%04X", e.Opcode, e.PC)
}

// CPU represents the 6502 core of the 2A03.
type CPU struct {
	// Program Counter
	PC uint16

	// Stack Pointer
	SP byte

	// Accumulator
	A byte

	// Index Register X
	X byte

	// Index Register Y
	Y byte

	// Processor Status
	P byte

	// Cycles counts every CPU cycle since reset.
	Cycles uint64

	bus       Bus
	interrupt byte
	stall     int
}

// New creates a new CPU instance attached to the given bus.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset loads PC from the reset vector and restores the power-on
// register state. The sequence consumes 8 cycles.
func (c *CPU) Reset() {
	c.PC = c.read16(resetVector)
	c.SP = 0xFD
	c.A = 0
	c.X = 0
	c.Y = 0
	c.P = FlagI | FlagU
	c.interrupt = interruptNone
	c.stall = 0
	c.Cycles += 8
}

// TriggerNMI queues a non-maskable interrupt for delivery before the
// next instruction fetch.
func (c *CPU) TriggerNMI() {
	c.interrupt = interruptNMI
}

// TriggerIRQ queues a maskable interrupt. It is dropped while I is set.
func (c *CPU) TriggerIRQ() {
	if c.P&FlagI == 0 {
		c.interrupt = interruptIRQ
	}
}

// AddStall suspends the CPU for n cycles (OAM DMA).
func (c *CPU) AddStall(n int) {
	c.stall += n
}

// Step runs one CPU step and returns the cycles it consumed: a stall
// cycle, a pending interrupt sequence, or one full instruction.
func (c *CPU) Step() (int, error) {
	if c.stall > 0 {
		c.stall--
		c.Cycles++
		return 1, nil
	}

	if c.interrupt != interruptNone {
		vector := uint16(irqVector)
		if c.interrupt == interruptNMI {
			vector = nmiVector
		}
		c.interrupt = interruptNone
		c.push16(c.PC)
		c.push(c.P&^FlagB | FlagU)
		c.P |= FlagI
		c.PC = c.read16(vector)
		c.Cycles += 7
		return 7, nil
	}

	opcodePC := c.PC
	opcode := c.bus.Read(opcodePC)
	in := opTable[opcode]
	if in.Op == opXXX {
		return 0, &IllegalOpcodeError{Opcode: opcode, PC: opcodePC}
	}

	addr, pageCrossed := c.operandAddress(in.Mode)
	c.PC += modeSizes[in.Mode]

	cycles := in.Cycles
	if pageCrossed && in.PageCycle {
		cycles++
	}

	cycles += c.execute(in.Op, in.Mode, addr)
	c.Cycles += uint64(cycles)
	return cycles, nil
}

// operandAddress resolves the effective address for an addressing mode
// and reports whether indexing crossed a page boundary.
func (c *CPU) operandAddress(mode addrMode) (uint16, bool) {
	switch mode {
	case modeImplied, modeAccumulator:
		return 0, false
	case modeImmediate:
		return c.PC + 1, false
	case modeZeroPage:
		return uint16(c.bus.Read(c.PC + 1)), false
	case modeZeroPageX:
		return uint16(c.bus.Read(c.PC+1) + c.X), false
	case modeZeroPageY:
		return uint16(c.bus.Read(c.PC+1) + c.Y), false
	case modeRelative:
		offset := uint16(c.bus.Read(c.PC + 1))
		if offset < 0x80 {
			return c.PC + 2 + offset, false
		}
		return c.PC + 2 + offset - 0x100, false
	case modeAbsolute:
		return c.read16(c.PC + 1), false
	case modeAbsoluteX:
		base := c.read16(c.PC + 1)
		addr := base + uint16(c.X)
		return addr, pageDiff(base, addr)
	case modeAbsoluteY:
		base := c.read16(c.PC + 1)
		addr := base + uint16(c.Y)
		return addr, pageDiff(base, addr)
	case modeIndirect:
		return c.read16Bug(c.read16(c.PC + 1)), false
	case modeIndexedIndirect:
		return c.read16Bug(uint16(c.bus.Read(c.PC+1) + c.X)), false
	case modeIndirectIndexed:
		base := c.read16Bug(uint16(c.bus.Read(c.PC + 1)))
		addr := base + uint16(c.Y)
		return addr, pageDiff(base, addr)
	}
	return 0, false
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return hi<<8 | lo
}

// read16Bug reproduces the 6502 indirect fetch bug: the high byte wraps
// within the page, so JMP ($10FF) reads $10FF and $1000.
func (c *CPU) read16Bug(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr&0xFF00 | uint16(byte(addr)+1)))
	return hi<<8 | lo
}

func pageDiff(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

func (c *CPU) push(value byte) {
	c.bus.Write(0x0100|uint16(c.SP), value)
	c.SP--
}

func (c *CPU) push16(value uint16) {
	c.push(byte(value >> 8))
	c.push(byte(value))
}

func (c *CPU) pull() byte {
	c.SP++
	return c.bus.Read(0x0100 | uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

func (c *CPU) setFlag(flag byte, set bool) {
	if set {
		c.P |= flag
	} else {
		c.P &^= flag
	}
}

func (c *CPU) flag(flag byte) bool {
	return c.P&flag != 0
}

func (c *CPU) setZN(value byte) {
	c.setFlag(FlagZ, value == 0)
	c.setFlag(FlagN, value&0x80 != 0)
}

func (c *CPU) compare(a, b byte) {
	c.setZN(a - b)
	c.setFlag(FlagC, a >= b)
}

// branch applies a taken branch: +1 cycle, +1 more if the target is on
// a different page than the following instruction.
func (c *CPU) branch(addr uint16) int {
	cycles := 1
	if pageDiff(c.PC, addr) {
		cycles++
	}
	c.PC = addr
	return cycles
}

// execute performs one operation and returns any extra cycles it cost
// beyond the table's base count (taken branches only).
func (c *CPU) execute(op opID, mode addrMode, addr uint16) int {
	switch op {
	case opLDA:
		c.A = c.bus.Read(addr)
		c.setZN(c.A)
	case opLDX:
		c.X = c.bus.Read(addr)
		c.setZN(c.X)
	case opLDY:
		c.Y = c.bus.Read(addr)
		c.setZN(c.Y)
	case opSTA:
		c.bus.Write(addr, c.A)
	case opSTX:
		c.bus.Write(addr, c.X)
	case opSTY:
		c.bus.Write(addr, c.Y)

	case opADC:
		a := c.A
		b := c.bus.Read(addr)
		carry := byte(0)
		if c.flag(FlagC) {
			carry = 1
		}
		c.A = a + b + carry
		c.setZN(c.A)
		c.setFlag(FlagC, int(a)+int(b)+int(carry) > 0xFF)
		c.setFlag(FlagV, (a^b)&0x80 == 0 && (a^c.A)&0x80 != 0)
	case opSBC:
		a := c.A
		b := c.bus.Read(addr)
		borrow := byte(1)
		if c.flag(FlagC) {
			borrow = 0
		}
		c.A = a - b - borrow
		c.setZN(c.A)
		c.setFlag(FlagC, int(a)-int(b)-int(borrow) >= 0)
		c.setFlag(FlagV, (a^b)&0x80 != 0 && (a^c.A)&0x80 != 0)

	case opAND:
		c.A &= c.bus.Read(addr)
		c.setZN(c.A)
	case opORA:
		c.A |= c.bus.Read(addr)
		c.setZN(c.A)
	case opEOR:
		c.A ^= c.bus.Read(addr)
		c.setZN(c.A)
	case opBIT:
		value := c.bus.Read(addr)
		c.setFlag(FlagZ, c.A&value == 0)
		c.setFlag(FlagV, value&0x40 != 0)
		c.setFlag(FlagN, value&0x80 != 0)

	case opCMP:
		c.compare(c.A, c.bus.Read(addr))
	case opCPX:
		c.compare(c.X, c.bus.Read(addr))
	case opCPY:
		c.compare(c.Y, c.bus.Read(addr))

	case opINC:
		value := c.bus.Read(addr) + 1
		c.bus.Write(addr, value)
		c.setZN(value)
	case opDEC:
		value := c.bus.Read(addr) - 1
		c.bus.Write(addr, value)
		c.setZN(value)
	case opINX:
		c.X++
		c.setZN(c.X)
	case opINY:
		c.Y++
		c.setZN(c.Y)
	case opDEX:
		c.X--
		c.setZN(c.X)
	case opDEY:
		c.Y--
		c.setZN(c.Y)

	case opASL:
		if mode == modeAccumulator {
			c.setFlag(FlagC, c.A&0x80 != 0)
			c.A <<= 1
			c.setZN(c.A)
		} else {
			value := c.bus.Read(addr)
			c.setFlag(FlagC, value&0x80 != 0)
			value <<= 1
			c.bus.Write(addr, value)
			c.setZN(value)
		}
	case opLSR:
		if mode == modeAccumulator {
			c.setFlag(FlagC, c.A&1 != 0)
			c.A >>= 1
			c.setZN(c.A)
		} else {
			value := c.bus.Read(addr)
			c.setFlag(FlagC, value&1 != 0)
			value >>= 1
			c.bus.Write(addr, value)
			c.setZN(value)
		}
	case opROL:
		carry := byte(0)
		if c.flag(FlagC) {
			carry = 1
		}
		if mode == modeAccumulator {
			c.setFlag(FlagC, c.A&0x80 != 0)
			c.A = c.A<<1 | carry
			c.setZN(c.A)
		} else {
			value := c.bus.Read(addr)
			c.setFlag(FlagC, value&0x80 != 0)
			value = value<<1 | carry
			c.bus.Write(addr, value)
			c.setZN(value)
		}
	case opROR:
		carry := byte(0)
		if c.flag(FlagC) {
			carry = 1
		}
		if mode == modeAccumulator {
			c.setFlag(FlagC, c.A&1 != 0)
			c.A = c.A>>1 | carry<<7
			c.setZN(c.A)
		} else {
			value := c.bus.Read(addr)
			c.setFlag(FlagC, value&1 != 0)
			value = value>>1 | carry<<7
			c.bus.Write(addr, value)
			c.setZN(value)
		}

	case opJMP:
		c.PC = addr
	case opJSR:
		c.push16(c.PC - 1)
		c.PC = addr
	case opRTS:
		c.PC = c.pull16() + 1
	case opBRK:
		c.push16(c.PC + 1)
		c.push(c.P | FlagB | FlagU)
		c.P |= FlagI
		c.PC = c.read16(irqVector)
	case opRTI:
		c.P = c.pull()&^FlagB | FlagU
		c.PC = c.pull16()

	case opBCC:
		if !c.flag(FlagC) {
			return c.branch(addr)
		}
	case opBCS:
		if c.flag(FlagC) {
			return c.branch(addr)
		}
	case opBEQ:
		if c.flag(FlagZ) {
			return c.branch(addr)
		}
	case opBNE:
		if !c.flag(FlagZ) {
			return c.branch(addr)
		}
	case opBMI:
		if c.flag(FlagN) {
			return c.branch(addr)
		}
	case opBPL:
		if !c.flag(FlagN) {
			return c.branch(addr)
		}
	case opBVS:
		if c.flag(FlagV) {
			return c.branch(addr)
		}
	case opBVC:
		if !c.flag(FlagV) {
			return c.branch(addr)
		}

	case opPHA:
		c.push(c.A)
	case opPLA:
		c.A = c.pull()
		c.setZN(c.A)
	case opPHP:
		c.push(c.P | FlagB | FlagU)
	case opPLP:
		c.P = c.pull()&^FlagB | FlagU

	case opTAX:
		c.X = c.A
		c.setZN(c.X)
	case opTXA:
		c.A = c.X
		c.setZN(c.A)
	case opTAY:
		c.Y = c.A
		c.setZN(c.Y)
	case opTYA:
		c.A = c.Y
		c.setZN(c.A)
	case opTSX:
		c.X = c.SP
		c.setZN(c.X)
	case opTXS:
		c.SP = c.X

	case opCLC:
		c.P &^= FlagC
	case opSEC:
		c.P |= FlagC
	case opCLI:
		c.P &^= FlagI
	case opSEI:
		c.P |= FlagI
	case opCLV:
		c.P &^= FlagV
	case opCLD:
		c.P &^= FlagD
	case opSED:
		c.P |= FlagD

	case opNOP:
	}
	return 0
}
