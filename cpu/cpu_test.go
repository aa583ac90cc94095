package cpu

import (
	"errors"
	"testing"
)

type mockBus struct {
	ram [65536]byte
}

func (b *mockBus) Read(addr uint16) byte {
	return b.ram[addr]
}

func (b *mockBus) Write(addr uint16, data byte) {
	b.ram[addr] = data
}

func setupCPU(t *testing.T) (*CPU, *mockBus) {
	t.Helper()
	bus := &mockBus{}
	// Reset vector points at $8000.
	bus.ram[0xFFFC] = 0x00
	bus.ram[0xFFFD] = 0x80
	c := New(bus)
	c.Reset()
	return c, bus
}

func step(t *testing.T, c *CPU) int {
	t.Helper()
	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	return cycles
}

func TestReset(t *testing.T) {
	c, _ := setupCPU(t)

	if c.PC != 0x8000 {
		t.Errorf("expected PC 0x8000 from reset vector, got 0x%04X", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("expected SP 0xFD, got 0x%02X", c.SP)
	}
	if c.P != FlagI|FlagU {
		t.Errorf("expected P = I|U, got 0x%02X", c.P)
	}
	if c.Cycles != 8 {
		t.Errorf("expected 8 reset cycles, got %d", c.Cycles)
	}
}

func TestLoadStore(t *testing.T) {
	c, bus := setupCPU(t)

	// LDA #$42
	bus.ram[0x8000] = 0xA9
	bus.ram[0x8001] = 0x42
	if cycles := step(t, c); cycles != 2 {
		t.Errorf("LDA IMM expected 2 cycles, got %d", cycles)
	}
	if c.A != 0x42 {
		t.Error("LDA IMM failed")
	}

	// STA $0110
	bus.ram[0x8002] = 0x8D
	bus.ram[0x8003] = 0x10
	bus.ram[0x8004] = 0x01
	step(t, c)
	if bus.ram[0x0110] != 0x42 {
		t.Error("STA ABS failed")
	}
	if c.PC != 0x8005 {
		t.Errorf("expected PC 0x8005, got 0x%04X", c.PC)
	}
}

func TestArithmetic(t *testing.T) {
	c, bus := setupCPU(t)

	// ADC #$05
	c.A = 10
	bus.ram[0x8000] = 0x69
	bus.ram[0x8001] = 0x05
	step(t, c)
	if c.A != 15 {
		t.Errorf("ADC expected 15, got %d", c.A)
	}
	if c.flag(FlagC) {
		t.Error("ADC should not carry")
	}

	// ADC #$F6 -> 15 + 246 = 261, wraps to 5 with carry
	bus.ram[0x8002] = 0x69
	bus.ram[0x8003] = 0xF6
	step(t, c)
	if c.A != 5 {
		t.Errorf("ADC wrap expected 5, got %d", c.A)
	}
	if !c.flag(FlagC) {
		t.Error("ADC should set carry")
	}

	// SBC #$03 with carry set: 5 - 3 = 2
	bus.ram[0x8004] = 0xE9
	bus.ram[0x8005] = 0x03
	step(t, c)
	if c.A != 2 {
		t.Errorf("SBC expected 2, got %d", c.A)
	}
	if !c.flag(FlagC) {
		t.Error("SBC should keep carry on no borrow")
	}
}

func TestOverflowFlag(t *testing.T) {
	c, bus := setupCPU(t)

	// 0x50 + 0x50 = 0xA0: positive + positive = negative, V set.
	c.A = 0x50
	bus.ram[0x8000] = 0x69
	bus.ram[0x8001] = 0x50
	step(t, c)
	if !c.flag(FlagV) {
		t.Error("ADC should set overflow")
	}
	if !c.flag(FlagN) {
		t.Error("ADC should set negative")
	}
}

func TestBranchCycles(t *testing.T) {
	c, bus := setupCPU(t)

	// BNE not taken: 2 cycles.
	c.P |= FlagZ
	bus.ram[0x8000] = 0xD0
	bus.ram[0x8001] = 0x10
	if cycles := step(t, c); cycles != 2 {
		t.Errorf("untaken branch expected 2 cycles, got %d", cycles)
	}
	if c.PC != 0x8002 {
		t.Errorf("untaken branch moved PC to 0x%04X", c.PC)
	}

	// BNE taken, same page: 3 cycles.
	c.P &^= FlagZ
	c.PC = 0x8000
	if cycles := step(t, c); cycles != 3 {
		t.Errorf("taken branch expected 3 cycles, got %d", cycles)
	}
	if c.PC != 0x8012 {
		t.Errorf("taken branch expected PC 0x8012, got 0x%04X", c.PC)
	}

	// BNE taken across a page: 4 cycles.
	c.PC = 0x80F0
	bus.ram[0x80F0] = 0xD0
	bus.ram[0x80F1] = 0x20
	if cycles := step(t, c); cycles != 4 {
		t.Errorf("page-crossing branch expected 4 cycles, got %d", cycles)
	}
}

func TestPageCrossCycle(t *testing.T) {
	c, bus := setupCPU(t)

	// LDA $80FF,X with X=1 crosses into $8100: 4+1 cycles.
	c.X = 1
	bus.ram[0x8000] = 0xBD
	bus.ram[0x8001] = 0xFF
	bus.ram[0x8002] = 0x80
	if cycles := step(t, c); cycles != 5 {
		t.Errorf("page-crossing LDA abs,X expected 5 cycles, got %d", cycles)
	}

	// No crossing: 4 cycles.
	c.PC = 0x8003
	c.X = 0
	bus.ram[0x8003] = 0xBD
	bus.ram[0x8004] = 0x10
	bus.ram[0x8005] = 0x80
	if cycles := step(t, c); cycles != 4 {
		t.Errorf("LDA abs,X expected 4 cycles, got %d", cycles)
	}

	// STA abs,X always takes 5 cycles, crossing or not.
	c.PC = 0x8006
	c.X = 1
	bus.ram[0x8006] = 0x9D
	bus.ram[0x8007] = 0xFF
	bus.ram[0x8008] = 0x80
	if cycles := step(t, c); cycles != 5 {
		t.Errorf("STA abs,X expected 5 cycles, got %d", cycles)
	}
}

func TestStack(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x37
	bus.ram[0x8000] = 0x48 // PHA
	step(t, c)
	if bus.ram[0x01FD] != 0x37 {
		t.Error("PHA did not write the stack page")
	}
	if c.SP != 0xFC {
		t.Errorf("expected SP 0xFC after push, got 0x%02X", c.SP)
	}

	c.A = 0
	bus.ram[0x8001] = 0x68 // PLA
	step(t, c)
	if c.A != 0x37 {
		t.Error("PLA did not restore A")
	}
	if c.SP != 0xFD {
		t.Errorf("expected SP 0xFD after pull, got 0x%02X", c.SP)
	}
}

func TestJSRRTS(t *testing.T) {
	c, bus := setupCPU(t)

	// JSR $9000
	bus.ram[0x8000] = 0x20
	bus.ram[0x8001] = 0x00
	bus.ram[0x8002] = 0x90
	step(t, c)
	if c.PC != 0x9000 {
		t.Errorf("JSR expected PC 0x9000, got 0x%04X", c.PC)
	}

	// RTS
	bus.ram[0x9000] = 0x60
	step(t, c)
	if c.PC != 0x8003 {
		t.Errorf("RTS expected PC 0x8003, got 0x%04X", c.PC)
	}
}

func TestBRKRTI(t *testing.T) {
	c, bus := setupCPU(t)
	bus.ram[0xFFFE] = 0x00
	bus.ram[0xFFFF] = 0x90

	bus.ram[0x8000] = 0x00 // BRK
	step(t, c)
	if c.PC != 0x9000 {
		t.Errorf("BRK expected PC 0x9000, got 0x%04X", c.PC)
	}
	if !c.flag(FlagI) {
		t.Error("BRK should set I")
	}
	// B and U are set in the pushed copy.
	if bus.ram[0x01FB]&(FlagB|FlagU) != FlagB|FlagU {
		t.Errorf("pushed status 0x%02X missing B|U", bus.ram[0x01FB])
	}

	bus.ram[0x9000] = 0x40 // RTI
	step(t, c)
	// BRK pushes PC+2 as the return address.
	if c.PC != 0x8002 {
		t.Errorf("RTI expected PC 0x8002, got 0x%04X", c.PC)
	}
	if c.flag(FlagB) {
		t.Error("B must not survive RTI")
	}
	if !c.flag(FlagU) {
		t.Error("U must stay set after RTI")
	}
}

func TestNMI(t *testing.T) {
	c, bus := setupCPU(t)
	bus.ram[0xFFFA] = 0x00
	bus.ram[0xFFFB] = 0xA0

	c.TriggerNMI()
	cycles := step(t, c)
	if cycles != 7 {
		t.Errorf("NMI expected 7 cycles, got %d", cycles)
	}
	if c.PC != 0xA000 {
		t.Errorf("NMI expected PC 0xA000, got 0x%04X", c.PC)
	}
	// The pushed status has B clear.
	if bus.ram[0x01FB]&FlagB != 0 {
		t.Errorf("NMI pushed status 0x%02X with B set", bus.ram[0x01FB])
	}
}

func TestIRQMasked(t *testing.T) {
	c, bus := setupCPU(t)

	// I is set after reset, so the IRQ is dropped.
	c.TriggerIRQ()
	bus.ram[0x8000] = 0xEA // NOP
	step(t, c)
	if c.PC != 0x8001 {
		t.Errorf("masked IRQ taken, PC 0x%04X", c.PC)
	}

	bus.ram[0xFFFE] = 0x00
	bus.ram[0xFFFF] = 0xB0
	c.P &^= FlagI
	c.TriggerIRQ()
	step(t, c)
	if c.PC != 0xB000 {
		t.Errorf("IRQ expected PC 0xB000, got 0x%04X", c.PC)
	}
}

func TestIllegalOpcode(t *testing.T) {
	c, bus := setupCPU(t)

	bus.ram[0x8000] = 0x02 // KIL
	_, err := c.Step()
	var illegal *IllegalOpcodeError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalOpcodeError, got %v", err)
	}
	if illegal.Opcode != 0x02 || illegal.PC != 0x8000 {
		t.Errorf("error carries opcode 0x%02X at 0x%04X", illegal.Opcode, illegal.PC)
	}
	if c.PC != 0x8000 {
		t.Errorf("PC moved past illegal opcode to 0x%04X", c.PC)
	}
}

func TestJMPIndirectBug(t *testing.T) {
	c, bus := setupCPU(t)

	// JMP ($10FF): the high byte comes from $1000, not $1100.
	bus.ram[0x8000] = 0x6C
	bus.ram[0x8001] = 0xFF
	bus.ram[0x8002] = 0x10
	bus.ram[0x10FF] = 0x34
	bus.ram[0x1000] = 0x12
	bus.ram[0x1100] = 0x99
	step(t, c)
	if c.PC != 0x1234 {
		t.Errorf("expected PC 0x1234 from wrapped fetch, got 0x%04X", c.PC)
	}
}

func TestStall(t *testing.T) {
	c, bus := setupCPU(t)
	bus.ram[0x8000] = 0xEA // NOP

	c.AddStall(3)
	for i := 0; i < 3; i++ {
		if cycles := step(t, c); cycles != 1 {
			t.Fatalf("stall step expected 1 cycle, got %d", cycles)
		}
		if c.PC != 0x8000 {
			t.Fatal("stall executed an instruction")
		}
	}

	step(t, c)
	if c.PC != 0x8001 {
		t.Error("NOP not executed after stall drained")
	}
}

func TestUndocumentedNOPs(t *testing.T) {
	c, bus := setupCPU(t)

	// $1A is a one-byte NOP, $80 skips its immediate operand.
	bus.ram[0x8000] = 0x1A
	bus.ram[0x8001] = 0x80
	bus.ram[0x8002] = 0x42
	step(t, c)
	if c.PC != 0x8001 {
		t.Errorf("expected PC 0x8001, got 0x%04X", c.PC)
	}
	step(t, c)
	if c.PC != 0x8003 {
		t.Errorf("expected PC 0x8003, got 0x%04X", c.PC)
	}
}

func TestOpcodeMetadata(t *testing.T) {
	if name := OpcodeName(0xA9); name != "LDA" {
		t.Errorf("expected LDA, got %s", name)
	}
	if size := OpcodeSize(0xA9); size != 2 {
		t.Errorf("expected size 2, got %d", size)
	}
	if size := OpcodeSize(0x4C); size != 3 {
		t.Errorf("expected size 3, got %d", size)
	}
	if name := OpcodeName(0x02); name != "???" {
		t.Errorf("expected ??? for illegal opcode, got %s", name)
	}
}
