// Package bus wires the CPU, PPU, APU, cartridge and controllers into a
// single System and owns the master clock: one CPU cycle drives three
// PPU dots.
package bus

import (
	"fmt"

	"github.com/meadori/nescore/apu"
	"github.com/meadori/nescore/cartridge"
	"github.com/meadori/nescore/controller"
	"github.com/meadori/nescore/cpu"
	"github.com/meadori/nescore/mapper"
	"github.com/meadori/nescore/ppu"
)

// System is the console: it owns every component and routes the CPU's
// 64KB address space. Components never reach back into the System.
type System struct {
	CPU  *cpu.CPU
	PPU  *ppu.PPU
	APU  *apu.APU
	Cart *cartridge.Cartridge

	mapper      mapper.Mapper
	ram         [2048]byte
	controllers [2]*controller.Controller
}

// New builds a System around a loaded cartridge.
func New(cart *cartridge.Cartridge, sampleRate int) (*System, error) {
	m, err := mapper.New(cart)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	s := &System{
		PPU:    ppu.New(m),
		APU:    apu.New(sampleRate),
		Cart:   cart,
		mapper: m,
	}
	s.controllers[0] = controller.New()
	s.controllers[1] = controller.New()
	s.CPU = cpu.New(s)
	s.CPU.Reset()
	return s, nil
}

// Controller returns controller 0 or 1.
func (s *System) Controller(n int) *controller.Controller {
	return s.controllers[n]
}

// Reset performs a soft reset. RAM is preserved, as on real hardware.
func (s *System) Reset() {
	s.CPU.Reset()
	s.PPU.Reset()
	s.APU.Reset()
}

// Read dispatches a CPU read.
func (s *System) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return s.ram[addr%2048]
	case addr < 0x4000:
		return s.PPU.ReadRegister(0x2000 + addr%8)
	case addr == 0x4015:
		return s.APU.ReadRegister(addr)
	case addr == 0x4016:
		return s.controllers[0].Read()
	case addr == 0x4017:
		return s.controllers[1].Read()
	case addr >= 0x6000:
		if data, ok := s.mapper.CPUMapRead(addr); ok {
			return data
		}
	}
	return 0
}

// Write dispatches a CPU write.
func (s *System) Write(addr uint16, data byte) {
	switch {
	case addr < 0x2000:
		s.ram[addr%2048] = data
	case addr < 0x4000:
		s.PPU.WriteRegister(0x2000+addr%8, data)
	case addr == 0x4014:
		s.oamDMA(data)
	case addr == 0x4016:
		s.controllers[0].Write(data)
		s.controllers[1].Write(data)
	case addr < 0x4018:
		s.APU.WriteRegister(addr, data)
	case addr >= 0x6000:
		s.mapper.CPUMapWrite(addr, data)
	}
}

// oamDMA copies a 256-byte CPU page into PPU OAM and suspends the CPU
// for 513 cycles, 514 when the write lands on an odd cycle.
func (s *System) oamDMA(page byte) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		s.PPU.WriteOAM(s.Read(base + uint16(i)))
	}
	stall := 513
	if s.CPU.Cycles%2 == 1 {
		stall++
	}
	s.CPU.AddStall(stall)
}

// StepInstruction delivers any pending NMI, executes one CPU
// instruction (or burns one DMA stall cycle) and advances the PPU three
// dots and the APU one step per CPU cycle. It returns the CPU cycles
// consumed.
func (s *System) StepInstruction() (int, error) {
	if s.PPU.NMI {
		s.PPU.NMI = false
		s.CPU.TriggerNMI()
	}
	cycles, err := s.CPU.Step()
	if err != nil {
		return cycles, err
	}
	for i := 0; i < cycles*3; i++ {
		s.PPU.Clock()
	}
	s.APU.Step(cycles)
	return cycles, nil
}

// StepFrame runs instructions until the PPU finishes the current frame.
func (s *System) StepFrame() (int, error) {
	total := 0
	frame := s.PPU.FrameCount
	for frame == s.PPU.FrameCount {
		cycles, err := s.StepInstruction()
		total += cycles
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
