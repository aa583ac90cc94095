// Command nestest runs the nestest ROM on a flat 64KB bus and prints
// one log line per instruction in the format the reference log uses, so
// the output can be diffed against nestest.log.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/meadori/nescore/cartridge"
	"github.com/meadori/nescore/cpu"
)

type flatBus struct {
	ram [65536]byte
}

func (b *flatBus) Read(addr uint16) byte {
	return b.ram[addr]
}

func (b *flatBus) Write(addr uint16, data byte) {
	b.ram[addr] = data
}

func main() {
	romPath := flag.String("rom", "nestest/testdata/nestest.nes", "path to nestest.nes")
	limit := flag.Int("n", 8991, "number of instructions to execute")
	flag.Parse()

	cart, err := cartridge.New(*romPath)
	if err != nil {
		log.Fatalf("loading nestest ROM: %v", err)
	}

	b := &flatBus{}
	copy(b.ram[0x8000:], cart.PRGROM[:16384])
	copy(b.ram[0xC000:], cart.PRGROM[:16384])

	c := cpu.New(b)
	c.Reset()
	// The automated portion of nestest starts at $C000 instead of the
	// reset vector.
	c.PC = 0xC000
	c.Cycles = 7

	for i := 0; i < *limit; i++ {
		opcode := b.Read(c.PC)
		size := cpu.OpcodeSize(opcode)

		raw := ""
		for j := uint16(0); j < size; j++ {
			raw += fmt.Sprintf("%02X ", b.Read(c.PC+j))
		}

		fmt.Printf("%04X  %-9s %-4s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
			c.PC, raw, cpu.OpcodeName(opcode), c.A, c.X, c.Y, c.P, c.SP, c.Cycles)

		if _, err := c.Step(); err != nil {
			log.Fatalf("at %04X: %v", c.PC, err)
		}
	}

	// nestest leaves its pass/fail codes in $02/$03.
	fmt.Printf("result: $02=%02X $03=%02X\n", b.Read(0x0002), b.Read(0x0003))
}
