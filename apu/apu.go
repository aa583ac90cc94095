// Package apu models the 2A03 audio unit's bus interface: the register
// file at $4000-$4017, the $4015 status read, and the sample stream the
// host consumes. Channel synthesis is not implemented; the stream
// carries silence at the configured rate so a host audio player can run
// against the real producer/consumer boundary.
package apu

const cpuFrequency = 1789773

// APU holds the audio register file and the outgoing sample buffer.
type APU struct {
	registers [0x18]byte
	enabled   byte // $4015 channel enable bits

	sampleRate   int
	sampleCarry  float64
	pendingZeros int
}

// New creates an APU producing samples at the given rate.
func New(sampleRate int) *APU {
	return &APU{sampleRate: sampleRate}
}

// Reset silences all channels.
func (a *APU) Reset() {
	a.registers = [0x18]byte{}
	a.enabled = 0
	a.sampleCarry = 0
	a.pendingZeros = 0
}

// WriteRegister stores a write to $4000-$4017.
func (a *APU) WriteRegister(addr uint16, data byte) {
	if addr < 0x4000 || addr > 0x4017 {
		return
	}
	a.registers[addr-0x4000] = data
	if addr == 0x4015 {
		a.enabled = data & 0x1F
	}
}

// ReadRegister serves CPU reads; only $4015 is readable.
func (a *APU) ReadRegister(addr uint16) byte {
	if addr == 0x4015 {
		return a.enabled
	}
	return 0
}

// Step advances the sample clock by the given number of CPU cycles.
func (a *APU) Step(cpuCycles int) {
	a.sampleCarry += float64(cpuCycles) * float64(a.sampleRate) / cpuFrequency
	n := int(a.sampleCarry)
	a.sampleCarry -= float64(n)
	a.pendingZeros += n
}

// ReadSamples fills p with 16-bit stereo samples, the format an ebiten
// audio stream expects. It never blocks; with no synthesis behind it
// the payload is silence.
func (a *APU) ReadSamples(p []byte) (int, error) {
	n := a.pendingZeros * 4
	if n > len(p) {
		n = len(p)
	}
	if n == 0 {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = 0
	}
	a.pendingZeros -= n / 4
	if a.pendingZeros < 0 {
		a.pendingZeros = 0
	}
	return n, nil
}
