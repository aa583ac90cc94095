package cartridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func makeROM(prgBanks, chrBanks int, flags6, flags7 byte) []byte {
	header := []byte{0x4E, 0x45, 0x53, 0x1A, byte(prgBanks), byte(chrBanks), flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	data := append([]byte{}, header...)
	data = append(data, make([]byte, prgBanks*16384)...)
	data = append(data, make([]byte, chrBanks*8192)...)
	return data
}

func TestLoadSizes(t *testing.T) {
	cart, err := Load(makeROM(2, 1, 0x31, 0x00))
	if err != nil {
		t.Fatal(err)
	}

	if len(cart.PRGROM) != 2*16384 {
		t.Errorf("expected PRGROM size %d, got %d", 2*16384, len(cart.PRGROM))
	}
	if len(cart.CHRROM) != 1*8192 {
		t.Errorf("expected CHRROM size %d, got %d", 1*8192, len(cart.CHRROM))
	}
	if cart.PRGBanks != 2 || cart.CHRBanks != 1 {
		t.Errorf("expected 2 PRG and 1 CHR banks, got %d and %d", cart.PRGBanks, cart.CHRBanks)
	}
	if cart.MapperID != 3 {
		t.Errorf("expected mapper 3, got %d", cart.MapperID)
	}
}

func TestMapperID(t *testing.T) {
	// Low nibble from flags 6, high nibble from flags 7.
	cart, err := Load(makeROM(1, 1, 0x40, 0x10))
	if err != nil {
		t.Fatal(err)
	}
	if cart.MapperID != 0x14 {
		t.Errorf("expected mapper 0x14, got 0x%02X", cart.MapperID)
	}
}

func TestMirroring(t *testing.T) {
	cases := []struct {
		flags6 byte
		want   byte
	}{
		{0x00, MirrorVertical},
		{0x01, MirrorHorizontal},
		{0x08, MirrorFourScreen},
		{0x09, MirrorFourScreen},
	}
	for _, c := range cases {
		cart, err := Load(makeROM(1, 1, c.flags6, 0x00))
		if err != nil {
			t.Fatal(err)
		}
		if cart.Mirror != c.want {
			t.Errorf("flags6 0x%02X: expected mirror %d, got %d", c.flags6, c.want, cart.Mirror)
		}
	}
}

func TestCHRRAM(t *testing.T) {
	cart, err := Load(makeROM(1, 0, 0x00, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	if !cart.IsCHRRAM {
		t.Error("expected CHR RAM with zero CHR banks")
	}
	if len(cart.CHRROM) != 8192 {
		t.Errorf("expected 8KB CHR RAM, got %d", len(cart.CHRROM))
	}
}

func TestBattery(t *testing.T) {
	cart, err := Load(makeROM(1, 1, 0x02, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	if !cart.HasBattery {
		t.Error("expected battery flag")
	}
}

func TestTrainerSkipped(t *testing.T) {
	prg := make([]byte, 16384)
	prg[0] = 0xAB
	data := []byte{0x4E, 0x45, 0x53, 0x1A, 1, 1, 0x04, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	data = append(data, make([]byte, 512)...) // trainer
	data = append(data, prg...)
	data = append(data, make([]byte, 8192)...)

	cart, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if !cart.HasTrainer {
		t.Error("expected trainer flag")
	}
	if cart.PRGROM[0] != 0xAB {
		t.Errorf("trainer not skipped, PRGROM[0] = 0x%02X", cart.PRGROM[0])
	}
}

func TestZeroPRGBanksRejected(t *testing.T) {
	if _, err := Load(makeROM(0, 1, 0, 0)); !errors.Is(err, ErrNoPRGBanks) {
		t.Errorf("expected ErrNoPRGBanks, got %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	data := makeROM(1, 1, 0, 0)
	data[0] = 'X'
	if _, err := Load(data); !errors.Is(err, ErrBadMagic) {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestTruncated(t *testing.T) {
	data := makeROM(2, 1, 0, 0)
	if _, err := Load(data[:len(data)-1]); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	if _, err := Load(data[:8]); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated for short header, got %v", err)
	}
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nes")
	if err := os.WriteFile(path, makeROM(1, 1, 0x00, 0x00), 0644); err != nil {
		t.Fatal(err)
	}

	cart, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if cart.Mirror != MirrorVertical {
		t.Errorf("expected vertical mirroring, got %d", cart.Mirror)
	}
}
