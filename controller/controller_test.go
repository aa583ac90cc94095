package controller

import "testing"

func TestSerialRead(t *testing.T) {
	c := New()
	c.SetButtons(1<<ButtonA | 1<<ButtonStart | 1<<ButtonRight)

	// Strobe to latch, then drop it to start shifting.
	c.Write(1)
	c.Write(0)

	want := []byte{1, 0, 0, 1, 0, 0, 0, 1} // A, B, Select, Start, Up, Down, Left, Right
	for i, w := range want {
		got := c.Read() & 1
		if got != w {
			t.Errorf("read %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestReadsPastEightReturnOne(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)

	for i := 0; i < 8; i++ {
		c.Read()
	}
	for i := 0; i < 4; i++ {
		if c.Read()&1 != 1 {
			t.Error("reads past the eighth button should return 1")
		}
	}
}

func TestStrobeHighRepeatsA(t *testing.T) {
	c := New()
	c.SetButtons(1 << ButtonA)
	c.Write(1)

	// While strobe is high, the shift register stays on button A.
	for i := 0; i < 10; i++ {
		if c.Read()&1 != 1 {
			t.Fatal("strobed read should keep reporting A")
		}
	}

	c.SetButtons(0)
	if c.Read()&1 != 0 {
		t.Error("strobed read should track the live A state")
	}
}

func TestStrobeRelatches(t *testing.T) {
	c := New()
	c.SetButtons(1 << ButtonB)
	c.Write(1)
	c.Write(0)
	c.Read() // A

	// Raising strobe again rewinds to button A.
	c.Write(1)
	c.Write(0)
	if c.Read()&1 != 0 {
		t.Error("expected A after re-strobe")
	}
	if c.Read()&1 != 1 {
		t.Error("expected B as the second bit")
	}
}

func TestOpenBusBits(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)
	if c.Read()&0x40 == 0 {
		t.Error("expected open bus bit 6 set")
	}
}
