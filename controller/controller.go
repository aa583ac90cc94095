package controller

// Button bit positions in the mask accepted by SetButtons.
const (
	ButtonA = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// openBus approximates the undriven upper bits a real joypad read
// leaves on the data bus.
const openBus = 0x40

// Controller represents a standard NES controller: an 8-bit parallel
// latch serialized one bit per CPU read.
type Controller struct {
	buttons byte // A, B, Select, Start, Up, Down, Left, Right (bit 0 = A)
	index   byte // next bit to report from the shift register
	strobe  byte
}

// New creates a new Controller instance.
func New() *Controller {
	return &Controller{}
}

// SetButtons latches the host's button mask, bit 0 = A through bit 7 = Right.
func (c *Controller) SetButtons(buttons byte) {
	c.buttons = buttons
}

// Write handles CPU writes to $4016. While strobe is high the shift
// register is held at bit 0, so reads keep reporting button A.
func (c *Controller) Write(data byte) {
	c.strobe = data & 1
	if c.strobe == 1 {
		c.index = 0
	}
}

// Read drains one bit of the shift register. After all eight buttons a
// real controller returns 1 on every read.
func (c *Controller) Read() byte {
	if c.index >= 8 {
		return openBus | 1
	}

	value := (c.buttons >> c.index) & 1
	if c.strobe == 0 {
		c.index++
	}

	return openBus | value
}
