package orange4

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypadBitMapping(t *testing.T) {
	vm := mustVM(t)

	// key k lives in bit k%4 of cell 0x60+k/4
	vm.PressKey(0x5)
	assert.Equal(t, uint8(0x2), vm.mem.read(0x61))
	assert.True(t, vm.KeyPressed(0x5))
	assert.False(t, vm.KeyPressed(0x4))

	vm.PressKey(0xF)
	assert.Equal(t, uint8(0x8), vm.mem.read(0x63))

	vm.ReleaseKey(0x5)
	assert.False(t, vm.KeyPressed(0x5))
	assert.True(t, vm.KeyPressed(0xF))

	vm.PressKey(0x0)
	vm.ReleaseAllKeys()
	for k := uint8(0); k <= 0xF; k++ {
		assert.False(t, vm.KeyPressed(k), "key 0x%x", k)
	}
}

func TestKeypadRejectsBadKey(t *testing.T) {
	vm := mustVM(t)
	assert.Panics(t, func() { vm.PressKey(0x10) })
	assert.Panics(t, func() { vm.ReleaseKey(0x10) })
}

func TestBinaryLEDMasksToSevenBits(t *testing.T) {
	vm := mustVM(t)

	vm.setBinaryLED(0xFF)
	assert.Equal(t, uint8(0x7F), vm.BinaryLED())
	assert.Equal(t, uint8(0xF), vm.mem.read(binaryLEDLow))
	assert.Equal(t, uint8(0x7), vm.mem.read(binaryLEDHigh), "bit 3 of 0x73 reads zero")

	vm.setBinaryLED(0x55)
	assert.Equal(t, uint8(0x55), vm.BinaryLED())
}

func TestNumericLED(t *testing.T) {
	vm := mustVM(t)
	vm.setNumericLED(0xC)
	assert.Equal(t, uint8(0xC), vm.NumericLED())
	assert.Equal(t, uint8(0xC), vm.mem.read(numericLED))
}

func TestWaitCounterSpillsAboveTheCell(t *testing.T) {
	vm := mustVM(t)

	vm.setWaitTicks(100)
	assert.Equal(t, uint32(100), vm.waitTicks())
	assert.Equal(t, uint8(100&0xF), vm.mem.read(waitCount), "cell holds the low nibble")

	vm.setWaitTicks(0)
	assert.Equal(t, uint32(0), vm.waitTicks())
	assert.Equal(t, uint8(0), vm.mem.read(waitCount))
}

func TestWaitCellAlonePausesTheMachine(t *testing.T) {
	// a poked wait cell counts down like any other pending wait
	vm := mustVM(t, 0x1) // OUTN
	vm.mem.write(waitCount, 0x2)

	vm.Tick()
	assert.Equal(t, uint8(0x00), vm.Register(PC))
	vm.Tick()
	assert.Equal(t, uint8(0x00), vm.Register(PC))
	vm.Tick()
	assert.Equal(t, uint8(0x01), vm.Register(PC), "third tick executes")
}
