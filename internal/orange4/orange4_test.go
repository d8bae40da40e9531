package orange4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioLdiThenOutn(t *testing.T) {
	vm := mustVM(t, 0x8, 0x3, 0x1, 0x0) // ldi 0x3; outn

	vm.Tick()
	vm.Tick()
	assert.Equal(t, uint8(0x3), vm.Register(A))
	assert.Equal(t, uint8(0x3), vm.NumericLED())
	assert.Equal(t, uint8(0x03), vm.Register(PC))
}

func TestScenarioCountingLoop(t *testing.T) {
	// ldi 0; addi 1; cpi 5; jmpf 0x02 -- loops until A reaches 5
	vm := mustVM(t, 0x8, 0x0, 0x9, 0x1, 0xC, 0x5, 0xF, 0x0, 0x2)

	for i := 0; i < 200 && vm.Register(PC) < 0x09; i++ {
		vm.Tick()
		if vm.LastTrace() == "cpi 0x5" {
			if vm.Register(A) == 0x5 {
				assert.Equal(t, uint8(0), vm.Register(F), "F clear on the matching compare")
			} else {
				assert.Equal(t, uint8(1), vm.Register(F))
			}
		}
	}

	assert.Equal(t, uint8(0x5), vm.Register(A))
	assert.Equal(t, uint8(0x09), vm.Register(PC), "fell through past the jmpf")
	assert.Equal(t, uint8(1), vm.Register(F), "fall-through sets F")
}

func TestScenarioCallRetRoundTrip(t *testing.T) {
	// 0x00: call 0x08    0x08: ldi 0x7; ret
	vm := mustVM(t,
		0xF, 0x6, 0x0, 0x0, 0x8,
		0x0, 0x0, 0x0,
		0x8, 0x7, 0xF, 0x6, 0x1,
	)

	vm.Tick() // call
	require.Equal(t, uint8(0x08), vm.Register(PC))
	require.Equal(t, uint8(0xFD), vm.Register(SP))

	vm.Tick() // ldi 0x7
	require.Equal(t, uint8(0x7), vm.Register(A))

	vm.Tick() // ret
	assert.Equal(t, uint8(0x05), vm.Register(PC), "just past the call's operands")
	assert.Equal(t, uint8(0xFF), vm.Register(SP))
}

func TestScenarioKeyScan(t *testing.T) {
	vm := mustVM(t, 0x0) // ink
	vm.PressKey(0x5)

	vm.Tick()
	assert.Equal(t, uint8(0x5), vm.Register(A))
	assert.Equal(t, uint8(0), vm.Register(F))
}

func TestScenarioBinaryLEDViaService(t *testing.T) {
	vm := mustVM(t, 0xE, 0x1) // scall 0x1
	vm.setReg(Y, 0x3)

	vm.Tick()
	assert.Equal(t, uint8(0x08), vm.BinaryLED())
}

func TestScenarioRightShiftFlag(t *testing.T) {
	vm := mustVM(t, 0xE, 0x6) // scall 0x6
	vm.setReg(A, 0x5)

	vm.Tick()
	assert.Equal(t, uint8(0x2), vm.Register(A))
	assert.Equal(t, uint8(1), vm.Register(F))
}

func TestReachableStateInvariants(t *testing.T) {
	// a program touching LEDs, stack, arithmetic, and jumps
	vm := mustVM(t,
		0x8, 0xF, // ldi 0xf
		0xE, 0x1, // scall turn_on_register
		0xF, 0x6, 0x2, // pusha
		0x9, 0x9, // addi 0x9
		0xF, 0x6, 0x3, // popa
		0xF, 0x0, 0x0, // jmpf 0x00
	)
	for i := 0; i < 500; i++ {
		vm.Tick()

		img := vm.MemoryImage()
		for addr, v := range img {
			require.LessOrEqual(t, v, uint8(0xF), "cell 0x%02x", addr)
		}
		require.LessOrEqual(t, vm.BinaryLED(), uint8(0x7F))
		require.LessOrEqual(t, vm.Register(F), uint8(1))
	}
}

func TestConcurrentTickAndRead(t *testing.T) {
	vm := mustVM(t, 0x8, 0x1, 0xF, 0x0, 0x0) // ldi 0x1; jmpf 0x00

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			vm.Tick()
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		vm.MemoryImage()
		vm.Register(A)
		vm.BinaryLED()
		vm.NumericLED()
		vm.LastTrace()
		vm.PressKey(0x3)
		vm.ReleaseAllKeys()
	}
}
