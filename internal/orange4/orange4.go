// Package orange4 emulates a 4-bit educational microcomputer compatible with
// the GMC-4 instruction set plus the Orange-4 superset (call/return, register
// stack push/pop, and placeholder I/O control opcodes). The whole machine is
// 256 nibble cells: program, data, stack, and a system window holding the
// register file, the 16-key keypad bitmap, a numeric LED digit, a 7-bit
// binary LED bar, and the wait counter. The driver steps the machine one
// cycle at a time; a cycle either executes one instruction or burns one wait
// tick.
package orange4

import (
	"sync"

	"github.com/pkg/errors"
)

// HZ is the nominal clock rate a driver runs the machine at.
const HZ = 1000

// VM is the Orange-4 virtual machine. Every exported method except Events
// takes the machine lock, so a driver may tick on one goroutine while another
// reads display and register state.
type VM struct {
	mu sync.Mutex

	// the 256-cell image; registers and peripherals live inside it
	mem memory

	// wait counter bits above the nibble at cell 0x74
	waitHigh uint32

	// mnemonic of the last executed instruction
	lastTrace string

	// guest-program events; sends are non-blocking
	events chan Event
}

// NewVM builds a machine from a packed 128-byte program image and resets it:
// PC at 0x00, SP at 0xFF, everything else as the image specifies.
func NewVM(image []byte) (*VM, error) {
	if len(image) != ImageSize {
		return nil, errors.Errorf("program image must be %d bytes, got %d", ImageSize, len(image))
	}
	vm := VM{
		events: make(chan Event, 16),
	}
	vm.mem.load(image)
	vm.setReg(PC, 0x00)
	vm.setReg(SP, 0xFF)
	return &vm, nil
}

// Tick advances the machine one cycle: decrement a pending wait, or fetch,
// execute, and step past one instruction.
func (vm *VM) Tick() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if w := vm.waitTicks(); w > 0 {
		vm.setWaitTicks(w - 1)
		return
	}
	op := vm.mem.read(vm.reg(PC))
	vm.execOp(op)
	vm.incReg(PC)
}

// PressKey latches key k (0x0-0xF) down. The program observes it at the next INK.
func (vm *VM) PressKey(k uint8) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.pressKey(k)
}

// ReleaseKey lifts key k.
func (vm *VM) ReleaseKey(k uint8) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.releaseKey(k)
}

// ReleaseAllKeys lifts the whole keypad.
func (vm *VM) ReleaseAllKeys() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.releaseAllKeys()
}

// KeyPressed reports whether key k is down.
func (vm *VM) KeyPressed(k uint8) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.keyPressed(k)
}

// NumericLED returns the digit on the numeric display.
func (vm *VM) NumericLED() uint8 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.numericLED()
}

// BinaryLED returns the 7-bit LED bar.
func (vm *VM) BinaryLED() uint8 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.binaryLED()
}

// Register returns r's current value: one nibble for the register file, a
// full byte for PC and SP, 0 or 1 for F.
func (vm *VM) Register(r Reg) uint8 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.reg(r)
}

// MemoryImage snapshots all 256 cells, one nibble per byte.
func (vm *VM) MemoryImage() [NibbleCount]uint8 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.mem.nibbles()
}

// ImageBytes snapshots the machine in packed program-image form.
func (vm *VM) ImageBytes() [ImageSize]byte {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.mem
}

// LastTrace returns the mnemonic of the most recently executed instruction,
// empty before the first one.
func (vm *VM) LastTrace() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.lastTrace
}

// ClearWait cancels a pending wait so a single-step lands on an instruction.
func (vm *VM) ClearWait() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.setWaitTicks(0)
}

// Events exposes guest-program notifications. The channel is buffered and
// sends never block; an idle consumer just misses events.
func (vm *VM) Events() <-chan Event {
	return vm.events
}
