package orange4

import "fmt"

// Reg names a register by the address of its cell. PC and SP span two cells
// with the high nibble at the lower address; F lives in bit 3 of its cell.
type Reg uint8

// The register file, mapped into the system area.
const (
	SP Reg = 0x64 // - 0x65
	Z2 Reg = 0x66
	B2 Reg = 0x67
	Y2 Reg = 0x68
	A2 Reg = 0x69
	PC Reg = 0x6A // - 0x6B
	B  Reg = 0x6C
	Z  Reg = 0x6D
	Y  Reg = 0x6E
	A  Reg = 0x6F
	F  Reg = 0x70
)

func (r Reg) String() string {
	switch r {
	case SP:
		return "SP"
	case Z2:
		return "Z'"
	case B2:
		return "B'"
	case Y2:
		return "Y'"
	case A2:
		return "A'"
	case PC:
		return "PC"
	case B:
		return "B"
	case Z:
		return "Z"
	case Y:
		return "Y"
	case A:
		return "A"
	case F:
		return "F"
	}
	return fmt.Sprintf("Reg(0x%02x)", uint8(r))
}

// wide reports whether the register spans two cells.
func (r Reg) wide() bool {
	return r == PC || r == SP
}

func (vm *VM) reg(r Reg) uint8 {
	switch {
	case r.wide():
		return vm.mem.read(uint8(r))<<4 | vm.mem.read(uint8(r)+1)
	case r == F:
		return vm.mem.read(uint8(r)) >> 3 & 0x1
	default:
		return vm.mem.read(uint8(r))
	}
}

// setReg stores v into r. A value of -1 wraps to the register's all-ones
// value, the decrement-below-zero convention decReg relies on (CALL and PUSH
// take SP through it).
func (vm *VM) setReg(r Reg, v int) {
	switch {
	case r.wide():
		if v == -1 {
			v = 0xFF
		}
		if v < 0 || v > 0xFF {
			panic(fmt.Sprintf("orange4: value 0x%x out of range for %s", v, r))
		}
		vm.mem.write(uint8(r), uint8(v>>4))
		vm.mem.write(uint8(r)+1, uint8(v&0xF))
	case r == F:
		if v != 0 && v != 1 {
			panic(fmt.Sprintf("orange4: value 0x%x out of range for F", v))
		}
		vm.mem.write(uint8(r), uint8(v<<3))
	default:
		if v == -1 {
			v = 0xF
		}
		if v < 0 || v > 0xF {
			panic(fmt.Sprintf("orange4: value 0x%x out of range for %s", v, r))
		}
		vm.mem.write(uint8(r), uint8(v))
	}
}

func (vm *VM) incReg(r Reg) {
	if r.wide() {
		vm.setReg(r, (int(vm.reg(r))+1)&0xFF)
	} else {
		vm.setReg(r, (int(vm.reg(r))+1)&0xF)
	}
}

func (vm *VM) decReg(r Reg) {
	vm.setReg(r, int(vm.reg(r))-1)
}

func (vm *VM) swapReg(r1, r2 Reg) {
	tmp := vm.reg(r1)
	vm.setReg(r1, int(vm.reg(r2)))
	vm.setReg(r2, int(tmp))
}

// pushReg stores r at SP+1 after decrementing SP; popReg loads from SP+1
// before incrementing it. CALL and RET spread the same convention across two
// cells for the return address.
func (vm *VM) pushReg(r Reg) {
	vm.decReg(SP)
	vm.mem.write(vm.reg(SP)+1, vm.reg(r))
}

func (vm *VM) popReg(r Reg) {
	vm.setReg(r, int(vm.mem.read(vm.reg(SP)+1)))
	vm.incReg(SP)
}
