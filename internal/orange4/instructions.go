package orange4

import "fmt"

// Primary opcodes, GMC-4 compatible. One nibble each; immediates follow as
// extra nibbles fetched by the handler.
const (
	opINK   = 0x0
	opOUTN  = 0x1
	opABYZ  = 0x2
	opAY    = 0x3
	opST    = 0x4
	opLD    = 0x5
	opADD   = 0x6
	opSUB   = 0x7
	opLDI   = 0x8
	opADDI  = 0x9
	opLDYI  = 0xA
	opADDYI = 0xB
	opCPI   = 0xC
	opCPYI  = 0xD
	opSCALL = 0xE
	opJMPF  = 0xF
)

// Extended opcodes, the Orange-4 superset. Reached by escaping through JMPF
// with a target inside the system area; the full opcode is 0xF00 | target.
const (
	opCALL   = 0xF60
	opRET    = 0xF61
	opPUSHA  = 0xF62
	opPOPA   = 0xF63
	opPUSHB  = 0xF64
	opPOPB   = 0xF65
	opPUSHY  = 0xF66
	opPOPY   = 0xF67
	opPUSHZ  = 0xF68
	opPOPZ   = 0xF69
	opIOCTRL = 0xF70
	opOUT    = 0xF71
	opIN     = 0xF72
)

// Service call indices, dispatched by SCALL.
const (
	svcTurnOffNumericLED = 0x0
	svcTurnOnRegister    = 0x1
	svcTurnOffRegister   = 0x2
	svcInvertAllBits     = 0x4
	svcSwapAuxRegisters  = 0x5
	svcRightShift        = 0x6
	svcBeepEndSE         = 0x7
	svcBeepErrorSE       = 0x8
	svcBeepLongSE        = 0x9
	svcBeepShortSE       = 0xA
	svcBeepSoundScale    = 0xB
	svcWait              = 0xC
	svcTurnOnMemory      = 0xD
	svcDecimalSub        = 0xE
	svcDecimalAdd        = 0xF
)

// fetchOperand advances PC onto the next program nibble and reads it.
func (vm *VM) fetchOperand() uint8 {
	vm.incReg(PC)
	return vm.mem.read(vm.reg(PC))
}

func (vm *VM) execOp(op uint8) {
	switch op {
	case opINK:
		vm.opInk()
	case opOUTN:
		vm.opOutn()
	case opABYZ:
		vm.opAbyz()
	case opAY:
		vm.opAy()
	case opST:
		vm.opSt()
	case opLD:
		vm.opLd()
	case opADD:
		vm.opAdd()
	case opSUB:
		vm.opSub()
	case opLDI:
		vm.opLdi()
	case opADDI:
		vm.opAddi()
	case opLDYI:
		vm.opLdyi()
	case opADDYI:
		vm.opAddyi()
	case opCPI:
		vm.opCpi()
	case opCPYI:
		vm.opCpyi()
	case opSCALL:
		vm.opScall()
	case opJMPF:
		vm.opJmpf()
	}
}

// INK -> Scan keys 0x0-0xF; first pressed key lands in A with F=0.
// No key pressed leaves A alone and sets F=1.
func (vm *VM) opInk() {
	vm.lastTrace = "ink"
	for key := uint8(0); key <= 0xF; key++ {
		if vm.keyPressed(key) {
			vm.setReg(A, int(key))
			vm.setReg(F, 0)
			return
		}
	}
	vm.setReg(F, 1)
}

// OUTN -> Show A on the numeric LED.
func (vm *VM) opOutn() {
	vm.lastTrace = "outn"
	vm.setNumericLED(vm.reg(A))
	vm.setReg(F, 1)
}

// ABYZ -> Swap A with B and Y with Z.
func (vm *VM) opAbyz() {
	vm.lastTrace = "abyz"
	vm.swapReg(A, B)
	vm.swapReg(Y, Z)
	vm.setReg(F, 1)
}

// AY -> Swap A with Y.
func (vm *VM) opAy() {
	vm.lastTrace = "ay"
	vm.swapReg(A, Y)
	vm.setReg(F, 1)
}

// ST -> Store A at data cell Y.
func (vm *VM) opSt() {
	vm.lastTrace = "st"
	vm.mem.write(vm.reg(Y)+DataBegin, vm.reg(A))
	vm.setReg(F, 1)
}

// LD -> Load A from data cell Y.
func (vm *VM) opLd() {
	vm.lastTrace = "ld"
	vm.setReg(A, int(vm.mem.read(vm.reg(Y)+DataBegin)))
	vm.setReg(F, 1)
}

// ADD -> A += data cell Y, carry into F.
func (vm *VM) opAdd() {
	vm.lastTrace = "add"
	sum := int(vm.mem.read(vm.reg(Y)+DataBegin)) + int(vm.reg(A))
	vm.setReg(A, sum&0xF)
	vm.setReg(F, sum>>4)
}

// SUB -> A = data cell Y - A, borrow into F.
func (vm *VM) opSub() {
	vm.lastTrace = "sub"
	diff := int(vm.mem.read(vm.reg(Y)+DataBegin)) - int(vm.reg(A))
	if diff < 0 {
		diff += 0x10
		vm.setReg(F, 1)
	} else {
		vm.setReg(F, 0)
	}
	vm.setReg(A, diff&0xF)
}

// LDI n -> A = n.
func (vm *VM) opLdi() {
	n := vm.fetchOperand()
	vm.setReg(A, int(n))
	vm.setReg(F, 1)
	vm.lastTrace = fmt.Sprintf("ldi 0x%x", n)
}

// ADDI n -> A += n, carry into F.
func (vm *VM) opAddi() {
	n := vm.fetchOperand()
	sum := int(vm.reg(A)) + int(n)
	vm.setReg(A, sum&0xF)
	vm.setReg(F, sum>>4)
	vm.lastTrace = fmt.Sprintf("addi 0x%x", n)
}

// LDYI n -> Y = n.
func (vm *VM) opLdyi() {
	n := vm.fetchOperand()
	vm.setReg(Y, int(n))
	vm.setReg(F, 1)
	vm.lastTrace = fmt.Sprintf("ldyi 0x%x", n)
}

// ADDYI n -> Y += n, carry into F.
func (vm *VM) opAddyi() {
	n := vm.fetchOperand()
	sum := int(vm.reg(Y)) + int(n)
	vm.setReg(Y, sum&0xF)
	vm.setReg(F, sum>>4)
	vm.lastTrace = fmt.Sprintf("addyi 0x%x", n)
}

// CPI n -> F = 0 when A == n, else 1.
func (vm *VM) opCpi() {
	n := vm.fetchOperand()
	if vm.reg(A) == n {
		vm.setReg(F, 0)
	} else {
		vm.setReg(F, 1)
	}
	vm.lastTrace = fmt.Sprintf("cpi 0x%x", n)
}

// CPYI n -> F = 0 when Y == n, else 1.
func (vm *VM) opCpyi() {
	n := vm.fetchOperand()
	if vm.reg(Y) == n {
		vm.setReg(F, 0)
	} else {
		vm.setReg(F, 1)
	}
	vm.lastTrace = fmt.Sprintf("cpyi 0x%x", n)
}

// SCALL s -> Dispatch service call s.
func (vm *VM) opScall() {
	s := vm.fetchOperand()
	vm.serviceCall(s)
	vm.lastTrace = fmt.Sprintf("scall 0x%x", s)
}

// JMPF a -> Jump to a when F is set, fall through when clear. A target inside
// the system area is no jump at all: it escapes into the extended opcodes.
func (vm *VM) opJmpf() {
	hi := vm.fetchOperand()
	lo := vm.fetchOperand()
	addr := hi<<4 | lo
	if addr >= SystemBegin && addr <= SystemEnd {
		vm.execExtOp(0xF00 | uint16(addr))
		return
	}
	if vm.reg(F) == 0 {
		vm.setReg(F, 1)
	} else {
		// land on addr after the post-handler PC advance
		vm.setReg(PC, int(addr)-1)
	}
	vm.lastTrace = fmt.Sprintf("jmpf 0x%x", addr)
}

func (vm *VM) execExtOp(op uint16) {
	switch op {
	case opCALL:
		vm.extCall()
	case opRET:
		vm.extRet()
	case opPUSHA:
		vm.extPush("pusha", A)
	case opPOPA:
		vm.extPop("popa", A)
	case opPUSHB:
		vm.extPush("pushb", B)
	case opPOPB:
		vm.extPop("popb", B)
	case opPUSHY:
		vm.extPush("pushy", Y)
	case opPOPY:
		vm.extPop("popy", Y)
	case opPUSHZ:
		vm.extPush("pushz", Z)
	case opPOPZ:
		vm.extPop("popz", Z)
	case opIOCTRL:
		vm.extUnimplemented("ioctrl")
	case opOUT:
		vm.extUnimplemented("out")
	case opIN:
		vm.extUnimplemented("in")
	default:
		vm.extUnimplemented(fmt.Sprintf("op 0x%03x", op))
	}
}

// CALL a -> Push the return address high-nibble-first at SP+1..SP+2, then
// jump to a. The saved address points at the call's last operand nibble, so
// RET's post-handler advance lands just past the call.
func (vm *VM) extCall() {
	hi := vm.fetchOperand()
	lo := vm.fetchOperand()
	addr := hi<<4 | lo
	ret := vm.reg(PC)
	vm.decReg(SP)
	vm.decReg(SP)
	vm.mem.write(vm.reg(SP)+1, ret>>4)
	vm.mem.write(vm.reg(SP)+2, ret&0xF)
	vm.setReg(PC, int(addr)-1)
	vm.setReg(F, 1)
	vm.lastTrace = fmt.Sprintf("call 0x%x", addr)
}

// RET -> Restore PC from SP+1..SP+2 and release the pair.
func (vm *VM) extRet() {
	ret := vm.mem.read(vm.reg(SP)+1)<<4 | vm.mem.read(vm.reg(SP)+2)
	vm.incReg(SP)
	vm.incReg(SP)
	vm.setReg(PC, int(ret))
	vm.setReg(F, 1)
	vm.lastTrace = "ret"
}

func (vm *VM) extPush(mnemonic string, r Reg) {
	vm.pushReg(r)
	vm.setReg(F, 1)
	vm.lastTrace = mnemonic
}

func (vm *VM) extPop(mnemonic string, r Reg) {
	vm.popReg(r)
	vm.setReg(F, 1)
	vm.lastTrace = mnemonic
}

// Placeholder opcodes and anything undefined in the extended space: accepted,
// F set, surfaced as an event so ROMs touching optional features keep running.
func (vm *VM) extUnimplemented(mnemonic string) {
	vm.emit(Event{Kind: EventUnimplemented, Name: mnemonic})
	vm.setReg(F, 1)
	vm.lastTrace = mnemonic
}

func (vm *VM) serviceCall(s uint8) {
	switch s {
	case svcTurnOnRegister:
		led := uint(vm.binaryLED()) | uint(1)<<vm.reg(Y)
		vm.setBinaryLED(uint8(led & 0x7F))
		vm.setReg(F, 1)
	case svcTurnOffRegister:
		led := uint(vm.binaryLED()) &^ (uint(1) << vm.reg(Y))
		vm.setBinaryLED(uint8(led & 0x7F))
		vm.setReg(F, 1)
	case svcInvertAllBits:
		vm.setReg(A, int(^vm.reg(A)&0xF))
		vm.setReg(F, 1)
	case svcSwapAuxRegisters:
		vm.swapReg(A, A2)
		vm.swapReg(B, B2)
		vm.swapReg(Y, Y2)
		vm.swapReg(Z, Z2)
		vm.setReg(F, 1)
	case svcRightShift:
		// the shifted-out bit lands in F, the only service call whose
		// F is not simply 1
		a := vm.reg(A)
		vm.setReg(A, int(a>>1))
		vm.setReg(F, int(a&1))
	case svcBeepEndSE:
		vm.emit(Event{Kind: EventBeepEnd})
		vm.setReg(F, 1)
	case svcBeepErrorSE:
		vm.emit(Event{Kind: EventBeepError})
		vm.setReg(F, 1)
	case svcBeepLongSE:
		vm.emit(Event{Kind: EventBeepLong})
		vm.setReg(F, 1)
	case svcBeepShortSE:
		vm.emit(Event{Kind: EventBeepShort})
		vm.setReg(F, 1)
	case svcBeepSoundScale:
		vm.emit(Event{Kind: EventBeepScale, Value: vm.reg(A)})
		vm.setReg(F, 1)
	case svcWait:
		vm.setWaitTicks((uint32(vm.reg(A)) + 1) * HZ / 10)
		vm.setReg(F, 1)
	case svcTurnOnMemory:
		v := vm.mem.read(0x5E) | (vm.mem.read(0x5F)&0x7)<<4
		led := uint(vm.binaryLED()) | uint(1)<<v
		vm.setBinaryLED(uint8(led & 0x7F))
		vm.setReg(F, 1)
	default:
		// 0x0, 0x3, 0xE, 0xF and anything else reserved
		vm.emit(Event{Kind: EventUnimplemented, Name: fmt.Sprintf("srv 0x%x", s)})
		vm.setReg(F, 1)
	}
}
