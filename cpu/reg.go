package cpu

// Reg is a general-purpose register index.
type Reg int

//go:generate go tool stringer -linecomment -type=Reg
const (
	REG_EAX = Reg(0) // eax
	REG_ECX = Reg(1) // ecx
	REG_EDX = Reg(2) // edx
	REG_EBX = Reg(3) // ebx
	REG_ESP = Reg(4) // esp
	REG_EBP = Reg(5) // ebp
	REG_ESI = Reg(6) // esi
	REG_EDI = Reg(7) // edi
)

// REG_COUNT is the number of general-purpose registers.
const REG_COUNT = 8

// Valid returns true if the register index selects a register.
func (reg Reg) Valid() bool {
	return reg >= REG_EAX && reg < REG_COUNT
}

// regMap maps assembler register names to register indexes.
var regMap = map[string]Reg{
	"eax": REG_EAX,
	"ecx": REG_ECX,
	"edx": REG_EDX,
	"ebx": REG_EBX,
	"esp": REG_ESP,
	"ebp": REG_EBP,
	"esi": REG_ESI,
	"edi": REG_EDI,
}
