package cpu

import (
	"encoding/binary"
	"fmt"
)

// Opcode bytes of the supported instruction families.
const (
	OP_MOV_R32_IMM32 = byte(0xb8) // mov r32, imm32 (0xb8 + register)
	OP_JMP_REL8      = byte(0xeb) // jmp short rel8
)

// Encoded instruction lengths, opcode included.
const (
	MOV_R32_IMM32_LEN = 5
	JMP_REL8_LEN      = 2
)

// handler executes the instruction whose opcode byte is at EIP, and
// advances EIP past it (or to its control transfer target).
type handler func(cpu *Cpu, opcode byte) error

// opcodeInfo describes an entry of the dispatch table.
type opcodeInfo struct {
	Mnemonic string
	Length   int
	Execute  handler
	Format   func(inst Instruction) string
}

// dispatchTable maps opcode bytes to instructions. A nil entry is
// unimplemented.
var dispatchTable [256]*opcodeInfo

func init() {
	mov := &opcodeInfo{
		Mnemonic: "mov",
		Length:   MOV_R32_IMM32_LEN,
		Execute:  movR32Imm32,
		Format: func(inst Instruction) string {
			reg := Reg(inst.Opcode() - OP_MOV_R32_IMM32)
			imm := binary.LittleEndian.Uint32(inst.Bytes[1:])
			return fmt.Sprintf("mov %v, 0x%08x", reg, imm)
		},
	}
	for reg := range REG_COUNT {
		dispatchTable[OP_MOV_R32_IMM32+byte(reg)] = mov
	}

	dispatchTable[OP_JMP_REL8] = &opcodeInfo{
		Mnemonic: "jmp",
		Length:   JMP_REL8_LEN,
		Execute:  shortJump,
		Format: func(inst Instruction) string {
			return fmt.Sprintf("jmp short 0x%08x", jumpTarget(inst.Eip, JMP_REL8_LEN, int8(inst.Bytes[1])))
		},
	}
}

// movR32Imm32 loads a 32-bit immediate into the register selected by the
// low three bits of the opcode.
func movR32Imm32(cpu *Cpu, opcode byte) (err error) {
	reg := Reg(opcode) - Reg(OP_MOV_R32_IMM32)
	if !reg.Valid() {
		err = ErrRegister(reg)
		return
	}

	value, err := cpu.Code32(1)
	if err != nil {
		return
	}

	cpu.Register[reg] = value
	cpu.Eip += MOV_R32_IMM32_LEN

	return
}

// shortJump transfers control relative to the following instruction.
func shortJump(cpu *Cpu, opcode byte) (err error) {
	diff, err := cpu.SignCode8(1)
	if err != nil {
		return
	}

	cpu.Eip = jumpTarget(cpu.Eip, JMP_REL8_LEN, diff)

	return
}

// jumpTarget computes the relative jump destination, wrapping at 32 bits.
func jumpTarget(eip uint32, length int, diff int8) uint32 {
	return uint32(int64(eip) + int64(length) + int64(diff))
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Eip   uint32 // Address of the opcode byte.
	Bytes []byte // Complete encoding, opcode first.
}

// Opcode returns the opcode byte of the instruction.
func (inst Instruction) Opcode() byte {
	return inst.Bytes[0]
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	info := dispatchTable[inst.Opcode()]
	if info == nil || len(inst.Bytes) != info.Length {
		return fmt.Sprintf(".byte 0x%02x", inst.Opcode())
	}

	return info.Format(inst)
}

// Decode decodes the instruction at eip in memory.
func Decode(memory []byte, eip uint32) (inst Instruction, err error) {
	if uint64(eip) >= uint64(len(memory)) {
		err = ErrAddress(eip)
		return
	}

	opcode := memory[eip]
	info := dispatchTable[opcode]
	if info == nil {
		err = ErrOpcode(opcode)
		return
	}

	end := uint64(eip) + uint64(info.Length)
	if end > uint64(len(memory)) {
		err = ErrAddress(len(memory))
		return
	}

	inst = Instruction{
		Eip:   eip,
		Bytes: memory[eip:end],
	}

	return
}

// Disassemble decodes instructions linearly from eip until the end of
// memory or the first undecodable byte.
func Disassemble(memory []byte, eip uint32) (insts []Instruction, err error) {
	for uint64(eip) < uint64(len(memory)) {
		var inst Instruction
		inst, err = Decode(memory, eip)
		if err != nil {
			return
		}
		insts = append(insts, inst)
		eip += uint32(len(inst.Bytes))
	}

	return
}
