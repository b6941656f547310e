// Package cpu implements the 32-bit x86 subset processor and its assembler.
//
// The CPU consists of an instruction pointer (EIP), eight 32-bit
// general-purpose registers (eax, ecx, edx, ebx, esp, ebp, esi, edi), and a
// flat byte memory image that it owns exclusively. Instructions are fetched
// from memory at EIP, dispatched through a 256 entry opcode table, and
// executed until EIP reaches the halt address of 0.
//
// The assembler provides a small Intel-syntax assembly language for the
// supported instruction set, with labels, equates, and compile-time
// expression evaluation.
package cpu
