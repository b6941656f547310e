package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"
)

// EIP_HALT is the instruction pointer value that halts execution.
const EIP_HALT = uint32(0)

var _cpu_defines = map[string]string{
	"EIP_HALT":  fmt.Sprintf("0x%x", EIP_HALT),
	"REG_COUNT": fmt.Sprintf("%d", REG_COUNT),
}

// Cpu is the simulation context for the processor and its memory image.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Eip      uint32            // Current instruction pointer.
	Register [REG_COUNT]uint32 // Register bank.
	Memory   []byte            // Memory image, exclusively owned.

	BootEip uint32 // Instruction pointer after a reset.
	BootEsp uint32 // Stack pointer after a reset.

	Ticks int // Instructions executed since the last reset.
}

// NewCpu creates a new CPU that boots at eip, with the stack at esp, over a
// private copy of the memory image.
func NewCpu(eip, esp uint32, memory []byte) (cpu *Cpu) {
	cpu = &Cpu{
		BootEip: eip,
		BootEsp: esp,
	}

	cpu.Load(memory)

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Load replaces the memory image with a copy of memory, and resets the CPU.
func (cpu *Cpu) Load(memory []byte) {
	cpu.Memory = slices.Clone(memory)
	cpu.Reset()
}

// Reset the CPU state.
// - Clears the registers.
// - Sets ESP and EIP to their boot values.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset eip 0x%08x esp 0x%08x", cpu.BootEip, cpu.BootEsp)
	}

	clear(cpu.Register[:])
	cpu.Register[REG_ESP] = cpu.BootEsp
	cpu.Eip = cpu.BootEip
	cpu.Ticks = 0
}

// String returns the current register dump.
func (cpu *Cpu) String() string {
	var text strings.Builder

	for reg, value := range cpu.Register {
		fmt.Fprintf(&text, "%v = 0x%08x\n", strings.ToUpper(Reg(reg).String()), value)
	}
	fmt.Fprintf(&text, "EIP = 0x%08x\n", cpu.Eip)

	return text.String()
}

// Tick executes a single instruction.
// Returns ErrHalt once EIP reaches EIP_HALT.
func (cpu *Cpu) Tick() (err error) {
	opcode, err := cpu.Code8(0)
	if err != nil {
		return
	}

	err = cpu.Execute(opcode)
	if err != nil {
		return
	}

	cpu.Ticks++

	if cpu.Eip == EIP_HALT {
		err = ErrHalt
	}

	return
}

// Run executes instructions until EIP reaches EIP_HALT, or an error occurs.
func (cpu *Cpu) Run() (err error) {
	for {
		err = cpu.Tick()
		if errors.Is(err, ErrHalt) {
			return nil
		}
		if err != nil {
			return
		}
	}
}

// Execute executes the instruction for opcode, which is at EIP.
func (cpu *Cpu) Execute(opcode byte) (err error) {
	eip := cpu.Eip
	defer func() {
		if err != nil {
			err = &ErrExecute{Eip: eip, Opcode: opcode, Err: err}
		}
	}()

	info := dispatchTable[opcode]
	if info == nil {
		return ErrOpcode(opcode)
	}

	if cpu.Verbose {
		inst, derr := Decode(cpu.Memory, cpu.Eip)
		if derr == nil {
			log.Printf("%08x: %v", cpu.Eip, inst)
		}
	}

	err = info.Execute(cpu, opcode)

	return
}
