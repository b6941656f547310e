// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/x86emu/cpu"
	"github.com/ezrec/x86emu/io"
)

const (
	BOOT_EIP = 0x0000 // Default instruction pointer after reset.
	BOOT_ESP = 0x7c00 // Default stack pointer after reset.
)

// Emulator state. CPU + loaded image + optional program listing.
type Emulator struct {
	Verbose    bool         // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Program    *cpu.Program // Program listing of the image, if assembled.
	Image      *io.Image    // Currently loaded image.
	MaxTicks   int          // Instruction budget for Run, or 0 for none.
	MemorySize int          // Memory size in bytes, or 0 for the image size.
}

// NewEmulator creates a new emulator that boots at eip with the stack at esp.
func NewEmulator(eip, esp uint32) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(eip, esp, nil),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines, for the assembler.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"IMAGE_BASE": fmt.Sprintf("0x%x", emu.Cpu.BootEip),
		"STACK_TOP":  fmt.Sprintf("0x%x", emu.Cpu.BootEsp),
	}

	maps.Insert(defines, emu.Cpu.Defines())

	return maps.All(defines)
}

// Load an image into memory, and reset the emulator.
// Any previous program listing is discarded. If MemorySize is set, the
// image is zero-extended to that size first.
func (emu *Emulator) Load(img *io.Image) (err error) {
	if emu.MemorySize > 0 {
		err = img.Pad(emu.MemorySize)
		if err != nil {
			return
		}
	}

	emu.Image = img
	emu.Program = &cpu.Program{}
	emu.Cpu.Verbose = emu.Verbose

	if emu.Verbose {
		log.Printf("emulator: load %v (%d bytes) blake2b %v", img.Name, len(img.Data), img.Digest())
	}

	emu.Cpu.Load(img.Data)

	return
}

// Assemble loads the image of an assembled program, keeping the program
// listing for diagnostics.
func (emu *Emulator) Assemble(prog *cpu.Program, name string) (err error) {
	err = emu.Load(&io.Image{Name: name, Data: prog.Binary()})
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the emulator state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Eip)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	eip := emu.Cpu.Eip
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Eip: eip, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
	}

	return
}

// Run ticks the emulator until halted, or until MaxTicks instructions have
// executed without halting.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		if emu.MaxTicks > 0 && emu.Ticks() >= emu.MaxTicks {
			err = &ErrRuntime{Eip: emu.Cpu.Eip, LineNo: emu.LineNo(), Err: ErrWatchdog}
			return
		}
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: halted after %d ticks", emu.Ticks())
	}

	return
}
