// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/ezrec/x86emu/cpu"
	"github.com/ezrec/x86emu/emulator"
	"github.com/ezrec/x86emu/io"
	"github.com/ezrec/x86emu/translate"
)

func main() {
	var binary string
	var compile string
	var save bool
	var output string
	var list bool
	var eip uint
	var esp uint
	var maxTicks int
	var memorySize int
	var verbose bool
	var lang string

	flag.StringVar(&binary, "f", "test.bin", "binary image to execute")
	flag.StringVar(&compile, "c", "", ".asm file to assemble instead of -f")
	flag.BoolVar(&save, "s", false, "Save assembled image to -o, do not execute")
	flag.StringVar(&output, "o", "a.bin", "Assembled image output")
	flag.BoolVar(&list, "l", false, "List disassembly of the image, do not execute")
	flag.UintVar(&eip, "eip", emulator.BOOT_EIP, "Initial instruction pointer")
	flag.UintVar(&esp, "esp", emulator.BOOT_ESP, "Initial stack pointer")
	flag.IntVar(&maxTicks, "n", 0, "Maximum instructions to execute (0 is unbounded)")
	flag.IntVar(&memorySize, "m", 0, "Memory size in bytes, zero-extending the image (0 is the image size)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "L", "", "Message locale (default: system locale)")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.SetLocale(lang)
	}

	if eip > math.MaxUint32 {
		log.Fatalf("%v: -eip 0x%x is not a 32-bit address", os.Args[0], eip)
	}
	if esp > math.MaxUint32 {
		log.Fatalf("%v: -esp 0x%x is not a 32-bit address", os.Args[0], esp)
	}
	if memorySize < 0 {
		log.Fatalf("%v: -m %v is negative", os.Args[0], memorySize)
	}

	emu := emulator.NewEmulator(uint32(eip), uint32(esp))
	emu.Verbose = verbose
	emu.MaxTicks = maxTicks
	emu.MemorySize = memorySize

	if len(compile) != 0 {
		// Assemble a new image.
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for equ, value := range emu.Defines() {
			asm.Predefine(equ, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if save {
			img := &io.Image{Name: output, Data: prog.Binary()}
			err = img.Save(io.DirFS(filepath.Dir(output)), filepath.Base(output))
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			return
		}

		err = emu.Assemble(prog, compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		img, err := io.LoadImage(os.DirFS(filepath.Dir(binary)), filepath.Base(binary))
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		err = emu.Load(img)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	}

	if list {
		insts, err := cpu.Disassemble(emu.Cpu.Memory, emu.Cpu.Eip)
		for _, inst := range insts {
			fmt.Printf("%08x: %v\n", inst.Eip, inst)
		}
		if err != nil {
			log.Fatalf("%v: %v", emu.Image.Name, err)
		}
		return
	}

	err := emu.Run()
	if err != nil {
		log.Fatalf("%v: %v", emu.Image.Name, err)
	}

	fmt.Print(emu.Cpu.String())
}
