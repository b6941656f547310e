// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":   "0",
	"EIP_HALT": fmt.Sprintf("%#v", EIP_HALT),
}

// Assembler is a two pass assembler for the supported x86 subset.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]uint32 // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
	reSymbol    = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	reLabel     = regexp.MustCompile(`^([^\s:;,'$]+):\s*`)
)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		if len(word) == 1 {
			err = ErrParseNumber(word)
			return
		}
		word = word[1:]
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		if len(word) < 2 {
			err = ErrParseCharacter(word)
			return
		}
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}

	label, ok := asm.Label[word]
	if ok {
		value = label
	} else {
		var v64 int64
		v64, err = strconv.ParseInt(word, 0, 33)
		if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
			err = ErrParseNumber(word)
			return
		}
		value = uint32(v64)
	}

	if invert {
		value = ^value
	}

	return
}

// valueOrLink resolves a word to a value, or to a link label that will be
// resolved once all labels are known.
func (asm *Assembler) valueOrLink(word string) (value uint32, link string, err error) {
	value, err = asm.valueOf(word)
	if err != nil && reSymbol.MatchString(word) {
		link = word
		err = nil
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeUint64(uint64(value32))
	}
	for key, eip := range asm.Label {
		pred[key] = starlark.MakeUint64(uint64(eip))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Labels are defined before expansion, so that $() may use them.
	for {
		match := reLabel.FindStringSubmatch(line)
		if match == nil {
			break
		}
		label := match[1]
		if !reSymbol.MatchString(label) {
			err = ErrLabelSyntax
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentEip()
		line = line[len(match[0]):]
	}

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// currentEip gets the current location counter.
func (asm *Assembler) currentEip() uint32 {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Eip + uint32(len(last.Bytes))
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint32, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		eip, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}

		err = asm.link(op, eip)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link patches the operand of an opcode with a resolved address.
func (asm *Assembler) link(op *Opcode, eip uint32) (err error) {
	switch op.Bytes[0] {
	case OP_JMP_REL8:
		var diff int8
		diff, err = jumpDisplacement(op.Eip, eip)
		if err != nil {
			return
		}
		op.Bytes[1] = byte(diff)
	default:
		binary.LittleEndian.PutUint32(op.Bytes[1:], eip)
	}

	return
}

// jumpDisplacement computes the rel8 displacement from a jump at eip to
// target.
func jumpDisplacement(eip uint32, target uint32) (diff int8, err error) {
	diff32 := int32(target - (eip + JMP_REL8_LEN))
	if diff32 < -128 || diff32 > 127 {
		err = ErrJumpRange(diff32)
		return
	}

	diff = int8(diff32)
	return
}

// emit appends an opcode at the current location.
func (asm *Assembler) emit(words []string, lineno int, bytes []byte, link string) {
	asm.Opcode = append(asm.Opcode, Opcode{
		LineNo:    lineno,
		Eip:       asm.currentEip(),
		Words:     words,
		Bytes:     bytes,
		LinkLabel: link,
	})
}

// parseWords assembles a single line of words.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var eip uint32
		eip, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		here := asm.currentEip()
		if eip < here {
			err = ErrOrgBackwards
			return
		}
		// An empty opcode moves the location counter.
		asm.Opcode = append(asm.Opcode, Opcode{LineNo: lineno, Eip: eip, Words: words})
	case ".byte", ".dword":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var bytes []byte
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if words[0] == ".byte" {
				bytes = append(bytes, byte(value))
			} else {
				bytes = binary.LittleEndian.AppendUint32(bytes, value)
			}
		}
		asm.emit(words, lineno, bytes, "")
	case "mov":
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		reg, ok := regMap[strings.ToLower(words[1])]
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		value, link, _err := asm.valueOrLink(words[2])
		if _err != nil {
			err = _err
			return
		}
		bytes := []byte{OP_MOV_R32_IMM32 + byte(reg)}
		bytes = binary.LittleEndian.AppendUint32(bytes, value)
		asm.emit(words, lineno, bytes, link)
	case "jmp":
		args := words[1:]
		if len(args) > 0 && args[0] == "short" {
			args = args[1:]
		}
		if len(args) == 0 {
			err = ErrTargetMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		target, link, _err := asm.valueOrLink(args[0])
		if _err != nil {
			err = _err
			return
		}
		bytes := []byte{OP_JMP_REL8, 0}
		if len(link) == 0 {
			var diff int8
			diff, err = jumpDisplacement(asm.currentEip(), target)
			if err != nil {
				return
			}
			bytes[1] = byte(diff)
		}
		asm.emit(words, lineno, bytes, link)
	default:
		err = ErrOpcodeInvalid
	}

	return
}
