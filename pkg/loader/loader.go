// Package loader reads Y86-64 object files (.yo listings) into memory.
//
// An object file is the assembler's listing: each line that carries code or
// data starts with the address and the encoded bytes, optionally followed by
// "|" and the source text.
//
//	0x000: 30f40002000000000000 |   irmovq stack, %rsp
//	0x00a:                      | loop:
//
// Only the address and byte columns are used. Lines without bytes are
// skipped.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/oisee/y86-sim/pkg/cpu"
)

// recordPattern matches an object record: address, colon, hex bytes.
var recordPattern = regexp.MustCompile(`^\s*0x([0-9A-Fa-f]+)\s*:\s*([0-9A-Fa-f]+)`)

// ErrNoRecords is returned when the input contains no object records.
var ErrNoRecords = errors.New("no object records found")

// Error describes a record that could not be written to memory.
type Error struct {
	Line int    // 1-based line number in the input
	Addr uint64 // address of the offending byte
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: byte at 0x%x: %v", e.Line, e.Addr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Record is one parsed object line.
type Record struct {
	Addr  uint64
	Bytes []byte
}

// ParseLine parses a single line. It returns false if the line is not an
// object record. Bytes are taken two digits at a time; a trailing odd digit
// is a byte of its own.
func ParseLine(line string) (Record, bool, error) {
	m := recordPattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false, nil
	}
	addr, err := strconv.ParseUint(m[1], 16, 64)
	if err != nil {
		// address wider than 64 bits cannot be inside memory
		return Record{}, true, cpu.AddressError(^uint64(0))
	}
	hex := m[2]
	data := make([]byte, 0, (len(hex)+1)/2)
	for i := 0; i < len(hex); i += 2 {
		digits := hex[i:min(i+2, len(hex))]
		b, err := strconv.ParseUint(digits, 16, 8)
		if err != nil {
			return Record{}, true, fmt.Errorf("bad byte %q: %w", digits, err)
		}
		data = append(data, byte(b))
	}
	return Record{Addr: addr, Bytes: data}, true, nil
}

// Load clears mem and writes every record of the object text into it. It
// returns the number of records loaded. If any byte falls outside memory the
// whole load fails with an *Error.
func Load(text string, mem *cpu.Memory) (int, error) {
	return LoadReader(strings.NewReader(text), mem)
}

// LoadReader is Load for an io.Reader.
func LoadReader(r io.Reader, mem *cpu.Memory) (int, error) {
	mem.Reset()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	records := 0
	for lineNo := 1; sc.Scan(); lineNo++ {
		rec, ok, err := ParseLine(sc.Text())
		if !ok {
			continue
		}
		if err != nil {
			var ae cpu.AddressError
			if errors.As(err, &ae) {
				return records, &Error{Line: lineNo, Addr: uint64(ae), Err: err}
			}
			return records, &Error{Line: lineNo, Err: err}
		}
		for i, b := range rec.Bytes {
			addr := rec.Addr + uint64(i)
			if addr < rec.Addr {
				return records, &Error{Line: lineNo, Addr: addr, Err: cpu.AddressError(addr)}
			}
			if err := mem.WriteByteAt(addr, b); err != nil {
				return records, &Error{Line: lineNo, Addr: addr, Err: err}
			}
		}
		records++
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("read object file: %w", err)
	}
	if records == 0 {
		return 0, ErrNoRecords
	}
	return records, nil
}

// Extent returns the lowest address and one past the highest address written
// by the records in text. ok is false if text has no records.
func Extent(text string) (lo, hi uint64, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		rec, isRec, err := ParseLine(line)
		if !isRec || err != nil || len(rec.Bytes) == 0 {
			continue
		}
		end := rec.Addr + uint64(len(rec.Bytes))
		if !ok || rec.Addr < lo {
			lo = rec.Addr
		}
		if !ok || end > hi {
			hi = end
		}
		ok = true
	}
	return lo, hi, ok
}
