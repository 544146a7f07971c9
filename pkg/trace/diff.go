package trace

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/oisee/y86-sim/pkg/isa"
)

// Mismatch describes the first difference between two traces.
type Mismatch struct {
	Step  int    // snapshot index, or -1 for a length difference
	Field string // e.g. "PC", "REG.rax", "MEM.512"
	Want  string
	Got   string
}

func (m *Mismatch) Error() string {
	if m.Step < 0 {
		return fmt.Sprintf("trace length: want %s, got %s", m.Want, m.Got)
	}
	return fmt.Sprintf("step %d %s: want %s, got %s", m.Step, m.Field, m.Want, m.Got)
}

// Compare returns the first difference between want and got, or nil if they
// are identical. Snapshots are compared in order and field by field, so the
// earliest diverging cycle is reported.
func Compare(want, got *Trace) *Mismatch {
	n := min(want.Len(), got.Len())
	for i := 0; i < n; i++ {
		if m := compareSnapshot(&want.Steps[i], &got.Steps[i]); m != nil {
			m.Step = i
			return m
		}
	}
	if want.Len() != got.Len() {
		return &Mismatch{Step: -1, Field: "len", Want: strconv.Itoa(want.Len()), Got: strconv.Itoa(got.Len())}
	}
	return nil
}

func compareSnapshot(want, got *Snapshot) *Mismatch {
	if want.PC != got.PC {
		return &Mismatch{Field: "PC", Want: hex(want.PC), Got: hex(got.PC)}
	}
	if want.Stat != got.Stat {
		return &Mismatch{Field: "STAT", Want: want.Stat.String(), Got: got.Stat.String()}
	}
	if want.CC != got.CC {
		return &Mismatch{Field: "CC", Want: fmt.Sprintf("%+v", want.CC), Got: fmt.Sprintf("%+v", got.CC)}
	}
	for _, name := range isa.RegNames() {
		if want.Reg[name] != got.Reg[name] {
			return &Mismatch{
				Field: "REG." + name,
				Want:  strconv.FormatInt(want.Reg[name], 10),
				Got:   strconv.FormatInt(got.Reg[name], 10),
			}
		}
	}
	for _, addr := range memKeys(want.Mem, got.Mem) {
		if want.Mem[addr] != got.Mem[addr] {
			return &Mismatch{Field: "MEM." + addr, Want: hex(want.Mem[addr]), Got: hex(got.Mem[addr])}
		}
	}
	return nil
}

// memKeys returns the union of both key sets in ascending address order.
func memKeys(a, b map[string]uint64) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var keys []string
	for _, m := range []map[string]uint64{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		x, _ := strconv.ParseUint(keys[i], 10, 64)
		y, _ := strconv.ParseUint(keys[j], 10, 64)
		return x < y
	})
	return keys
}

func hex(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}
