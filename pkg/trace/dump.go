package trace

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"github.com/oisee/y86-sim/pkg/isa"
)

type regView struct {
	Name  string
	Value int64
	Hex   string
}

type memView struct {
	Addr  string
	Value string
}

type snapshotView struct {
	Step int
	PC   string
	Stat string
	CC   Flags
	Reg  []regView
	Mem  []memView
}

// Dump pretty prints snapshot i of the trace: registers in id order, memory
// in address order, values in both decimal and hex.
func Dump(w io.Writer, t *Trace, i int, color bool) error {
	if i < 0 || i >= t.Len() {
		return fmt.Errorf("step %d out of range [0, %d)", i, t.Len())
	}
	s := &t.Steps[i]
	v := snapshotView{
		Step: i,
		PC:   hex(s.PC),
		Stat: s.Stat.String(),
		CC:   s.CC,
	}
	for _, name := range isa.RegNames() {
		v.Reg = append(v.Reg, regView{Name: name, Value: s.Reg[name], Hex: hex(uint64(s.Reg[name]))})
	}
	addrs := make([]uint64, 0, len(s.Mem))
	for k := range s.Mem {
		a, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		v.Mem = append(v.Mem, memView{Addr: hex(a), Value: hex(s.Word(a))})
	}

	printer := pp.New()
	printer.SetColoringEnabled(color)
	_, err := printer.Fprintln(w, v)
	return err
}
