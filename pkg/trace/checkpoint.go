package trace

import (
	"encoding/gob"
	"os"
)

// checkpoint is the on-disk gob layout.
type checkpoint struct {
	Program string // object text the trace was produced from
	Steps   []Snapshot
}

// Save writes the trace and the program that produced it to a file in gob
// format. It is faster to reload than JSON for large traces.
func Save(path, program string, t *Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(checkpoint{Program: program, Steps: t.Steps}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a file written by Save.
func Load(path string) (program string, t *Trace, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	var ckpt checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return "", nil, err
	}
	return ckpt.Program, &Trace{Steps: ckpt.Steps}, nil
}
