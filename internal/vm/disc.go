package vm

// disc.go implements the disc address space: 2^32-addressable words,
// sparsely allocated, since no real system exhaustively zero-fills a disc
// that size. Every cell write also records which source line produced it
// (the program counter at the time of the write); a debug dump can use this
// to annotate a disc image, in the spirit of the source this machine is
// modeled on.

// Disc is the machine's disc storage: a 32-bit-addressed, sparsely
// allocated array of Words.
type Disc struct {
	cells      map[uint32]Word
	provenance map[uint32]Word
}

func (d *Disc) ensure() {
	if d.cells == nil {
		d.cells = make(map[uint32]Word)
		d.provenance = make(map[uint32]Word)
	}
}

// Load reads a disc cell; unwritten cells read as zero.
func (d *Disc) Load(addr uint32) Word {
	d.ensure()
	return d.cells[addr]
}

// Store writes a disc cell and records the writing instruction's PC.
func (d *Disc) Store(addr uint32, val, pc Word) {
	d.ensure()
	d.cells[addr] = val
	d.provenance[addr] = pc
}

// Provenance returns the PC that last wrote a disc cell, and whether the
// cell has ever been written.
func (d *Disc) Provenance(addr uint32) (Word, bool) {
	d.ensure()

	pc, ok := d.provenance[addr]

	return pc, ok
}
