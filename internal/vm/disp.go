package vm

// disp.go provides a minimal reference DisplaySink: it logs one line per
// frame rather than rendering anything, since the on-screen renderer is an
// external collaborator this package deliberately leaves out (§1, §6). It
// exists so the CLI's exec command has something to wire in by default.

import (
	"github.com/smoynes/sixteen/internal/log"
)

// LoggingDisplay is a DisplaySink that counts frames and logs a checksum of
// each presented half, useful for tests and headless runs.
type LoggingDisplay struct {
	log    *log.Logger
	frames int
}

// NewLoggingDisplay creates a DisplaySink that logs instead of rendering.
func NewLoggingDisplay(l *log.Logger) *LoggingDisplay {
	return &LoggingDisplay{log: l}
}

func (d *LoggingDisplay) Present(active []Word) {
	d.frames++

	var checksum uint32
	for _, w := range active {
		checksum += uint32(w)
	}

	d.log.Debug("frame presented", "frame", d.frames, "checksum", checksum)
}

// Frames returns the number of frames presented so far.
func (d *LoggingDisplay) Frames() int { return d.frames }
