package driver

import (
	"os"
	"path/filepath"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/graceerr"
)

// Flusher delivers a rendered Buffer to wherever generated source text
// lives. The core never writes files itself (spec.md's file-I/O non-goal);
// Flusher is the seam a driver plugs a destination into.
type Flusher interface {
	Flush(module string, buf *buffer.Buffer) (Action, error)
}

// MemoryFlusher records every flushed buffer in-process, keyed by module
// name — used by tests that want to assert on driver.RunAll's output
// without touching a filesystem.
type MemoryFlusher struct {
	Written map[string]string
}

// NewMemoryFlusher returns an empty MemoryFlusher.
func NewMemoryFlusher() *MemoryFlusher {
	return &MemoryFlusher{Written: make(map[string]string)}
}

// Flush records buf's text under module, reporting Skip if the text is
// byte-identical to what was already recorded (idempotent re-emission,
// §8 invariant).
func (f *MemoryFlusher) Flush(module string, buf *buffer.Buffer) (Action, error) {
	text := buf.String()
	if prev, ok := f.Written[module]; ok && prev == text {
		return Skip, nil
	}
	f.Written[module] = text
	return Write, nil
}

// DiskFlusher writes rendered buffers to <outdir>/<module>.rs, skipping
// the write when the on-disk copy already matches (§6.3's demonstration
// flush target; the canonical persisted layout is a property of the
// emitted program, not the generator).
type DiskFlusher struct {
	OutDir    string
	Formatter func(path string) error
}

// NewDiskFlusher returns a DiskFlusher rooted at outDir. formatter may be
// nil, in which case Flush never reports FormatWrite.
func NewDiskFlusher(outDir string, formatter func(path string) error) *DiskFlusher {
	return &DiskFlusher{OutDir: outDir, Formatter: formatter}
}

func (f *DiskFlusher) Flush(module string, buf *buffer.Buffer) (Action, error) {
	path := filepath.Join(f.OutDir, module+".rs")
	text := buf.String()

	if existing, err := os.ReadFile(path); err == nil && string(existing) == text {
		return Skip, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Skip, &graceerr.FileError{Path: path, Cause: err}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return Skip, &graceerr.FileError{Path: path, Cause: err}
	}

	if f.Formatter != nil {
		if err := f.Formatter(path); err != nil {
			return Skip, &graceerr.FileError{Path: path, Cause: err}
		}
		return FormatWrite, nil
	}
	return Write, nil
}
