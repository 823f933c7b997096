package slab

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

const maxFrames = 256

// FaultKind classifies an unrecoverable allocator condition.
type FaultKind int

const (
	// FaultExhausted means a node region could not be mapped.
	FaultExhausted FaultKind = iota + 1

	// FaultInvalidFree means no node owns the freed address.
	FaultInvalidFree

	// FaultDoubleFree means the freed address's slot was already free.
	FaultDoubleFree
)

func (k FaultKind) String() string {
	switch k {
	case FaultExhausted:
		return "exhausted"
	case FaultInvalidFree:
		return "invalid free"
	case FaultDoubleFree:
		return "double free"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

// Fault describes a violated allocator contract or a refused mapping.
type Fault struct {
	Kind FaultKind

	// Addr is the address passed to Free. Zero for exhaustion.
	Addr uintptr

	// Size is the requested size (exhaustion) or the owning node's object
	// size (double free).
	Size int

	// Entry is the slot index inside the owning node, or -1.
	Entry int

	// Word is the occupancy word holding Entry at the time of a double free.
	Word uint32

	// Err is the mapping error behind an exhaustion fault.
	Err error

	pcs []uintptr
}

// FaultHandler receives faults after the heap lock has been released.
type FaultHandler func(*Fault)

func (f *Fault) Error() string {
	switch f.Kind {
	case FaultExhausted:
		return fmt.Sprintf("slab: failed to allocate memory region for %d byte objects: %v", f.Size, f.Err)
	case FaultInvalidFree:
		return fmt.Sprintf("slab: object %#x not in any pool", f.Addr)
	case FaultDoubleFree:
		return fmt.Sprintf("slab: object %#x already freed (entry %d of %d byte pool, map word 0x%08x)",
			f.Addr, f.Entry, f.Size, f.Word)
	default:
		return "slab: " + f.Kind.String()
	}
}

// Unwrap exposes the sentinel for the fault kind and any mapping error.
func (f *Fault) Unwrap() []error {
	var errs []error
	switch f.Kind {
	case FaultExhausted:
		errs = append(errs, ErrExhausted)
	case FaultInvalidFree:
		errs = append(errs, ErrInvalidFree)
	case FaultDoubleFree:
		errs = append(errs, ErrDoubleFree)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// record captures the stack of the caller skip frames above record.
func (f *Fault) record(skip int) {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	f.pcs = pcs[:n]
}

// Frames returns the captured call stack, innermost first.
func (f *Fault) Frames() []runtime.Frame {
	if len(f.pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(f.pcs)
	out := make([]runtime.Frame, 0, len(f.pcs))
	for {
		fr, more := frames.Next()
		out = append(out, fr)
		if !more {
			break
		}
	}
	return out
}

// WriteStack writes one "frame(NNN): function file:line" line per frame.
func (f *Fault) WriteStack(w io.Writer) error {
	for i, fr := range f.Frames() {
		if _, err := fmt.Fprintf(w, "frame(%03d): %s %s:%d\n", i, fr.Function, fr.File, fr.Line); err != nil {
			return err
		}
	}
	return nil
}

// Abort prints f and its backtrace to stderr and exits with status 2.
func Abort(f *Fault) {
	fmt.Fprintf(os.Stderr, "%v\n", f)
	_ = f.WriteStack(os.Stderr)
	os.Exit(2)
}
