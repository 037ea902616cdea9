// Package errno defines the kernel's error taxonomy.
//
// The C original PennOS threads a single global ERRNO variable through
// every kernel call. That global is replaced here with a typed error
// value returned alongside every call's result, per the re-architecture
// note in spec.md §9: never a process-global.
package errno

import "fmt"

// Kind identifies one of the error categories in spec.md §7.
type Kind int

const (
	_ Kind = iota
	NotFound
	PermissionDenied
	WriteContended
	IllegalMode
	ReadFromOutput
	WriteToInput
	CloseTerminal
	SeekOnTerminal
	ReadOnly
	SeekOutOfBounds
	FdTableFull
	NoSpace
	NoChild
	SpawnFailed
	IOFatal
)

var names = map[Kind]string{
	NotFound:         "NotFound",
	PermissionDenied: "PermissionDenied",
	WriteContended:   "WriteContended",
	IllegalMode:      "IllegalMode",
	ReadFromOutput:   "ReadFromOutput",
	WriteToInput:     "WriteToInput",
	CloseTerminal:    "CloseTerminal",
	SeekOnTerminal:   "SeekOnTerminal",
	ReadOnly:         "ReadOnly",
	SeekOutOfBounds:  "SeekOutOfBounds",
	FdTableFull:      "FdTableFull",
	NoSpace:          "NoSpace",
	NoChild:          "NoChild",
	SpawnFailed:      "SpawnFailed",
	IOFatal:          "IOFatal",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Errno is the error type every kernel, fat, and vfs call returns on
// failure. It carries the offending call's name for diagnostics, the
// way the "safe" façade (out of scope here) would want to report it.
type Errno struct {
	Kind Kind
	Op   string
	Err  error // wrapped cause, if any (e.g. a host I/O error)
}

func New(kind Kind, op string) *Errno {
	return &Errno{Kind: kind, Op: op}
}

func Wrap(kind Kind, op string, err error) *Errno {
	return &Errno{Kind: kind, Op: op, Err: err}
}

func (e *Errno) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Errno) Unwrap() error {
	return e.Err
}

// As extracts the Kind from err, returning (kind, true) if err is an
// *Errno or wraps one.
func As(err error) (Kind, bool) {
	if err == nil {
		return 0, false
	}
	var e *Errno
	if ok := asErrno(err, &e); ok {
		return e.Kind, true
	}
	return 0, false
}

func asErrno(err error, target **Errno) bool {
	for err != nil {
		if e, ok := err.(*Errno); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Fatal reports whether a host I/O failure of this kind should be
// treated as fatal to the whole process, per spec.md §7.
func (k Kind) Fatal() bool {
	return k == IOFatal
}
