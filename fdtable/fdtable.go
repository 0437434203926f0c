// Package fdtable implements each process's open file descriptor table
// (Section 5). File descriptors 0 and 1 are reserved for stdin/stdout and
// never appear in a thread's table; every other open file gets the next
// value of a per-thread monotonically increasing counter. Closed fds are
// never recycled: closing fd 2 and opening again hands out fd 4 if fd 3
// was also handed out in between, not fd 2 again.
package fdtable

import (
	"container/list"

	kerrors "miniker/errors"
	"miniker/thread"
)

// FileHandle is the capability a file descriptor refers to. The kernel
// package supplies the concrete implementation backed by its Filesystem
// interface; fdtable only needs Close.
type FileHandle interface {
	Close() error
}

// OpenFile is one entry in a process's file descriptor table.
type OpenFile struct {
	FD     int
	Handle FileHandle
	elem   *list.Element
}

// Stdin and Stdout are the reserved low file descriptors (Section 5).
const (
	Stdin  = 0
	Stdout = 1
)

// lowestFD is the first fd ever handed out to a real open file.
const lowestFD = 2

// Open allocates the next fd from t's monotonically increasing counter
// and returns it. Fds are never recycled within a process: a closed fd
// is gone for good, and the next Open call always returns a higher
// number than any fd ever handed out to t before.
func Open(t *thread.Thread, handle FileHandle) (int, error) {
	fd := t.NumFD
	t.NumFD++
	of := &OpenFile{FD: fd, Handle: handle}
	of.elem = t.Files.PushBack(of)
	return fd, nil
}

// Lookup returns the OpenFile for fd in t's table, or an ErrBadFD error.
func Lookup(t *thread.Thread, fd int) (*OpenFile, error) {
	for e := t.Files.Front(); e != nil; e = e.Next() {
		if of := e.Value.(*OpenFile); of.FD == fd {
			return of, nil
		}
	}
	return nil, kerrors.Wrap(kerrors.ErrBadFD, kerrors.ErrNotFound, "fdtable.Lookup")
}

// Close closes and removes fd from t's table.
func Close(t *thread.Thread, fd int) error {
	of, err := Lookup(t, fd)
	if err != nil {
		return err
	}
	t.Files.Remove(of.elem)
	return of.Handle.Close()
}

// ExitHook closes every file still open in t. Registered with
// sched.Scheduler.OnThreadExit so a thread can never leak file handles,
// matching process_exit's file cleanup.
func ExitHook(t *thread.Thread) {
	for e := t.Files.Front(); e != nil; {
		next := e.Next()
		of := e.Value.(*OpenFile)
		of.Handle.Close()
		e = next
	}
	t.Files.Init()
}
