// Package fslock provides the single global filesystem lock. Section 5
// requires that filesystem code is not reentrant, so the kernel takes one
// lock around every filesystem operation reachable from a syscall,
// exactly like PintOS's filesys_lock during project 2.
package fslock

import "miniker/ksync"

// FS is the global filesystem lock. Every syscall handler that touches the
// backing filesystem interface acquires it for the duration of the call.
var FS = ksync.NewLock()

// Guard acquires FS, runs fn, and releases FS even if fn panics.
func Guard(fn func() error) error {
	FS.Acquire()
	defer FS.Release()
	return fn()
}
