// Package syscalls implements the user/kernel boundary: the syscall
// number table, argument and pointer validation, and the dispatcher that
// turns a TrapFrame into a call against proc, fdtable, and a backing
// Filesystem (Section 5).
//
// Every argument that is or contains a user-space pointer is validated
// against the calling thread's AddressSpace before it is dereferenced.
// An invalid pointer never panics the kernel; it terminates the
// offending process with exit status -1, matching PintOS's page_fault
// handler special-casing faults that originate from a syscall argument.
package syscalls

import (
	kerrors "miniker/errors"
	"miniker/fdtable"
	"miniker/fslock"
	"miniker/logging"
	"miniker/proc"
	"miniker/sched"
	"miniker/thread"
)

// Syscall numbers, Section 5.
const (
	SysHalt = iota
	SysExit
	SysExec
	SysWait
	SysCreate
	SysRemove
	SysOpen
	SysFilesize
	SysRead
	SysWrite
	SysSeek
	SysTell
	SysClose
)

// AddressSpace validates that a range of user memory is mapped and
// readable/writable by the calling thread, the simulated stand-in for
// walking page tables in a page fault handler.
type AddressSpace interface {
	// Valid reports whether every byte in [ptr, ptr+size) is mapped.
	Valid(ptr uintptr, size int) bool
	// ReadString reads a NUL-terminated string starting at ptr, failing
	// if the terminator is never found within a mapped page.
	ReadString(ptr uintptr) (string, bool)
	// ReadBytes reads size bytes starting at ptr.
	ReadBytes(ptr uintptr, size int) ([]byte, bool)
	// WriteBytes writes data starting at ptr.
	WriteBytes(ptr uintptr, data []byte) bool
}

// Filesystem is the backing store syscalls open, read, write, and seek
// against. The kernel package supplies the concrete implementation.
type Filesystem interface {
	Create(name string, initialSize int) bool
	Remove(name string) bool
	Open(name string) (fdtable.FileHandle, bool)
}

// File is the subset of fdtable.FileHandle that file-position syscalls
// need. The kernel's concrete FileHandle implementation satisfies it.
type File interface {
	fdtable.FileHandle
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Length() int
	Seek(pos int)
	Tell() int
}

// Console is where fd 1 (stdout) writes go, and where fd 0 (stdin) reads
// come from.
type Console interface {
	Write(data []byte) int
	Read(buf []byte) int
}

// TrapFrame carries one syscall invocation's number and up to three
// arguments, as they would arrive on the user stack.
type TrapFrame struct {
	Number int
	Arg0   uintptr
	Arg1   uintptr
	Arg2   uintptr
}

// Dispatcher wires the syscall table to its backing implementations.
type Dispatcher struct {
	FS      Filesystem
	Console Console
	Loader  proc.Loader
}

// Dispatch validates tf against self's address space and executes the
// requested syscall, returning the value the user program's eax would
// receive. A validation failure terminates the calling thread with status
// -1 through proc.Exit; once that has handed the CPU to another thread,
// Dispatch does not return.
func (d *Dispatcher) Dispatch(self *thread.Thread, as AddressSpace, tf TrapFrame) int {
	switch tf.Number {
	case SysHalt:
		return d.halt()
	case SysExit:
		return d.exit(int(int32(tf.Arg0)))
	case SysExec:
		return d.exec(as, tf.Arg0)
	case SysWait:
		return proc.Wait(int(tf.Arg0))
	case SysCreate:
		return d.create(as, tf.Arg0, int(tf.Arg1))
	case SysRemove:
		return d.remove(as, tf.Arg0)
	case SysOpen:
		return d.open(self, as, tf.Arg0)
	case SysFilesize:
		return d.filesize(self, int(tf.Arg0))
	case SysRead:
		return d.read(self, as, int(tf.Arg0), tf.Arg1, int(tf.Arg2))
	case SysWrite:
		return d.write(self, as, int(tf.Arg0), tf.Arg1, int(tf.Arg2))
	case SysSeek:
		return d.seek(self, int(tf.Arg0), int(tf.Arg1))
	case SysTell:
		return d.tell(self, int(tf.Arg0))
	case SysClose:
		return d.close(self, int(tf.Arg0))
	default:
		d.kill(self, kerrors.ErrUnknownSyscall)
		return 0
	}
}

// kill terminates self with status -1, the fate of any thread that makes
// an invalid syscall (bad number or bad pointer).
func (d *Dispatcher) kill(self *thread.Thread, cause error) {
	logging.Warn("killing thread on invalid syscall argument", "tid", self.Tid, "cause", cause)
	proc.Exit(-1)
}

func (d *Dispatcher) halt() int {
	panic(&haltRequest{})
}

// haltRequest is the panic value halt raises to model power_off()
// aborting every thread at once. Nothing in the kernel recovers it, so the
// panic ends the whole program.
type haltRequest struct{}

func (d *Dispatcher) exit(status int) int {
	proc.Exit(status)
	return 0
}

func (d *Dispatcher) exec(as AddressSpace, cmdlinePtr uintptr) int {
	self := sched.CurrentThread()
	cmdline, ok := as.ReadString(cmdlinePtr)
	if !ok {
		d.kill(self, kerrors.ErrBadPointer)
		return -1
	}
	tid, err := proc.Exec(d.Loader, cmdline, nil, thread.PriDefault)
	if err != nil {
		return -1
	}
	return tid
}

func (d *Dispatcher) create(as AddressSpace, namePtr uintptr, size int) int {
	self := sched.CurrentThread()
	name, ok := as.ReadString(namePtr)
	if !ok {
		d.kill(self, kerrors.ErrBadPointer)
		return 0
	}
	var result bool
	fslock.Guard(func() error {
		result = d.FS.Create(name, size)
		return nil
	})
	return boolToInt(result)
}

func (d *Dispatcher) remove(as AddressSpace, namePtr uintptr) int {
	self := sched.CurrentThread()
	name, ok := as.ReadString(namePtr)
	if !ok {
		d.kill(self, kerrors.ErrBadPointer)
		return 0
	}
	var result bool
	fslock.Guard(func() error {
		result = d.FS.Remove(name)
		return nil
	})
	return boolToInt(result)
}

func (d *Dispatcher) open(self *thread.Thread, as AddressSpace, namePtr uintptr) int {
	name, ok := as.ReadString(namePtr)
	if !ok {
		d.kill(self, kerrors.ErrBadPointer)
		return -1
	}
	var handle fdtable.FileHandle
	var opened bool
	fslock.Guard(func() error {
		handle, opened = d.FS.Open(name)
		return nil
	})
	if !opened {
		return -1
	}
	fd, err := fdtable.Open(self, handle)
	if err != nil {
		return -1
	}
	return fd
}

func (d *Dispatcher) filesize(self *thread.Thread, fd int) int {
	of, err := fdtable.Lookup(self, fd)
	if err != nil {
		return -1
	}
	f, ok := of.Handle.(File)
	if !ok {
		return -1
	}
	var n int
	fslock.Guard(func() error { n = f.Length(); return nil })
	return n
}

func (d *Dispatcher) read(self *thread.Thread, as AddressSpace, fd int, bufPtr uintptr, size int) int {
	if fd == fdtable.Stdin {
		if !as.Valid(bufPtr, size) {
			d.kill(self, kerrors.ErrBadPointer)
			return -1
		}
		buf := make([]byte, size)
		n := d.Console.Read(buf)
		if !as.WriteBytes(bufPtr, buf[:n]) {
			d.kill(self, kerrors.ErrBadPointer)
			return -1
		}
		return n
	}
	if !as.Valid(bufPtr, size) {
		d.kill(self, kerrors.ErrBadPointer)
		return -1
	}
	of, err := fdtable.Lookup(self, fd)
	if err != nil {
		return -1
	}
	f, ok := of.Handle.(File)
	if !ok {
		return -1
	}
	buf := make([]byte, size)
	var n int
	var rerr error
	fslock.Guard(func() error { n, rerr = f.Read(buf); return rerr })
	if rerr != nil && n == 0 {
		return -1
	}
	if !as.WriteBytes(bufPtr, buf[:n]) {
		d.kill(self, kerrors.ErrBadPointer)
		return -1
	}
	return n
}

func (d *Dispatcher) write(self *thread.Thread, as AddressSpace, fd int, bufPtr uintptr, size int) int {
	data, ok := as.ReadBytes(bufPtr, size)
	if !ok {
		d.kill(self, kerrors.ErrBadPointer)
		return -1
	}
	if fd == fdtable.Stdout {
		return d.Console.Write(data)
	}
	of, err := fdtable.Lookup(self, fd)
	if err != nil {
		return -1
	}
	f, ok2 := of.Handle.(File)
	if !ok2 {
		return -1
	}
	var n int
	var werr error
	fslock.Guard(func() error { n, werr = f.Write(data); return werr })
	if werr != nil {
		return -1
	}
	return n
}

func (d *Dispatcher) seek(self *thread.Thread, fd, pos int) int {
	of, err := fdtable.Lookup(self, fd)
	if err != nil {
		return 0
	}
	if f, ok := of.Handle.(File); ok {
		fslock.Guard(func() error { f.Seek(pos); return nil })
	}
	return 0
}

func (d *Dispatcher) tell(self *thread.Thread, fd int) int {
	of, err := fdtable.Lookup(self, fd)
	if err != nil {
		return -1
	}
	f, ok := of.Handle.(File)
	if !ok {
		return -1
	}
	var pos int
	fslock.Guard(func() error { pos = f.Tell(); return nil })
	return pos
}

func (d *Dispatcher) close(self *thread.Thread, fd int) int {
	fslock.Guard(func() error { return fdtable.Close(self, fd) })
	return 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
