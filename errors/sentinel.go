// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Thread and scheduling errors.
var (
	// ErrThreadNotFound indicates the referenced tid does not name a live
	// thread.
	ErrThreadNotFound = &KernelError{
		Kind:   ErrNotFound,
		Detail: "thread not found",
	}

	// ErrNotBlocked indicates an operation expected the thread to be
	// blocked but it was not.
	ErrNotBlocked = &KernelError{
		Kind:   ErrInvalidState,
		Detail: "thread is not blocked",
	}

	// ErrDonationDepthExceeded indicates a donation chain hit the bounded
	// depth without reaching a non-blocked holder.
	ErrDonationDepthExceeded = &KernelError{
		Kind:   ErrInvalidState,
		Detail: "donation chain exceeded maximum depth",
	}

	// ErrLockAlreadyHeld indicates a thread attempted to acquire a lock
	// it already holds.
	ErrLockAlreadyHeld = &KernelError{
		Kind:   ErrInvalidState,
		Detail: "lock already held by calling thread",
	}

	// ErrNotLockHolder indicates a thread attempted to release a lock it
	// does not hold.
	ErrNotLockHolder = &KernelError{
		Kind:   ErrInvalidState,
		Detail: "calling thread does not hold lock",
	}
)

// Process lifecycle errors.
var (
	// ErrNotAChild indicates the tid passed to wait is not a direct,
	// unreaped child of the calling thread.
	ErrNotAChild = &KernelError{
		Kind:   ErrInvalidArgument,
		Detail: "tid is not a child of the calling thread",
	}

	// ErrAlreadyWaited indicates a second wait on the same child tid.
	ErrAlreadyWaited = &KernelError{
		Kind:   ErrInvalidState,
		Detail: "already waited on this child",
	}

	// ErrExecFailed indicates the loader could not load the requested
	// executable.
	ErrExecFailed = &KernelError{
		Kind:   ErrInternal,
		Detail: "failed to load executable",
	}

	// ErrExecutableBusy indicates a write was attempted against a file
	// that is currently loaded and running as an executable.
	ErrExecutableBusy = &KernelError{
		Kind:   ErrPermission,
		Detail: "cannot write to a running executable",
	}
)

// Syscall and memory errors.
var (
	// ErrBadPointer indicates a user-supplied pointer, or a string or
	// buffer reachable from it, fell outside the mapped user address
	// space.
	ErrBadPointer = &KernelError{
		Kind:   ErrInvalidArgument,
		Detail: "invalid user pointer",
	}

	// ErrUnknownSyscall indicates a syscall number outside the dispatch
	// table.
	ErrUnknownSyscall = &KernelError{
		Kind:   ErrInvalidArgument,
		Detail: "unknown syscall number",
	}
)

// File descriptor table errors.
var (
	// ErrFDTableFull indicates a process has reached its open file
	// descriptor limit.
	ErrFDTableFull = &KernelError{
		Kind:   ErrResource,
		Detail: "file descriptor table full",
	}

	// ErrBadFD indicates a syscall referenced a file descriptor that is
	// not currently open in the calling process.
	ErrBadFD = &KernelError{
		Kind:   ErrNotFound,
		Detail: "bad file descriptor",
	}

	// ErrFileOpenFailed indicates the backing filesystem could not open
	// the named file.
	ErrFileOpenFailed = &KernelError{
		Kind:   ErrInternal,
		Detail: "failed to open file",
	}
)
