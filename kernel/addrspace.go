package kernel

// MemAddrSpace is a flat byte arena standing in for one user process's
// mapped pages (Section 5's "validate every user pointer" requirement).
// Any pointer at or past Size is treated as unmapped; real pointer faults
// in PintOS are page-granularity, but byte granularity here gives demo
// scenarios an exact off-by-one to trigger.
type MemAddrSpace struct {
	mem []byte
}

// NewMemAddrSpace allocates an address space of size bytes.
func NewMemAddrSpace(size int) *MemAddrSpace {
	return &MemAddrSpace{mem: make([]byte, size)}
}

// Valid reports whether [ptr, ptr+size) lies entirely within the mapped
// arena.
func (a *MemAddrSpace) Valid(ptr uintptr, size int) bool {
	if size < 0 {
		return false
	}
	end := ptr + uintptr(size)
	return ptr <= end && end <= uintptr(len(a.mem))
}

// ReadString reads a NUL-terminated string starting at ptr, failing if no
// terminator is found before the arena ends.
func (a *MemAddrSpace) ReadString(ptr uintptr) (string, bool) {
	if ptr >= uintptr(len(a.mem)) {
		return "", false
	}
	for i := ptr; i < uintptr(len(a.mem)); i++ {
		if a.mem[i] == 0 {
			return string(a.mem[ptr:i]), true
		}
	}
	return "", false
}

// ReadBytes copies size bytes starting at ptr out of the arena.
func (a *MemAddrSpace) ReadBytes(ptr uintptr, size int) ([]byte, bool) {
	if !a.Valid(ptr, size) {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, a.mem[ptr:int(ptr)+size])
	return out, true
}

// WriteBytes copies data into the arena starting at ptr.
func (a *MemAddrSpace) WriteBytes(ptr uintptr, data []byte) bool {
	if !a.Valid(ptr, len(data)) {
		return false
	}
	copy(a.mem[ptr:], data)
	return true
}

// PutString writes s followed by a NUL terminator at ptr, a test/demo
// convenience for seeding a user-visible string argument.
func (a *MemAddrSpace) PutString(ptr uintptr, s string) {
	copy(a.mem[ptr:], s)
	a.mem[int(ptr)+len(s)] = 0
}
