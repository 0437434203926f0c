package kernel

import (
	"io"
	"os"

	"golang.org/x/term"
)

// TermConsole is the Console backing fd 0/1: reads come from stdin, writes
// go to stdout. When stdin is a terminal it is put in raw mode for the
// lifetime of the console via golang.org/x/term, instead of hand-rolled
// ioctl calls over TCGETS/TCSETS.
type TermConsole struct {
	in       io.Reader
	out      io.Writer
	fd       int
	oldState *term.State
}

// NewTermConsole wires stdin/stdout as the kernel console. If stdin is a
// real terminal, raw mode is entered immediately; Restore must be called
// before the process exits to hand the terminal back in its original
// mode.
func NewTermConsole() (*TermConsole, error) {
	c := &TermConsole{in: os.Stdin, out: os.Stdout, fd: int(os.Stdin.Fd())}
	if term.IsTerminal(c.fd) {
		old, err := term.MakeRaw(c.fd)
		if err != nil {
			return nil, err
		}
		c.oldState = old
	}
	return c, nil
}

// Restore returns the terminal to its pre-raw-mode state. A no-op if
// stdin was never a terminal.
func (c *TermConsole) Restore() error {
	if c.oldState == nil {
		return nil
	}
	return term.Restore(c.fd, c.oldState)
}

// Write implements syscalls.Console, sending data to stdout.
func (c *TermConsole) Write(data []byte) int {
	n, _ := c.out.Write(data)
	return n
}

// Read implements syscalls.Console, filling buf from stdin. Returns the
// number of bytes actually read, 0 on EOF or error.
func (c *TermConsole) Read(buf []byte) int {
	n, err := c.in.Read(buf)
	if err != nil {
		return 0
	}
	return n
}

// NullConsole records writes in Written instead of printing them and never
// yields input, used by demo scenarios that do not need a real terminal.
type NullConsole struct {
	Written []byte
}

func (c *NullConsole) Write(data []byte) int {
	c.Written = append(c.Written, data...)
	return len(data)
}

func (c *NullConsole) Read(buf []byte) int { return 0 }
