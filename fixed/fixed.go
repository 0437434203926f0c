// Package fixed implements signed 17.14 fixed-point arithmetic.
//
// The format is one sign bit, 17 integer bits, and 14 fractional bits,
// stored in a 32-bit word. No floating point is used anywhere in the
// kernel; every MLFQ computation goes through this package.
package fixed

// Fixed is a signed 17.14 fixed-point number.
type Fixed int32

const (
	fracBits = 14
	one      = Fixed(1) << fracBits
)

// FromInt converts an integer to fixed-point.
func FromInt(n int) Fixed {
	return Fixed(n) * one
}

// Add returns f + g.
func (f Fixed) Add(g Fixed) Fixed {
	return f + g
}

// Sub returns f - g.
func (f Fixed) Sub(g Fixed) Fixed {
	return f - g
}

// AddInt returns f + n.
func (f Fixed) AddInt(n int) Fixed {
	return f + Fixed(n)*one
}

// SubInt returns f - n.
func (f Fixed) SubInt(n int) Fixed {
	return f - Fixed(n)*one
}

// MulInt returns f * n.
func (f Fixed) MulInt(n int) Fixed {
	return f * Fixed(n)
}

// DivInt returns f / n.
func (f Fixed) DivInt(n int) Fixed {
	return f / Fixed(n)
}

// Mul returns f * g, computed through a widened 64-bit intermediate.
func (f Fixed) Mul(g Fixed) Fixed {
	return Fixed((int64(f) * int64(g)) / int64(one))
}

// Div returns f / g, computed through a widened 64-bit intermediate.
func (f Fixed) Div(g Fixed) Fixed {
	return Fixed((int64(f) * int64(one)) / int64(g))
}

// RoundToZero truncates toward zero.
func (f Fixed) RoundToZero() int {
	return int(f / one)
}

// RoundNearest rounds to the nearest integer, ties away from zero.
func (f Fixed) RoundNearest() int {
	if f >= 0 {
		return int((f + one/2) / one)
	}
	return int((f - one/2) / one)
}

// String renders the value with three decimal digits, useful for debug logs.
func (f Fixed) String() string {
	n := f.RoundToZero()
	frac := f - FromInt(n)
	if frac < 0 {
		frac = -frac
	}
	milli := (int64(frac) * 1000) / int64(one)
	return itoa(n) + "." + pad3(milli)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [32]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func pad3(n int64) string {
	s := itoa(int(n))
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
