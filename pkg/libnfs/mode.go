package libnfs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mode is a parsed open mode string.
type Mode struct {
	// Flags are the open flags passed to the remote open.
	Flags int
	// Binary suppresses text decoding.
	Binary bool
}

// Writing reports whether the mode allows writes.
func (m Mode) Writing() bool {
	return m.Flags&(unix.O_WRONLY|unix.O_RDWR) != 0
}

// Create reports whether a missing file is created.
func (m Mode) Create() bool {
	return m.Flags&unix.O_CREAT != 0
}

// ParseMode parses a mode string made of exactly one of "r", "w" or "a",
// optionally "+" and optionally "b", in any order.
//
//	r   read only
//	w   write only, create and truncate
//	a   write only, create and append
//	+   read and write
//	b   binary, no text decoding
func ParseMode(mode string) (Mode, error) {
	var (
		base      rune
		plus, bin bool
		m         Mode
	)
	for _, c := range mode {
		switch c {
		case 'r', 'w', 'a':
			if base != 0 {
				return Mode{}, fmt.Errorf("invalid mode %q: must have exactly one of r/w/a", mode)
			}
			base = c
		case '+':
			if plus {
				return Mode{}, fmt.Errorf("invalid mode %q: repeated +", mode)
			}
			plus = true
		case 'b':
			if bin {
				return Mode{}, fmt.Errorf("invalid mode %q: repeated b", mode)
			}
			bin = true
		default:
			return Mode{}, fmt.Errorf("invalid mode %q: unknown character %q", mode, c)
		}
	}
	if base == 0 {
		return Mode{}, fmt.Errorf("invalid mode %q: must have exactly one of r/w/a", mode)
	}

	switch {
	case plus:
		m.Flags = unix.O_RDWR
	case base == 'r':
		m.Flags = unix.O_RDONLY
	default:
		m.Flags = unix.O_WRONLY
	}
	switch base {
	case 'w':
		m.Flags |= unix.O_CREAT | unix.O_TRUNC
	case 'a':
		m.Flags |= unix.O_CREAT | unix.O_APPEND
	}
	m.Binary = bin
	return m, nil
}
