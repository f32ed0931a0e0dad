package editor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal handles terminal-specific operations: raw mode, the key decoder
// and the window size queries. Reads and writes go through the in/out fields
// so the rest of the package never touches os.Stdin/os.Stdout directly.
type Terminal struct {
	in            io.Reader
	out           io.Writer
	fd            int
	originalState *unix.Termios
}

// NewTerminal creates a Terminal bound to the process's stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{
		in:  os.Stdin,
		out: os.Stdout,
		fd:  int(os.Stdin.Fd()),
	}
}

// EnableRawMode captures the current terminal attributes and switches the
// terminal into raw mode: no echo, no line buffering, no signal keys, no
// output post-processing. VMIN=0/VTIME=1 makes every read return after at
// most a tenth of a second so the editor can redraw while idle.
func (t *Terminal) EnableRawMode() error {
	if !term.IsTerminal(t.fd) {
		return errors.New("not running in a terminal")
	}

	orig, err := unix.IoctlGetTermios(t.fd, unix.TCGETS)
	if err != nil {
		return errors.New("reading terminal attributes: " + err.Error())
	}
	t.originalState = orig

	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(t.fd, unix.TCSETSF, &raw); err != nil {
		return errors.New("setting terminal attributes: " + err.Error())
	}
	return nil
}

// Restore puts the terminal back into the state captured by EnableRawMode.
// Safe to call more than once; only the first call does anything.
func (t *Terminal) Restore() {
	if t.originalState != nil {
		unix.IoctlSetTermios(t.fd, unix.TCSETSF, t.originalState)
		t.originalState = nil // Prevent multiple restoration attempts
	}
}

// readByte performs one bounded read. ok is false when the read timed out
// (or the input ended) before a byte arrived.
func (t *Terminal) readByte() (byte, bool) {
	buf := make([]byte, 1)
	n, err := t.in.Read(buf)
	if n != 1 || err != nil {
		return 0, false
	}
	return buf[0], true
}

// ReadKey waits (bounded by the raw-mode read timeout) for the next key and
// returns exactly one logical key. A pure timeout yields NO_KEY so the caller
// can redraw without blocking forever. An escape character is resolved into a
// navigation/edit key by consuming up to three continuation bytes; any
// incomplete or unrecognized sequence collapses to a bare escape.
func (t *Terminal) ReadKey() int {
	c, ok := t.readByte()
	if !ok {
		return NO_KEY
	}
	if c != '\x1b' {
		return int(c)
	}

	s0, ok := t.readByte()
	if !ok {
		return '\x1b'
	}
	s1, ok := t.readByte()
	if !ok {
		return '\x1b'
	}

	switch s0 {
	case '[':
		if s1 >= '0' && s1 <= '9' {
			s2, ok := t.readByte()
			if !ok {
				return '\x1b'
			}
			if s2 == '~' {
				switch s1 {
				case '1', '7':
					return HOME_KEY
				case '3':
					return DELETE_KEY
				case '4', '8':
					return END_KEY
				case '5':
					return PAGE_UP
				case '6':
					return PAGE_DOWN
				}
			}
		} else {
			switch s1 {
			case 'A':
				return ARROW_UP
			case 'B':
				return ARROW_DOWN
			case 'C':
				return ARROW_RIGHT
			case 'D':
				return ARROW_LEFT
			case 'H':
				return HOME_KEY
			case 'F':
				return END_KEY
			}
		}
	case 'O':
		switch s1 {
		case 'H':
			return HOME_KEY
		case 'F':
			return END_KEY
		}
	}
	return '\x1b'
}

// WindowSize reports the terminal dimensions in rows and columns. When the
// direct query fails or reports zero columns it falls back to parking the
// cursor at the bottom-right corner and asking the terminal where it ended up.
func (t *Terminal) WindowSize() (int, int, error) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err == nil && cols > 0 {
		return rows, cols, nil
	}
	return t.cursorPosition()
}

// cursorPosition issues a device-status-report query and parses the
// ESC [ rows ; cols R response.
func (t *Terminal) cursorPosition() (int, int, error) {
	if _, err := io.WriteString(t.out, CURSOR_BOTTOM_RIGHT+CURSOR_GET_POSITION); err != nil {
		return 0, 0, err
	}

	resp := make([]byte, 0, 16)
	for {
		c, ok := t.readByte()
		if !ok || c == 'R' {
			break
		}
		resp = append(resp, c)
	}

	var rows, cols int
	if n, _ := fmt.Sscanf(string(resp), CURSOR_RESPONSE_FORMAT, &rows, &cols); n != 2 {
		return 0, 0, errors.New("could not parse cursor position report")
	}
	return rows, cols, nil
}
