package editor

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-runewidth"
)

/*** helper ***/

// Config Constants
const (
	JOT_VERSION     = "0.1.0"
	TAB_STOP        = 8
	QUIT_TIMES      = 3
	MESSAGE_TIMEOUT = 5 * time.Second
)

// Key aliases
const (
	NO_KEY     = 0   // bounded read timed out, nothing was pressed
	BACKSPACE  = 127 // ASCII backspace
	ARROW_LEFT = iota + 1000
	ARROW_RIGHT
	ARROW_UP
	ARROW_DOWN
	DELETE_KEY
	HOME_KEY
	END_KEY
	PAGE_UP
	PAGE_DOWN
)

// Check if the byte is a control character
func isControl(c byte) bool {
	return c < 32 || c == 127
}

// Convert a character to its control key equivalent
func withControlKey(c int) int {
	return c & 0x1f
}

/*** data ***/

// statusMessage keeps the format string and its arguments; the text is only
// built when the message bar is drawn.
type statusMessage struct {
	format string
	args   []any
	time   time.Time
}

func (m statusMessage) text() string {
	if m.format == "" {
		return ""
	}
	return fmt.Sprintf(m.format, m.args...)
}

// Editor represents the text editor state
type Editor struct {
	cx, cy     int
	rx         int
	rowOffset  int
	colOffset  int
	screenRows int
	screenCols int
	row        []editorRow
	dirty      int // captures if and how much edits are made
	filename   string
	status     statusMessage
	quitTimes  int
	term       *Terminal
}

// NewEditor creates a new Editor bound to the process terminal.
func NewEditor() *Editor {
	return &Editor{
		term:      NewTerminal(),
		quitTimes: QUIT_TIMES,
	}
}

/*** terminal ***/

// Die restores the terminal, clears the screen, prints the error to stderr
// and terminates the process with a non-zero status.
func (e *Editor) Die(format string, args ...any) {
	e.term.Restore()
	os.Stdout.WriteString(CLEAR_SCREEN)
	os.Stdout.WriteString(CURSOR_HOME)
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// EnableRawMode switches the terminal into raw mode.
func (e *Editor) EnableRawMode() error {
	return e.term.EnableRawMode()
}

// RestoreTerminal undoes EnableRawMode. Safe to call more than once.
func (e *Editor) RestoreTerminal() {
	e.term.Restore()
}

// Init queries the window size and reserves the two bottom lines for the
// status bar and the message bar.
func (e *Editor) Init() error {
	rows, cols, err := e.term.WindowSize()
	if err != nil {
		return errors.New("getting window size: " + err.Error())
	}
	e.screenRows = rows - 2
	e.screenCols = cols
	return nil
}

// Resize re-queries the window size, e.g. after the terminal was resized.
func (e *Editor) Resize() {
	if err := e.Init(); err != nil {
		e.SetStatusMessage("Warn: %v", err)
	}
}

/*** buffer operations ***/

// InsertRow inserts a new row holding a copy of s at index at, which must lie
// in [0, rowCount].
func (e *Editor) InsertRow(at int, s []byte) {
	if at < 0 || at > len(e.row) {
		return
	}

	newRow := editorRow{chars: append([]byte(nil), s...)}
	newRow.update()

	e.row = append(e.row[:at], append([]editorRow{newRow}, e.row[at:]...)...)
	e.dirty++
}

// DeleteRow removes the row at index at.
func (e *Editor) DeleteRow(at int) {
	if at < 0 || at >= len(e.row) {
		return
	}
	e.row = append(e.row[:at], e.row[at+1:]...)
	e.dirty++
}

/*** editor operations ***/

// InsertChar inserts c at the cursor, creating an empty row first when the
// cursor sits one past the end of the buffer.
func (e *Editor) InsertChar(c byte) {
	if e.cy == len(e.row) {
		e.InsertRow(len(e.row), nil)
	}
	e.row[e.cy].insertChar(e.cx, c)
	e.dirty++
	e.cx++
}

// InsertNewline splits the current row at the cursor and moves the cursor to
// the start of the new row.
func (e *Editor) InsertNewline() {
	if e.cx == 0 {
		e.InsertRow(e.cy, nil)
	} else {
		row := &e.row[e.cy]
		suffix := append([]byte(nil), row.chars[e.cx:]...)
		e.InsertRow(e.cy+1, suffix)

		// InsertRow may have reallocated the backing array
		row = &e.row[e.cy]
		row.chars = row.chars[:e.cx]
		row.update()
	}
	e.cy++
	e.cx = 0
}

// DeleteChar removes the character left of the cursor. At column 0 the row is
// joined onto the previous one and the cursor lands on the former seam.
func (e *Editor) DeleteChar() {
	if e.cy == len(e.row) {
		return
	}
	if e.cx == 0 && e.cy == 0 {
		return
	}

	row := &e.row[e.cy]
	if e.cx > 0 {
		row.deleteChar(e.cx - 1)
		e.dirty++
		e.cx--
	} else {
		e.cx = len(e.row[e.cy-1].chars)
		e.row[e.cy-1].appendBytes(row.chars)
		e.dirty++
		e.DeleteRow(e.cy)
		e.cy--
	}
}

/*** append buffer ***/

type appendBuffer struct {
	b []byte
}

func (ab *appendBuffer) append(s []byte) {
	ab.b = append(ab.b, s...)
}

func (ab *appendBuffer) appendString(s string) {
	ab.b = append(ab.b, s...)
}

/*** output ***/

// Scroll recomputes the rendered cursor column and tightens the scroll
// offsets just enough to keep the cursor inside the visible window.
func (e *Editor) Scroll() {
	e.rx = 0
	if e.cy < len(e.row) {
		e.rx = e.row[e.cy].cxToRx(e.cx)
	}

	if e.cy < e.rowOffset {
		e.rowOffset = e.cy
	}
	if e.cy >= e.rowOffset+e.screenRows {
		e.rowOffset = e.cy - e.screenRows + 1
	}

	if e.rx < e.colOffset {
		e.colOffset = e.rx
	}
	if e.rx >= e.colOffset+e.screenCols {
		e.colOffset = e.rx - e.screenCols + 1
	}
}

func (e *Editor) DrawRows(abuf *appendBuffer) {
	for y := 0; y < e.screenRows; y++ {
		filerow := y + e.rowOffset
		if filerow >= len(e.row) {
			if len(e.row) == 0 && y == e.screenRows/3 {
				welcome := runewidth.Truncate("Jot editor -- version "+JOT_VERSION, e.screenCols, "")
				padding := (e.screenCols - runewidth.StringWidth(welcome)) / 2
				if padding > 0 {
					abuf.appendString("~")
					padding--
				}
				for ; padding > 0; padding-- {
					abuf.appendString(" ")
				}
				abuf.appendString(welcome)
			} else {
				abuf.appendString("~")
			}
		} else {
			render := e.row[filerow].render
			lineLen := min(max(len(render)-e.colOffset, 0), e.screenCols)
			if lineLen > 0 {
				abuf.append(render[e.colOffset : e.colOffset+lineLen])
			}
		}

		abuf.appendString(CLEAR_LINE)
		abuf.appendString("\r\n")
	}
}

func (e *Editor) DrawStatusBar(abuf *appendBuffer) {
	abuf.appendString(COLORS_INVERT)

	filename := "[No Name]"
	if e.filename != "" {
		filename = runewidth.Truncate(e.filename, 20, "")
	}
	dirtyFlag := ""
	if e.dirty > 0 {
		dirtyFlag = " (modified)"
	}
	status := runewidth.Truncate(fmt.Sprintf("%s - %d lines%s", filename, len(e.row), dirtyFlag), e.screenCols, "")
	statusLen := runewidth.StringWidth(status)

	rstatus := fmt.Sprintf("%d/%d", e.cy+1, len(e.row))
	rstatusLen := runewidth.StringWidth(rstatus)

	abuf.appendString(status)
	for statusLen < e.screenCols {
		if e.screenCols-statusLen == rstatusLen {
			abuf.appendString(rstatus)
			break
		}
		abuf.appendString(" ")
		statusLen++
	}

	abuf.appendString(COLORS_RESET)
	abuf.appendString("\r\n")
}

func (e *Editor) DrawMessageBar(abuf *appendBuffer) {
	abuf.appendString(CLEAR_LINE)
	if time.Since(e.status.time) < MESSAGE_TIMEOUT {
		abuf.appendString(runewidth.Truncate(e.status.text(), e.screenCols, ""))
	}
}

// RefreshScreen composes one full frame into a single buffer and flushes it
// with one write so the terminal never shows a half-drawn screen.
func (e *Editor) RefreshScreen() {
	e.Scroll()

	var abuf appendBuffer

	abuf.appendString(CURSOR_HIDE)
	abuf.appendString(CURSOR_HOME)

	e.DrawRows(&abuf)
	e.DrawStatusBar(&abuf)
	e.DrawMessageBar(&abuf)

	abuf.append(fmt.Appendf(nil, CURSOR_POSITION_FORMAT, e.cy-e.rowOffset+1, e.rx-e.colOffset+1))
	abuf.appendString(CURSOR_SHOW)

	e.term.out.Write(abuf.b)
}

// SetStatusMessage records a transient message for the message bar. The text
// is formatted at draw time and expires after MESSAGE_TIMEOUT.
func (e *Editor) SetStatusMessage(format string, args ...any) {
	e.status = statusMessage{format: format, args: args, time: time.Now()}
}

/*** input ***/

// Prompt asks the user for a line of input in the message bar. The template
// must contain one %s verb that echoes the input typed so far. The second
// return value is false when the prompt was cancelled with escape, which is
// distinct from any committed value.
func (e *Editor) Prompt(prompt string) (string, bool) {
	buf := make([]byte, 0, 128)

	for {
		e.SetStatusMessage(prompt, string(buf))
		e.RefreshScreen()

		key := e.term.ReadKey()
		switch {
		case key == DELETE_KEY || key == BACKSPACE || key == withControlKey('h'):
			if len(buf) != 0 {
				buf = buf[:len(buf)-1]
			}

		case key == '\x1b':
			e.SetStatusMessage("")
			return "", false

		case key == '\r':
			if len(buf) != 0 {
				e.SetStatusMessage("")
				return string(buf), true
			}

		case key != NO_KEY && key < 128 && !isControl(byte(key)):
			buf = append(buf, byte(key))
		}
	}
}

// MoveCursor applies one arrow-key step, wrapping across line boundaries and
// snapping the column to the end of a shorter target row.
func (e *Editor) MoveCursor(key int) {
	var row *editorRow
	if e.cy < len(e.row) {
		row = &e.row[e.cy]
	}

	switch key {
	case ARROW_LEFT:
		if e.cx != 0 {
			e.cx--
		} else if e.cy > 0 {
			e.cy--
			e.cx = len(e.row[e.cy].chars)
		}
	case ARROW_RIGHT:
		if row != nil && e.cx < len(row.chars) {
			e.cx++
		} else if row != nil && e.cx == len(row.chars) {
			e.cy++
			e.cx = 0
		}
	case ARROW_UP:
		if e.cy != 0 {
			e.cy--
		}
	case ARROW_DOWN:
		if e.cy < len(e.row) {
			e.cy++
		}
	}

	rowlen := 0
	if e.cy < len(e.row) {
		rowlen = len(e.row[e.cy].chars)
	}
	if e.cx > rowlen {
		e.cx = rowlen
	}
}

// ProcessKeypress reads one key and applies it to the editor state. It
// returns true when the editor should quit. A dirty buffer needs QUIT_TIMES
// consecutive quit presses; any other keypress resets the countdown, a read
// timeout does not.
func (e *Editor) ProcessKeypress() bool {
	key := e.term.ReadKey()

	switch key {
	case NO_KEY:
		// Timeout: the caller redraws, e.g. to expire a status message
		return false

	case '\r':
		e.InsertNewline()

	case withControlKey('q'):
		if e.dirty > 0 {
			e.quitTimes--
			if e.quitTimes > 0 {
				e.SetStatusMessage("WARNING!!! File has unsaved changes. Press Ctrl-Q %d more times to quit.", e.quitTimes)
				return false
			}
		}
		return true

	case withControlKey('s'):
		e.Save()

	case withControlKey('l'):
		e.Resize()

	case HOME_KEY:
		e.cx = 0

	case END_KEY:
		if e.cy < len(e.row) {
			e.cx = len(e.row[e.cy].chars)
		}

	case BACKSPACE, withControlKey('h'):
		e.DeleteChar()

	case DELETE_KEY:
		// Delete is a right step followed by a backspace
		e.MoveCursor(ARROW_RIGHT)
		e.DeleteChar()

	case PAGE_UP:
		e.cy = e.rowOffset
		for i := 0; i < e.screenRows; i++ {
			e.MoveCursor(ARROW_UP)
		}

	case PAGE_DOWN:
		e.cy = min(e.rowOffset+e.screenRows-1, len(e.row))
		for i := 0; i < e.screenRows; i++ {
			e.MoveCursor(ARROW_DOWN)
		}

	case ARROW_LEFT, ARROW_RIGHT, ARROW_UP, ARROW_DOWN:
		e.MoveCursor(key)

	case '\x1b':
		// Bare escape, nothing to do

	default:
		e.InsertChar(byte(key))
	}

	e.quitTimes = QUIT_TIMES
	return false
}
