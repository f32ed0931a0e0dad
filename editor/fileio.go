package editor

import (
	"bufio"
	"fmt"
	"os"
)

/*** file i/o ***/

// RowsToString joins every row with a single newline and appends one trailing
// newline, regardless of how the source file ended.
func (e *Editor) RowsToString() []byte {
	totalLen := 0
	for _, row := range e.row {
		totalLen += len(row.chars) + 1
	}

	buf := make([]byte, 0, totalLen)
	for _, row := range e.row {
		buf = append(buf, row.chars...)
		buf = append(buf, '\n')
	}
	return buf
}

// Open loads filename line by line, one row per input line in original order,
// stripping the trailing newline and carriage return.
func (e *Editor) Open(filename string) error {
	e.filename = filename
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open file '%s': %v", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		e.InsertRow(len(e.row), line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading '%s': %v", filename, err)
	}

	e.dirty = 0
	return nil
}

// Save writes the buffer to the current filename, prompting for one first if
// the buffer is unnamed. The target is truncated to the exact new length and
// overwritten in place. Failures surface on the status bar and leave the
// editor running.
func (e *Editor) Save() {
	if e.filename == "" {
		name, ok := e.Prompt("Save as: %s (ESC to cancel)")
		if !ok {
			e.SetStatusMessage("Save aborted")
			return
		}
		e.filename = name
	}

	buf := e.RowsToString()

	file, err := os.OpenFile(e.filename, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		e.SetStatusMessage("Can't save! I/O error: %v", err)
		return
	}
	defer file.Close()

	if err := file.Truncate(int64(len(buf))); err != nil {
		e.SetStatusMessage("Can't save! I/O error: %v", err)
		return
	}

	n, err := file.Write(buf)
	if err != nil {
		e.SetStatusMessage("Can't save! I/O error: %v", err)
		return
	}
	if n != len(buf) {
		e.SetStatusMessage("Can't save! Partial write: %d/%d bytes", n, len(buf))
		return
	}

	e.SetStatusMessage("%d bytes written to disk", len(buf))
	e.dirty = 0
}
