package editor

/*** row operations ***/

// editorRow holds one line of the file plus the form it is drawn in.
// render is always regenerated from chars after a mutation, never patched.
type editorRow struct {
	chars  []byte
	render []byte
}

// renderChars expands tabs into spaces up to the next TAB_STOP boundary and
// copies every other byte through unchanged. This is the single tab-expansion
// routine in the package: full-row rendering and cursor column mapping both
// run it, so the two can never disagree.
func renderChars(chars []byte) []byte {
	tabs := 0
	for _, c := range chars {
		if c == '\t' {
			tabs++
		}
	}

	// Capacity for worst case tab expansion
	render := make([]byte, 0, len(chars)+tabs*(TAB_STOP-1))
	for _, c := range chars {
		if c == '\t' {
			render = append(render, ' ')
			for len(render)%TAB_STOP != 0 {
				render = append(render, ' ')
			}
		} else {
			render = append(render, c)
		}
	}
	return render
}

// update regenerates the rendered form from the raw content.
func (row *editorRow) update() {
	row.render = renderChars(row.chars)
}

// cxToRx converts a raw column to its rendered column by expanding the
// prefix up to cx.
func (row *editorRow) cxToRx(cx int) int {
	return len(renderChars(row.chars[:cx]))
}

func (row *editorRow) insertChar(at int, c byte) {
	if at < 0 || at > len(row.chars) {
		at = len(row.chars)
	}
	row.chars = append(row.chars[:at], append([]byte{c}, row.chars[at:]...)...)
	row.update()
}

func (row *editorRow) deleteChar(at int) {
	if at < 0 || at >= len(row.chars) {
		return
	}
	row.chars = append(row.chars[:at], row.chars[at+1:]...)
	row.update()
}

func (row *editorRow) appendBytes(s []byte) {
	row.chars = append(row.chars, s...)
	row.update()
}
