package main

import (
	"os"

	"github.com/jotedit/jot/editor"
)

func main() {
	e := editor.NewEditor()

	if err := e.EnableRawMode(); err != nil {
		e.Die("%v", err)
	}
	defer e.RestoreTerminal()

	if err := e.Init(); err != nil {
		e.Die("%v", err)
	}

	if len(os.Args) > 1 {
		if err := e.Open(os.Args[1]); err != nil {
			e.Die("%v", err)
		}
	}

	e.SetStatusMessage("HELP: Ctrl-S = save | Ctrl-Q = quit")

	for {
		e.RefreshScreen()
		if e.ProcessKeypress() {
			break
		}
	}

	e.RestoreTerminal()
	os.Stdout.WriteString(editor.CLEAR_SCREEN)
	os.Stdout.WriteString(editor.CURSOR_HOME)
}
