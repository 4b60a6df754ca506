package reporter

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI escape codes for text output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGray  = "\033[37m"
	colorBold  = "\033[1m"
)

// isTTY returns true if the writer is a terminal and NO_COLOR is unset.
func isTTY(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
