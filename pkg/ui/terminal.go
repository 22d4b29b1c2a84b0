package ui

import (
	"fmt"
	"io"
)

// ASCIILogo is printed at the top of console runs
const ASCIILogo = `
 ___      ___                  _              _
| _ ) ___|   \ _____ __ ___ _ | |___  __ _ __| |___ _ _
| _ \/ -_) |) / _ \ V  V / ' \| / _ \/ _' / _' / -_) '_|
|___/\___|___/\___/\_/\_/|_||_|_\___/\__,_\__,_\___|_|
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo(w io.Writer) {
	fmt.Fprint(w, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(w io.Writer, msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(w, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(w, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(w io.Writer, label string, value string) {
	fmt.Fprintf(w, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(w io.Writer, msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(w, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(w, Yellow(msg))
	}
}
