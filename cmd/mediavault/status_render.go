package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// statusKind selects the color used for a line of `mediavault status`
// output. Info lines stay uncolored.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusColors = map[statusKind]string{
	statusOK:    "\x1b[32m",
	statusWarn:  "\x1b[33m",
	statusError: "\x1b[31m",
}

const headerColor = "\x1b[34m"

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	line := fmt.Sprintf("  %-14s %s", label+":", message)
	if colorize {
		if color, ok := statusColors[kind]; ok {
			return color + line + ansiReset
		}
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(line))
	if !colorize {
		return []string{line, rule}
	}
	return []string{headerColor + line + ansiReset, headerColor + rule + ansiReset}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
