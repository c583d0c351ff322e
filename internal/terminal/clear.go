// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides helpers for interactive terminal input and
// redrawing: password prompts without echo and clearing printed lines.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of stdout, or 80 when unknown.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// ReadPassword prints prompt and reads a line from in without echo when in is
// a terminal. Non-terminal input (pipes, tests) is read as a plain line.
func ReadPassword(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if IsInteractive(in) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return ReadLine(in)
}

// ReadLine reads one line from r without the trailing newline. It reads a
// byte at a time so that nothing past the newline is consumed from r.
func ReadLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err == io.EOF {
			if sb.Len() == 0 {
				return "", err
			}
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\r"), nil
}

// ClearPreviousLines clears text from the terminal that was previously printed.
// It calculates how many lines were used by the provided text based on the current
// terminal width, then moves up and clears each line. One extra line accounts
// for the newline entered by the user.
func ClearPreviousLines(textLength int) {
	totalLines := int(math.Ceil(float64(textLength) / float64(Width())))
	if totalLines < 1 {
		totalLines = 1
	}

	linesToClear := totalLines + 1
	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K") // Move to start and clear entire line
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A") // Move up one line
		}
	}
}
