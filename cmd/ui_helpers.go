// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"

	"arcadedb/cli/internal/terminal"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The returned function stops the spinner and
// clears its line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	cursor.Hide()
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

// withSpinner runs fn while a spinner shows text on stderr. The spinner is only
// drawn on a terminal so redirected output stays clean.
func withSpinner(text string, fn func() error) error {
	if !terminal.IsInteractive(os.Stderr) || flagVerbose {
		return fn()
	}
	stop := startInlineSpinner(os.Stderr, text, spinnerFrames, 100*time.Millisecond)
	defer stop()
	return fn()
}
