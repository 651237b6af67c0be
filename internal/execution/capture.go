// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const captureChannelBuffer = 64

// forwardOutput fans out the child's stdout and stderr: two reader goroutines
// turn each stream into tagged lines, and one multiplexer goroutine writes
// every line to the output file (flushed per line, so a crash mid-run leaves
// a usable log) and to the shared ring buffer. The returned channel is closed
// once both readers hit EOF and the multiplexer has drained and closed the
// file.
func forwardOutput(stdout, stderr io.ReadCloser, recentLogs *SharedLogBuffer, outputFile afero.File) <-chan struct{} {
	lines := make(chan OutputLine, captureChannelBuffer)

	var readers sync.WaitGroup

	readers.Add(2)

	go readStream(stdout, OutputStdout, lines, &readers)
	go readStream(stderr, OutputStderr, lines, &readers)

	go func() {
		readers.Wait()
		close(lines)
	}()

	done := make(chan struct{})

	go func() {
		defer close(done)
		defer outputFile.Close() //nolint:errcheck

		w := bufio.NewWriter(outputFile)

		for line := range lines {
			_, _ = w.WriteString(line.Text)
			_ = w.Flush()

			recentLogs.Push(line)
		}
	}()

	return done
}

// readStream forwards one stream line by line until EOF. Lines keep their
// trailing newline so the output file reproduces the stream byte-for-byte.
func readStream(r io.ReadCloser, kind OutputKind, out chan<- OutputLine, wg *sync.WaitGroup) {
	defer wg.Done()
	defer r.Close() //nolint:errcheck

	br := bufio.NewReader(r)

	for {
		text, err := br.ReadString('\n')
		if text != "" {
			out <- OutputLine{
				Text:      text,
				Kind:      kind,
				Timestamp: time.Now(),
			}
		}

		if err != nil {
			return
		}
	}
}
