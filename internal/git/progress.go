package git

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ProgressFunc receives progress updates from remote operations. total is
// zero when the remote does not announce one.
type ProgressFunc func(phase string, current, total int)

var (
	percentLine = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z ]*):\s+\d+%\s+\((\d+)/(\d+)\)`)
	countLine   = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z ]*):\s+(\d+)`)
)

// progressWriter turns the sideband text stream of a fetch into ProgressFunc calls.
type progressWriter struct {
	mu  sync.Mutex
	fn  ProgressFunc
	buf bytes.Buffer
}

// NewProgressWriter adapts fn to the io.Writer go-git reports progress to.
// A nil fn yields nil so that progress reporting stays disabled.
func NewProgressWriter(fn ProgressFunc) io.Writer {
	if fn == nil {
		return nil
	}
	return &progressWriter{fn: fn}
}

// Write buffers partial lines; git terminates in-place updates with '\r'.
func (w *progressWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		idx := bytes.IndexAny(data, "\r\n")
		if idx < 0 {
			break
		}
		line := string(data[:idx])
		w.buf.Next(idx + 1)
		w.report(line)
	}
	return len(p), nil
}

func (w *progressWriter) report(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if m := percentLine.FindStringSubmatch(line); m != nil {
		current, _ := strconv.Atoi(m[2])
		total, _ := strconv.Atoi(m[3])
		w.fn(strings.TrimSpace(m[1]), current, total)
		return
	}
	if m := countLine.FindStringSubmatch(line); m != nil {
		current, _ := strconv.Atoi(m[2])
		w.fn(strings.TrimSpace(m[1]), current, 0)
	}
}
