package bootstrap

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Tee duplicates everything written through it to a terminal writer
// and a log file. All writes go through one mutex, so handing the same
// *Tee to a process's stdout and stderr preserves emission order and
// keeps the log file byte-identical to the combined stream.
type Tee struct {
	mu       sync.Mutex
	terminal io.Writer
	log      *os.File

	warnedLogBroken bool
}

func NewTee(terminal io.Writer, logPath string) (*Tee, error) {
	log, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &Tee{terminal: terminal, log: log}, nil
}

func (t *Tee) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.terminal.Write(p)
	if err != nil {
		return n, err
	}

	// a broken log file must not take the supervised process down with it
	_, err = t.log.Write(p)
	if err != nil && !t.warnedLogBroken {
		t.warnedLogBroken = true
		slog.Warn("failed to write to log file", "path", t.log.Name(), "err", err)
	}
	return n, nil
}

func (t *Tee) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.log.Close()
}
