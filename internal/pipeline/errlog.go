package pipeline

import (
	"fmt"
	"os"
	"time"
)

// ErrorLedger appends per-document failure entries to a plain-text file so a
// batch run leaves an inspectable trail of which files were skipped and why.
type ErrorLedger struct {
	path string
}

// NewErrorLedger returns a ledger writing to path. An empty path disables
// recording.
func NewErrorLedger(path string) *ErrorLedger {
	return &ErrorLedger{path: path}
}

// Record appends one entry for filename. Recording failures are swallowed:
// the error ledger must never take down the batch it exists to describe.
func (e *ErrorLedger) Record(filename, message string) {
	if e.path == "" {
		return
	}

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] %s: %s\n", timestamp, filename, message)
}
