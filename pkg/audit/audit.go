package audit

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level classifies an audit entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one request/response observation. Status 0, empty headers and
// empty payload render as UNKNOWN / N/A.
type Entry struct {
	Level     Level
	Message   string
	Method    string
	URL       string
	Status    int
	RequestID string
	Headers   map[string][]string
	Payload   string
}

// Logger appends one formatted entry per event to a file named by the
// current UTC date inside the configured directory. Appends happen off the
// request path; write failures are reported to the process log and
// swallowed, never failing a request.
type Logger struct {
	dir string
	mu  sync.Mutex
	wg  sync.WaitGroup
}

// New creates the log directory if absent and returns a Logger for it.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &Logger{dir: dir}, nil
}

// Record appends the entry asynchronously; callers never wait on the write.
func (l *Logger) Record(e Entry) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.write(e)
	}()
}

// Flush blocks until all pending writes have completed. Used on shutdown
// and in tests.
func (l *Logger) Flush() {
	l.wg.Wait()
}

func (l *Logger) write(e Entry) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s [%s]\n", time.Now().UTC().Format(time.RFC3339), e.Level)
	fmt.Fprintf(&b, "Method: %s\n", orUnknown(e.Method))
	fmt.Fprintf(&b, "URL: %s\n", orUnknown(e.URL))
	if e.Status > 0 {
		fmt.Fprintf(&b, "Status: %d\n", e.Status)
	} else {
		b.WriteString("Status: UNKNOWN\n")
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, "RequestID: %s\n", e.RequestID)
	}
	if len(e.Headers) > 0 {
		names := make([]string, 0, len(e.Headers))
		for name := range e.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Headers:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(e.Headers[name], ", "))
		}
	}
	if e.Payload != "" {
		fmt.Fprintf(&b, "Payload: %s\n", e.Payload)
	} else {
		b.WriteString("Payload: N/A\n")
	}
	fmt.Fprintf(&b, "Response: %s\n", e.Message)

	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, time.Now().UTC().Format("2006-01-02")+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Failed to open audit log %s: %v", path, err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		log.Printf("Failed to write audit log: %v", err)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
