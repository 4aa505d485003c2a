// Package log writes sbin's debug log.
//
// Logging is off until Init is called, which cmd does for --debug or
// SBIN_DEBUG. Every line is also published on a broker so in-process
// listeners can follow the log; Mirror uses it to echo lines to stderr.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/sbin/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatConfig   Category = "config"   // config file discovery and validation
	CatRegistry Category = "registry" // catalog loading and registration
	CatDispatch Category = "dispatch" // pipeline runs
	CatResolver Category = "resolver" // program resolution
	CatWatcher  Category = "watcher"
	CatUI       Category = "ui"
	CatCache    Category = "cache"
)

type logger struct {
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	mu      sync.RWMutex
	current *logger
)

// Init opens path for appending and starts logging to it. The returned
// function stops logging and closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // G304: debug log path comes from the user
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return install(f, f), nil
}

// InitWriter starts logging to w. The returned function stops logging.
func InitWriter(w io.Writer) func() {
	return install(w, nil)
}

func install(w io.Writer, c io.Closer) func() {
	l := &logger{out: w, closer: c, minLevel: LevelDebug, broker: pubsub.NewBroker[string]()}

	mu.Lock()
	prev := current
	current = l
	mu.Unlock()
	if prev != nil {
		prev.close()
	}

	return func() {
		mu.Lock()
		if current == l {
			current = nil
		}
		mu.Unlock()
		l.close()
	}
}

func (l *logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.broker.Close()
	if l.closer != nil {
		_ = l.closer.Close()
		l.closer = nil
	}
	l.out = nil
}

// Enabled reports whether a logger is installed.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return current != nil
}

// SetMinLevel drops messages below level.
func SetMinLevel(level Level) {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l == nil {
		return
	}
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

// Format renders one log line without the trailing newline:
//
//	2026-01-02T15:04:05 [WARN] [dispatch] Stage failed to start program=ebin/who
func Format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	return b.String()
}

func write(level Level, cat Category, msg string, fields ...any) {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel || l.out == nil {
		return
	}

	line := Format(time.Now(), level, cat, msg, fields...)
	_, _ = io.WriteString(l.out, line+"\n")
	l.broker.Publish(pubsub.LoggedEvent, line)
}

// Subscribe returns a channel of log lines until ctx is done. It returns nil
// when logging is disabled.
func Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l == nil {
		return nil
	}
	return l.broker.Subscribe(ctx)
}

// Mirror copies every later log line to w until logging stops. The returned
// function blocks until the last line has been written. Lines are dropped
// rather than stalling the logger when w falls behind.
func Mirror(w io.Writer) func() {
	ch := Subscribe(context.Background())
	if ch == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range ch {
			_, _ = io.WriteString(w, event.Payload+"\n")
		}
	}()
	return func() { <-done }
}
