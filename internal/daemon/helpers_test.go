package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sys/unix"
)

type logRecord struct {
	level   slog.Level
	message string
	attrs   map[string]string
}

// recorder is a slog.Handler that keeps every record for inspection.
type recorder struct {
	mu      sync.Mutex
	records []logRecord
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string)
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, logRecord{level: rec.Level, message: rec.Message, attrs: attrs})
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func (r *recorder) all() []logRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]logRecord(nil), r.records...)
}

func (r *recorder) find(prefix string) (logRecord, bool) {
	for _, rec := range r.all() {
		if strings.HasPrefix(rec.message, prefix) {
			return rec, true
		}
	}
	return logRecord{}, false
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, rec := range r.all() {
		if strings.HasPrefix(rec.message, prefix) {
			n++
		}
	}
	return n
}

func newRecorder(t *testing.T) (*recorder, *slog.Logger) {
	t.Helper()
	rec := &recorder{}
	return rec, slog.New(rec)
}

// fakeChannel is a logging channel backed by a recorder.
type fakeChannel struct {
	logger *slog.Logger
	mu     sync.Mutex
	closed int
}

func (c *fakeChannel) Logger() *slog.Logger { return c.logger }

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeChannel) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeSystem records process-level calls instead of making them.
type fakeSystem struct {
	pid       int
	sid       int
	getsidErr error
	setsidErr error
	chdirErr  error
	stdioErr  error

	calls []string
}

func (s *fakeSystem) Getpid() int {
	s.calls = append(s.calls, "getpid")
	return s.pid
}

func (s *fakeSystem) Getsid(pid int) (int, error) {
	s.calls = append(s.calls, fmt.Sprintf("getsid %d", pid))
	return s.sid, s.getsidErr
}

func (s *fakeSystem) Setsid() (int, error) {
	s.calls = append(s.calls, "setsid")
	if s.setsidErr != nil {
		return -1, s.setsidErr
	}
	s.sid = s.pid
	return s.pid, nil
}

func (s *fakeSystem) Umask(mask int) int {
	s.calls = append(s.calls, fmt.Sprintf("umask %o", mask))
	return 0o022
}

func (s *fakeSystem) Chdir(dir string) error {
	s.calls = append(s.calls, "chdir "+dir)
	return s.chdirErr
}

func (s *fakeSystem) CloseStdio() error {
	s.calls = append(s.calls, "close stdio")
	return s.stdioErr
}

var errPermission = unix.EACCES
