// Package logging opens the channel every sampled record goes through: the
// local syslog daemon (facility daemon) when detached, or the invoking
// terminal in foreground mode. Records are rendered by tint in both cases.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Options configures Open.
type Options struct {
	Tag        string    // syslog tag, normally the program name
	Foreground bool      // log to Stderr instead of syslog
	Verbose    int       // 1 or more enables debug records
	Stderr     io.Writer // foreground destination, defaults to os.Stderr
}

// Level maps a verbosity count to the minimum slog level.
func (o Options) Level() slog.Level {
	if o.Verbose > 0 {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// syslogWriter is the subset of *syslog.Writer used by the channel.
type syslogWriter interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
	Close() error
}

// dialSyslog opens the daemon-facility syslog connection. Go's log/syslog
// always prefixes the pid and dials on construction, matching
// LOG_PID|LOG_NDELAY.
var dialSyslog = func(tag string) (syslogWriter, error) {
	return syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, tag)
}

// Channel is an opened logging channel.
type Channel struct {
	logger    *slog.Logger
	closer    io.Closer
	closeOnce sync.Once
	closeErr  error
}

// Open creates the logging channel described by opts.
func Open(opts Options) (*Channel, error) {
	if opts.Foreground {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		handler := tint.NewHandler(w, &tint.Options{
			Level:      opts.Level(),
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		})
		return &Channel{logger: slog.New(handler)}, nil
	}

	w, err := dialSyslog(opts.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to open syslog: %w", err)
	}
	return &Channel{
		logger: slog.New(newSyslogHandler(w, opts.Level())),
		closer: w,
	}, nil
}

// Logger returns the channel's logger.
func (c *Channel) Logger() *slog.Logger {
	return c.logger
}

// SetDefault installs the channel's logger as the slog default.
func (c *Channel) SetDefault() {
	slog.SetDefault(c.logger)
}

// Close releases the underlying connection. It is safe to call more than once.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		if c.closer != nil {
			c.closeErr = c.closer.Close()
		}
	})
	return c.closeErr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// prioritySink receives one rendered record per Write and forwards it to
// syslog at the priority of the record being handled.
type prioritySink struct {
	mu    sync.Mutex
	w     syslogWriter
	level slog.Level
}

func (s *prioritySink) Write(p []byte) (int, error) {
	m := string(p)
	var err error
	switch {
	case s.level >= slog.LevelError:
		err = s.w.Err(m)
	case s.level >= slog.LevelWarn:
		err = s.w.Warning(m)
	case s.level >= slog.LevelInfo:
		err = s.w.Info(m)
	default:
		err = s.w.Debug(m)
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// syslogHandler renders with tint and routes by level. Syslog stamps its own
// time and priority, so both are dropped from the rendered text.
type syslogHandler struct {
	inner slog.Handler
	sink  *prioritySink
}

func newSyslogHandler(w syslogWriter, level slog.Level) *syslogHandler {
	sink := &prioritySink{w: w}
	return &syslogHandler{
		inner: tint.NewHandler(sink, &tint.Options{
			Level:   level,
			NoColor: true,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
					return slog.Attr{}
				}
				return a
			},
		}),
		sink: sink,
	}
}

func (h *syslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *syslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.level = r.Level
	return h.inner.Handle(ctx, r)
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syslogHandler{inner: h.inner.WithAttrs(attrs), sink: h.sink}
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	return &syslogHandler{inner: h.inner.WithGroup(name), sink: h.sink}
}
