// Package console provides a dependency-free logger provider that writes one
// key=value line per entry, with page and partial fields first so lint
// output stays readable in a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Level is the severity of an entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "FTL"}

// String returns the three letter tag printed for the level.
func (l Level) String() string {
	if int(l) < len(levelTags) {
		return levelTags[l]
	}
	return "INF"
}

// ParseLevel maps a configuration level name onto a Level. An empty name is
// info; unknown names report false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// pinnedKeys are printed first, in this order, when present.
var pinnedKeys = []string{"page_path", "version", "action", "partial"}

// Options configures the provider. Zero values write to stdout from DEBUG up.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

type provider struct {
	mu       sync.Mutex
	w        io.Writer
	now      func() time.Time
	minLevel Level
}

// NewProvider returns a LoggerProvider writing to opts.Writer.
func NewProvider(opts Options) interfaces.LoggerProvider {
	p := &provider{w: opts.Writer, now: opts.TimeFunc, minLevel: LevelDebug}
	if p.w == nil {
		p.w = os.Stdout
	}
	if p.now == nil {
		p.now = time.Now
	}
	if opts.MinLevel != nil {
		p.minLevel = *opts.MinLevel
	}
	return p
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	return &logger{p: p, name: name}
}

func (p *provider) write(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// write errors are dropped: there is nowhere left to report them
	_, _ = io.WriteString(p.w, line)
}

type logger struct {
	p      *provider
	name   string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return &logger{p: l.p, name: l.name, fields: merged, ctx: l.ctx}
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	return &logger{p: l.p, name: l.name, fields: l.fields, ctx: ctx}
}

func (l *logger) log(level Level, msg string, args []any) {
	if level < l.p.minLevel {
		return
	}
	fields := make(map[string]any, len(l.fields)+len(args)/2)
	maps.Copy(fields, l.fields)
	maps.Copy(fields, logging.ContextFields(l.ctx))
	addArgs(fields, args)
	if fields["module"] == l.name {
		delete(fields, "module")
	}
	l.p.write(formatLine(l.p.now().UTC(), level, l.name, msg, fields))
}

// addArgs folds key/value pairs into fields. A value without a usable key is
// stored under !BADKEY, the way log/slog does.
func addArgs(fields map[string]any, args []any) {
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			return
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			fields["!BADKEY"] = args[i+1]
			continue
		}
		fields[key] = args[i+1]
	}
}

func formatLine(ts time.Time, level Level, name, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02T15:04:05.000Z07:00"))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	if name != "" {
		b.WriteString("[" + name + "] ")
	}
	b.WriteString(msg)

	for _, key := range pinnedKeys {
		if v, ok := fields[key]; ok {
			writeField(&b, key, v)
			delete(fields, key)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		writeField(&b, key, fields[key])
	}
	b.WriteByte('\n')
	return b.String()
}

func writeField(b *strings.Builder, key string, value any) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(formatValue(value))
}

func formatValue(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		s = v
	case error:
		s = v.Error()
	case time.Time:
		s = v.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		s = v.String()
	case fmt.Stringer:
		s = v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
