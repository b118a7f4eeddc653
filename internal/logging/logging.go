package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvFormat = "LOG_FORMAT"
	EnvLevel  = "LOG_LEVEL"
)

const redacted = "[redacted]"

// Options selects how a service logger is built.
type Options struct {
	Service string
	Text    bool
	Level   slog.Level
	Writer  io.Writer
}

// OptionsFromEnv reads LOG_FORMAT ("text" or JSON otherwise) and LOG_LEVEL
// through getenv.
func OptionsFromEnv(service string, w io.Writer, getenv func(string) string) Options {
	return Options{
		Service: service,
		Text:    strings.EqualFold(strings.TrimSpace(getenv(EnvFormat)), "text"),
		Level:   parseLevel(getenv(EnvLevel)),
		Writer:  w,
	}
}

// New builds a logger without touching process-wide state. Attributes
// whose key names a credential are replaced before they are written.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: redact}

	var handler slog.Handler = slog.NewJSONHandler(w, ho)
	if opts.Text {
		handler = slog.NewTextHandler(w, ho)
	}
	return slog.New(handler).With(slog.String("service", opts.Service))
}

// Init installs the environment-configured logger as the slog default and
// sends the stdlib log package through it.
func Init(service string, w io.Writer) *slog.Logger {
	logger := New(OptionsFromEnv(service, w, os.Getenv))
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(stdlibWriter{logger: logger})
	return logger
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func sensitiveKey(key string) bool {
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key)) {
	case "password", "token", "accesstoken", "refreshtoken", "authorization":
		return true
	}
	return false
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// stdlibWriter turns each log.Printf line into one slog record.
type stdlibWriter struct {
	logger *slog.Logger
}

func (w stdlibWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.logger.Info(line, slog.String("source", "stdlib"))
		}
	}
	return len(p), nil
}
