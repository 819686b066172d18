package log

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// The console logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// The format used by file sinks; colors are stripped.
var fileFormat = logging.MustStringFormatter(
	`[%{time:2006-01-02 15:04:05.000}] [%{module}] [%{level}] %{message}`,
)

// The internal leveled logger backend
var leveledBackend logging.LeveledBackend

// The current verbosity.
var curLevel = Notice

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink.
func SetSink(sink io.Writer) {
	SetSinks(sink, nil)
}

// Send log output to a console sink and, if fileSink is not nil, also to a
// file sink using an uncolored format.
func SetSinks(console io.Writer, fileSink io.Writer) {
	backends := []logging.Backend{
		logging.NewBackendFormatter(logging.NewLogBackend(console, "", 0), format),
	}
	if fileSink != nil {
		backends = append(backends, logging.NewBackendFormatter(logging.NewLogBackend(fileSink, "", 0), fileFormat))
	}

	leveledBackend = logging.MultiLogger(backends...)
	logging.SetBackend(leveledBackend)
	SetLevel(curLevel)
}

// Set logger verbosity.
func SetLevel(level Level) {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	curLevel = level
	leveledBackend.SetLevel(loggerLevel, "")
}

// Parse a level name ("debug", "info", "notice", "warning", "error"). Unknown
// names map to Notice.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn", "warning":
		return Warning
	case "error":
		return Error
	default:
		return Notice
	}
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
