// Package logging implements the dual-stream logger of spec.md §7's
// user-visible surface: activity-log lines (prefix `A:`) for grants,
// affiliations, registrations, denials, and call starts/ends, and
// diagnostic-log lines (`D:`/`M:`/`I:`/`W:`/`E:`/`F:`) for everything else.
// Grounded on the teacher's Logger: a buffered-channel relay goroutine per
// stream, lazily created through a double-checked atomic singleton, with a
// local-file fallback when the preferred log directory isn't writable.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// LogType distinguishes the activity stream from the diagnostic stream.
type LogType string

const (
	AccessType     LogType = LogType("access")
	DiagnosticType LogType = LogType("diagnostic")

	maxInFlightLogs = 200
)

// Level is a diagnostic-log severity, carrying its wire prefix letter.
type Level byte

const (
	LevelDebug   Level = 'D'
	LevelMessage Level = 'M'
	LevelInfo    Level = 'I'
	LevelWarning Level = 'W'
	LevelError   Level = 'E'
	LevelFatal   Level = 'F'
)

var (
	accessLog    *Logger
	diagLog      *Logger
	isAccessInit atomic.Bool
	accessLoaded atomic.Bool
	isDiagInit   atomic.Bool
	diagLoaded   atomic.Bool
)

// GetLogger returns the singleton Logger for logType, creating it (and its
// relay goroutine) on first use.
func GetLogger(logType LogType) *Logger {
	const loadDelay = 100 * time.Nanosecond

	switch logType {
	case AccessType:
		lastInit := isAccessInit.Swap(true)
		if !lastInit {
			accessLog = createLogger(logType)
			accessLoaded.Store(true)
		}
		for !accessLoaded.Load() {
			time.Sleep(loadDelay)
		}
		return accessLog
	case DiagnosticType:
		lastInit := isDiagInit.Swap(true)
		if !lastInit {
			diagLog = createLogger(logType)
			diagLoaded.Store(true)
		}
		for !diagLoaded.Load() {
			time.Sleep(loadDelay)
		}
		return diagLog
	default:
		panic("logging: unknown log type")
	}
}

func createLogger(logType LogType) *Logger {
	var logFile *os.File
	switch runtime.GOOS {
	case "windows", "darwin":
		logFile = createLocalLog(logType)
	default:
		file := fmt.Sprintf("/var/log/p25ctrl/p25ctrl.%s.log", logType)
		if _, err := os.Stat("/var/log/p25ctrl"); os.IsNotExist(err) {
			err := os.Mkdir("/var/log/p25ctrl", 0755)
			if err != nil {
				logFile = createLocalLog(logType)
				break
			}
			err = os.Chown("/var/log/p25ctrl", os.Getuid(), os.Getgid())
			if err != nil {
				logFile = createLocalLog(logType)
				break
			}
			logFile, err = os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0665)
			if err != nil {
				logFile = createLocalLog(logType)
				break
			}
		} else {
			logFile, err = os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0665)
			if err != nil {
				logFile = createLocalLog(logType)
				break
			}
		}
	}

	var sysLogger *log.Logger
	switch logType {
	case AccessType:
		sysLogger = log.New(logFile, "", log.LstdFlags)
	case DiagnosticType:
		sysLogger = log.New(io.MultiWriter(os.Stderr, logFile), "", log.LstdFlags)
	}

	logger := &Logger{
		logger:  sysLogger,
		file:    logFile,
		Writer:  sysLogger.Writer(),
		channel: make(chan string, maxInFlightLogs),
	}

	go logger.relay()

	return logger
}

func (l *Logger) relay() {
	for msg := range l.channel {
		if msg != "" {
			l.logger.Print(msg)
		}
	}
}

func createLocalLog(logType LogType) *os.File {
	file := fmt.Sprintf("p25ctrl.%s.log", logType)
	logFile, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0665)
	if err != nil {
		log.Fatalf("failed to create log file: %s:\n%v", file, err)
	}
	return logFile
}

// Logger relays formatted lines from a buffered channel to its backing
// stdlib *log.Logger on a dedicated goroutine, so logging calls never block
// on file I/O.
type Logger struct {
	logger  *log.Logger
	file    *os.File
	Writer  io.Writer
	channel chan string
}

// Access emits an "A:" activity-log line: grants, affiliations,
// registrations, denials, call starts/ends.
func Access(format string) {
	GetLogger(AccessType).channel <- fmt.Sprintf("A: %s: %s", getPrefix(), format)
}

// Accessf is the Printf-style variant of Access.
func Accessf(format string, args ...interface{}) {
	GetLogger(AccessType).channel <- fmt.Sprintf("A: %s: %s", getPrefix(), fmt.Sprintf(format, args...))
}

// Diag emits a diagnostic-log line tagged with level's prefix letter.
func Diag(level Level, format string) {
	GetLogger(DiagnosticType).channel <- fmt.Sprintf("%c: %s: %s", level, getPrefix(), format)
}

// Diagf is the Printf-style variant of Diag.
func Diagf(level Level, format string, args ...interface{}) {
	GetLogger(DiagnosticType).channel <- fmt.Sprintf("%c: %s: %s", level, getPrefix(), fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{})   { Diagf(LevelDebug, format, args...) }
func Messagef(format string, args ...interface{}) { Diagf(LevelMessage, format, args...) }
func Infof(format string, args ...interface{})    { Diagf(LevelInfo, format, args...) }
func Warnf(format string, args ...interface{})    { Diagf(LevelWarning, format, args...) }
func Errorf(format string, args ...interface{})   { Diagf(LevelError, format, args...) }
func Fatalf(format string, args ...interface{})   { Diagf(LevelFatal, format, args...) }

// getPrefix uses runtime.Caller to report the calling function, file, and
// line, matching the teacher's reflection-based prefix.
func getPrefix() string {
	const skip = 3 // getPrefix, Diag/Access wrapper, public func, caller
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	name := strings.TrimPrefix(
		runtime.FuncForPC(pc).Name(), "github.com/keystone-rf/p25ctrl/",
	)
	return fmt.Sprintf("[%s@%s:%s]", name, filepath.Base(file), strconv.Itoa(line))
}

// Close flushes and closes both log streams; called once at shutdown.
func Close() {
	if accessLog != nil {
		close(accessLog.channel)
		_ = accessLog.file.Close()
	}
	if diagLog != nil {
		close(diagLog.channel)
		_ = diagLog.file.Close()
	}
}
