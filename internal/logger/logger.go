// Package logger provides leveled logging on top of the standard log package.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

var (
	mu     sync.RWMutex
	level  = InfoLevel
	output = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
)

// Init configures the package logger. format "text" adds the caller file;
// any other format keeps timestamps only.
func Init(lvl string, format string) {
	InitWithWriter(lvl, format, os.Stderr)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(lvl string, format string, w io.Writer) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(lvl)
	output = log.New(w, "", flags)
}

func emit(l Level, prefix, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if level > l {
		return
	}
	_ = output.Output(3, fmt.Sprintf(prefix+format, args...))
}

func Debug(format string, args ...interface{}) { emit(DebugLevel, "[DEBUG] ", format, args...) }

func Info(format string, args ...interface{}) { emit(InfoLevel, "[INFO] ", format, args...) }

func Warn(format string, args ...interface{}) { emit(WarnLevel, "[WARN] ", format, args...) }

func Error(format string, args ...interface{}) { emit(ErrorLevel, "[ERROR] ", format, args...) }

// Fatal logs regardless of level and exits the process.
func Fatal(format string, args ...interface{}) {
	mu.RLock()
	_ = output.Output(2, fmt.Sprintf("[FATAL] "+format, args...))
	mu.RUnlock()
	os.Exit(1)
}
