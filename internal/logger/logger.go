package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

var (
	Info    *log.Logger
	Warn    *log.Logger
	Debug   *log.Logger
	Verbose *log.Logger
	Error   *log.Logger
	Always  *log.Logger // Always logs regardless of log level

	// Current log level for filtering
	currentLogLevel string

	logFile *os.File
)

// Loggers are usable before Init so library code and tests never hit nil
func init() {
	configure("error", os.Stderr)
}

// InitWithConfig opens logFilePath for appending and routes every level to it.
// An empty path logs to stderr only.
func InitWithConfig(logLevel, logFilePath string) error {
	if logFilePath == "" {
		Close()
		configure(logLevel, os.Stderr)
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	Close()
	logFile = f
	configure(logLevel, f)
	return nil
}

// Close releases the log file, if one is open
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Level returns the active log level
func Level() string {
	return currentLogLevel
}

func configure(logLevel string, out io.Writer) {
	currentLogLevel = strings.ToLower(strings.TrimSpace(logLevel))

	nullWriter := io.Discard

	errorOut := out
	if out != os.Stderr {
		errorOut = io.MultiWriter(os.Stderr, out)
	}

	Info = log.New(getWriter("info", out, nullWriter), "ℹ️  INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", out, nullWriter), "⚠️  WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", out, nullWriter), "🐛 DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Verbose = log.New(getWriter("verbose", out, nullWriter), "🔍 VERBOSE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(errorOut, "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always = log.New(out, "📝 ALWAYS: ", log.Ldate|log.Ltime)
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	levels := map[string]int{
		"error":   0,
		"warn":    1,
		"info":    2,
		"debug":   3,
		"verbose": 4,
	}

	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}
