package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	DefaultLogDir     = "./logs"
	DefaultLogFile    = "poldrop.log"
	DefaultMaxSizeMB  = 10
	DefaultMaxAgeDays = 28
)

// Options controls where the application log goes
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	// Stderr mirrors every line to stderr
	Stderr bool
}

var (
	mu               sync.Mutex
	lumberjackLogger *lumberjack.Logger
	logger           = log.New(io.Discard, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

// OptionsFromEnv reads LOGFILE, LOGFILE_MAX_SIZE_MB and LOGFILE_MAX_AGE_DAYS,
// falling back to defaults for unset or malformed values
func OptionsFromEnv() Options {
	opts := Options{
		Dir:        DefaultLogDir,
		Filename:   DefaultLogFile,
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxAgeDays: DefaultMaxAgeDays,
	}
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		opts.Filename = logFile
	}
	if v, err := strconv.Atoi(os.Getenv("LOGFILE_MAX_SIZE_MB")); err == nil && v > 0 {
		opts.MaxSizeMB = v
	}
	if v, err := strconv.Atoi(os.Getenv("LOGFILE_MAX_AGE_DAYS")); err == nil && v > 0 {
		opts.MaxAgeDays = v
	}
	return opts
}

// Init points the package logger at a rotating file. Until Init is called all output is discarded.
func Init(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	if lumberjackLogger != nil {
		_ = lumberjackLogger.Close()
	}
	lumberjackLogger = &lumberjack.Logger{
		Filename: filepath.Join(opts.Dir, opts.Filename),
		MaxSize:  opts.MaxSizeMB, // megabytes
		MaxAge:   opts.MaxAgeDays, // days
	}

	var out io.Writer = lumberjackLogger
	if opts.Stderr {
		out = io.MultiWriter(lumberjackLogger, os.Stderr)
	}
	logger.SetOutput(out)
}

// SetOutput replaces the destination, mostly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// Close flushes and releases the log file
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(io.Discard)
	if lumberjackLogger == nil {
		return nil
	}
	err := lumberjackLogger.Close()
	lumberjackLogger = nil
	return err
}

func Info(category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[INFO][%s]%s", ColorGreen, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Error(category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[ERROR][%s]%s", ColorRed, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Warn(category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[WARN][%s]%s", ColorYellow, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Debug(category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[DEBUG][%s]%s", ColorBlue, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
