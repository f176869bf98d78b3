package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLevel represents the run log verbosity.
type FileLevel int

const (
	// FileLevelInfo is the default run log level.
	FileLevelInfo FileLevel = iota
	// FileLevelDebug also records raw ffmpeg output and planner decisions.
	FileLevelDebug
)

const runLogPattern = "mixit_run_%s.log"

// FileLogger writes a timestamped run log. Every line carries a level tag
// such as [INFO]. A nil *FileLogger is valid and discards everything.
type FileLogger struct {
	mu       sync.Mutex
	level    FileLevel
	logger   *log.Logger
	file     *os.File
	filePath string
	closed   bool
}

// Setup opens mixit_run_<timestamp>.log in logDir, creating the directory.
// It returns a nil logger when noLog is set.
func Setup(logDir string, verbose, noLog bool) (*FileLogger, error) {
	if noLog {
		return nil, nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	filePath := filepath.Join(logDir, fmt.Sprintf(runLogPattern, time.Now().Format("20060102_150405")))
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	l := &FileLogger{
		level:    FileLevelInfo,
		logger:   log.New(file, "", log.LstdFlags),
		file:     file,
		filePath: filePath,
	}
	if verbose {
		l.level = FileLevelDebug
	}

	l.Info("mixit starting")
	if verbose {
		l.Info("Debug level logging enabled")
	}
	l.Info("Log file: %s", filePath)
	return l, nil
}

// Close flushes and closes the log file. Later writes are dropped.
func (l *FileLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.file == nil {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *FileLogger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Verbose reports whether debug messages are recorded.
func (l *FileLogger) Verbose() bool {
	return l != nil && l.level >= FileLevelDebug
}

func (l *FileLogger) Info(format string, args ...any)  { l.write(FileLevelInfo, "[INFO] ", format, args) }
func (l *FileLogger) Debug(format string, args ...any) { l.write(FileLevelDebug, "[DEBUG] ", format, args) }
func (l *FileLogger) Warn(format string, args ...any)  { l.write(FileLevelInfo, "[WARN] ", format, args) }
func (l *FileLogger) Error(format string, args ...any) { l.write(FileLevelInfo, "[ERROR] ", format, args) }

// Section writes a banner line that separates jobs within one run log.
func (l *FileLogger) Section(title string) {
	l.write(FileLevelInfo, "", "%s", []any{"===== " + strings.ToUpper(title) + " ====="})
}

func (l *FileLogger) write(level FileLevel, tag, format string, args []any) {
	if l == nil || l.level < level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.logger.Print(tag + fmt.Sprintf(format, args...))
}

// Writer returns the underlying file, or io.Discard for a nil logger. The
// process-wide slog logger is pointed here so library records land in the
// same run log.
func (l *FileLogger) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
