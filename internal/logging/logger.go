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

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из конфигурации. Регистр не важен.
func ParseLevel(s string) (LogLevel, error) {
	for l := TRACE; l <= ERROR; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return INFO, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

// Logger пишет сообщения компонента в консоль и, если задан каталог
// логов, в файл
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

var (
	settingsMu   sync.RWMutex
	logDir       string
	consoleLevel = INFO

	// defaultLogger используется функциями пакета Info, Debug и т.д.
	defaultLogger = newConsoleLogger("isomap", os.Stdout)
)

// Configure задаёт каталог файлов логов (пусто: только консоль) и
// минимальный уровень консоли для создаваемых дальше логгеров
func Configure(dir string, level LogLevel) {
	settingsMu.Lock()
	logDir = dir
	consoleLevel = level
	settingsMu.Unlock()

	globalManager.SetConsoleLevel(level)
}

func settings() (string, LogLevel) {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return logDir, consoleLevel
}

func newConsoleLogger(component string, w io.Writer) *Logger {
	_, level := settings()
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", log.LstdFlags),
		minConsoleLevel: level,
		minFileLevel:    TRACE,
	}
}

// NewLogger создаёт логгер компонента. Файл <dir>/<component>_<время>.log
// открывается только если каталог логов задан через Configure.
func NewLogger(component string) (*Logger, error) {
	l := newConsoleLogger(component, os.Stdout)

	dir, _ := settings()
	if dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	return l, nil
}

// InitDefaultLogger заменяет логгер пакета логгером компонента
func InitDefaultLogger(component string) error {
	l, err := NewLogger(component)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// CloseDefaultLogger закрывает файлы логгера пакета и логгеров компонентов
func CloseDefaultLogger() {
	if defaultLogger != nil {
		defaultLogger.Close()
	}
	globalManager.CloseAll()
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

func (l *Logger) logMessage(level LogLevel, format string, args ...interface{}) {
	toFile := l.fileLogger != nil && level >= l.minFileLevel
	toConsole := l.consoleLogger != nil && level >= l.minConsoleLevel
	if !toFile && !toConsole {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level, l.component, fmt.Sprintf(format, args...))
	if toFile {
		l.fileLogger.Println(message)
	}
	if toConsole {
		l.consoleLogger.Println(message)
	}
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.logMessage(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.logMessage(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.logMessage(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.logMessage(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.logMessage(ERROR, format, args...) }

// Trace логирует через логгер пакета
func Trace(format string, args ...interface{}) { defaultLogger.Trace(format, args...) }

// Debug логирует через логгер пакета
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }

// Info логирует через логгер пакета
func Info(format string, args ...interface{}) { defaultLogger.Info(format, args...) }

// Warn логирует через логгер пакета
func Warn(format string, args ...interface{}) { defaultLogger.Warn(format, args...) }

// Error логирует через логгер пакета
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
