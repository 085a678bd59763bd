package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// LoggerManager хранит по одному логгеру на компонент (world, storage,
// eventbus, terrain, mapctl...)
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var globalManager = &LoggerManager{loggers: make(map[string]*Logger)}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом запросе
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}
	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger не возвращает ошибку: если файл логов не открылся,
// компонент пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}
	defaultLogger.Warn("Файл логов компонента %s недоступен: %v", component, err)

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if existing, ok := lm.loggers[component]; ok {
		return existing
	}
	l = newConsoleLogger(component, os.Stdout)
	lm.loggers[component] = l
	return l
}

// SetConsoleLevel меняет уровень консоли у всех созданных логгеров
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, l := range lm.loggers {
		l.minConsoleLevel = level
	}
}

// SetLogLevel задаёт уровни одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.loggers[component]
	if !ok {
		return fmt.Errorf("логгер компонента %s не найден", component)
	}
	l.minConsoleLevel = consoleLevel
	l.minFileLevel = fileLevel
	return nil
}

// ListComponents возвращает имена компонентов по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for _, l := range lm.loggers {
		errs = append(errs, l.Close())
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

func GetComponentLogger(component string) *Logger {
	return globalManager.MustGetLogger(component)
}

// GetWorldLogger логгер ядра карты
func GetWorldLogger() *Logger {
	return GetComponentLogger("world")
}

func GetStorageLogger() *Logger {
	return GetComponentLogger("storage")
}

func GetEventLogger() *Logger {
	return GetComponentLogger("eventbus")
}

func GetTerrainLogger() *Logger {
	return GetComponentLogger("terrain")
}
