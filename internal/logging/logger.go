// Package logging provides config-driven categorized file-based logging for
// skillforge. Logs are written to .forge/logs/ with separate files per
// category. Logging is controlled by the logging section of
// .forge/config.yaml - when debug_mode is false, no logs are written.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup, flag validation
	CategoryExamples   Category = "examples"   // Example/story loading
	CategoryAdapter    Category = "adapter"    // Adapter prompt building and predictions
	CategoryMetric     Category = "metric"     // Scoring decisions
	CategoryOptimizer  Category = "optimizer"  // Candidate search rounds
	CategoryReflection Category = "reflection" // Instruction proposal calls
	CategoryResults    Category = "results"    // Artifact persistence
	CategoryAPI        Category = "api"        // External model invocations
)

// loggingConfig mirrors the logging section of config.Config to avoid a
// circular import.
type loggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

type configFile struct {
	Logging loggingConfig `yaml:"logging"`
}

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	workspace string
	config    loggingConfig
	configMu  sync.RWMutex
	logLevel  int
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and loads config.
// Should be called once at startup with the workspace path.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	workspace = ws
	logsDir = filepath.Join(workspace, ".forge", "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		config.DebugMode = false
	}

	// Only create the logs directory when debug mode is enabled.
	if !config.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== skillforge logging initialized ===")
	boot.Info("Workspace: %s", workspace)
	boot.Info("Log level: %s", config.Level)

	return nil
}

// loadConfig reads the logging config from .forge/config.yaml
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	configPath := filepath.Join(workspace, ".forge", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config = production mode (no logging)
			config.DebugMode = false
			return nil
		}
		return err
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	config = cf.Logging

	switch config.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	return nil
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}
	if logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", date, category)
	logPath := filepath.Join(logsDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l

	return l
}

// Debug logs a debug message (only if level <= debug)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn)
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists)
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Examples logs to the examples category
func Examples(format string, args ...interface{}) {
	Get(CategoryExamples).Info(format, args...)
}

// ExamplesDebug logs debug to the examples category
func ExamplesDebug(format string, args ...interface{}) {
	Get(CategoryExamples).Debug(format, args...)
}

// Adapter logs to the adapter category
func Adapter(format string, args ...interface{}) {
	Get(CategoryAdapter).Info(format, args...)
}

// AdapterDebug logs debug to the adapter category
func AdapterDebug(format string, args ...interface{}) {
	Get(CategoryAdapter).Debug(format, args...)
}

// Metric logs to the metric category
func Metric(format string, args ...interface{}) {
	Get(CategoryMetric).Info(format, args...)
}

// MetricDebug logs debug to the metric category
func MetricDebug(format string, args ...interface{}) {
	Get(CategoryMetric).Debug(format, args...)
}

// Optimizer logs to the optimizer category
func Optimizer(format string, args ...interface{}) {
	Get(CategoryOptimizer).Info(format, args...)
}

// OptimizerDebug logs debug to the optimizer category
func OptimizerDebug(format string, args ...interface{}) {
	Get(CategoryOptimizer).Debug(format, args...)
}

// OptimizerError logs error to the optimizer category
func OptimizerError(format string, args ...interface{}) {
	Get(CategoryOptimizer).Error(format, args...)
}

// Reflection logs to the reflection category
func Reflection(format string, args ...interface{}) {
	Get(CategoryReflection).Info(format, args...)
}

// ReflectionDebug logs debug to the reflection category
func ReflectionDebug(format string, args ...interface{}) {
	Get(CategoryReflection).Debug(format, args...)
}

// Results logs to the results category
func Results(format string, args ...interface{}) {
	Get(CategoryResults).Info(format, args...)
}

// API logs to the api category
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Info(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}

// APIError logs error to the api category
func APIError(format string, args ...interface{}) {
	Get(CategoryAPI).Error(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
