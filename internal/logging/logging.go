// Package logging provides per-module slog loggers with runtime-adjustable
// levels. Records go to stdout (text or JSON) and, when running under
// systemd, to the journal.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds the logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

var (
	mu            sync.RWMutex
	config        Config
	initialized   bool
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevels  = make(map[string]*slog.LevelVar)
)

// Initialize sets up the logging system and reconfigures any loggers that
// were created before it ran.
func Initialize(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	config = cfg
	initialized = true

	for module, levelVar := range moduleLevels {
		levelVar.Set(moduleLevel(cfg, module))
		moduleLoggers[module] = slog.New(newHandler(cfg.Format, levelVar)).With("module", module)
	}

	base := &slog.LevelVar{}
	base.Set(parseLevel(cfg.Level, slog.LevelInfo))
	slog.SetDefault(slog.New(newHandler(cfg.Format, base)))
}

// ApplyLevels re-applies level settings from cfg to all existing module
// loggers. Used by the config watcher for hot reload; handler format is
// not changed at runtime.
func ApplyLevels(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	config.Level = cfg.Level
	config.Modules = cfg.Modules
	for module, levelVar := range moduleLevels {
		levelVar.Set(moduleLevel(config, module))
	}
}

// GetLogger returns the logger for a module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	mu.RLock()
	if logger, ok := moduleLoggers[module]; ok {
		mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if logger, ok := moduleLoggers[module]; ok {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	if initialized {
		levelVar.Set(moduleLevel(config, module))
		format = config.Format
	} else {
		levelVar.Set(slog.LevelInfo)
	}

	logger := slog.New(newHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevels[module] = levelVar
	return logger
}

// moduleLevel resolves the effective level for a module: the module
// override when present, otherwise the global level.
func moduleLevel(cfg Config, module string) slog.Level {
	level := parseLevel(cfg.Level, slog.LevelInfo)
	if override, ok := cfg.Modules[module]; ok {
		level = parseLevel(override, level)
	}
	return level
}

// newHandler builds the handler chain: stdout plus journald when the
// process runs under systemd.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdout slog.Handler
	if format == "json" {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdout = slog.NewTextHandler(os.Stdout, opts)
	}

	if journalAvailable() {
		return NewMultiHandler(stdout, NewJournalHandler(level))
	}
	return stdout
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
