// Package zaplogger backs the glog logging contracts with zap.
package zaplogger

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messenger/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a zap logger from the log settings. An empty level means info.
func New(cfg core.LogConfig) (*Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level := zapcore.InfoLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := parseLevel(raw)
		if err != nil {
			return nil, core.NewConfigError("log.level", err.Error())
		}
		level = parsed
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	base, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("zaplogger: build logger: %w", err)
	}
	return FromZap(base), nil
}

func FromZap(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{sugar: base.Sugar()}
}

func Nop() *Logger {
	return FromZap(zap.NewNop())
}

// Trace maps to zap debug; zap has no lower level.
func (l *Logger) Trace(msg string, args ...any) {
	l.sugared().Debugw(msg, append(args, "trace", true)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.sugared().Debugw(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.sugared().Infow(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.sugared().Warnw(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.sugared().Errorw(msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.sugared().Fatalw(msg, args...)
}

func (l *Logger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{sugar: l.sugared().With(core.FlattenFields(fields)...)}
}

func (l *Logger) Named(name string) *Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return l
	}
	return &Logger{sugar: l.sugared().Named(name)}
}

// Sync flushes buffered entries. Errors from syncing stdout or stderr on
// some platforms are expected and ignored by callers.
func (l *Logger) Sync() error {
	return l.sugared().Sync()
}

func (l *Logger) sugared() *zap.SugaredLogger {
	if l == nil || l.sugar == nil {
		return zap.NewNop().Sugar()
	}
	return l.sugar
}

// Provider hands out loggers named after the requesting component.
type Provider struct {
	root *Logger
}

func NewProvider(root *Logger) *Provider {
	if root == nil {
		root = Nop()
	}
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	if p == nil || p.root == nil {
		return glog.Nop()
	}
	return p.root.Named(name)
}

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

func parseLevel(raw string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zapcore.DebugLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(raw)
}

var (
	_ glog.Logger         = (*Logger)(nil)
	_ glog.FieldsLogger   = (*Logger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
)
