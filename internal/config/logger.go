package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	zc := loggerConfig(cfg)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "essayblitz")), nil
}

// loggerConfig: JSON для прода, console для LOG_FORMAT=console и debug.
// Сэмплинг выключен, каждый запрос к модели должен попасть в лог.
func loggerConfig(cfg LogConfig) zap.Config {
	level := parseLogLevel(cfg.Level)

	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if level == zapcore.DebugLevel || strings.EqualFold(cfg.Format, LogFormatConsole) {
		zc.Encoding = LogFormatConsole
		zc.Development = true
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}
	return zc
}

// parseLogLevel: неизвестный уровень молча превращается в info
func parseLogLevel(level string) zapcore.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}

	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
