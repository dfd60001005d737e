package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{" info ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"Warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLogLevel(tt.level); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name         string
		cfg          LogConfig
		wantEncoding string
		wantLevel    zapcore.Level
	}{
		{"production json", LogConfig{Level: "info", Format: LogFormatJSON}, LogFormatJSON, zapcore.InfoLevel},
		{"console format", LogConfig{Level: "warn", Format: "Console"}, LogFormatConsole, zapcore.WarnLevel},
		{"debug forces console", LogConfig{Level: "debug", Format: LogFormatJSON}, LogFormatConsole, zapcore.DebugLevel},
		{"empty config", LogConfig{}, LogFormatJSON, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc := loggerConfig(tt.cfg)
			if zc.Encoding != tt.wantEncoding {
				t.Errorf("Encoding = %q, want %q", zc.Encoding, tt.wantEncoding)
			}
			if zc.Level.Level() != tt.wantLevel {
				t.Errorf("Level = %v, want %v", zc.Level.Level(), tt.wantLevel)
			}
			if zc.Sampling != nil {
				t.Error("sampling should be disabled")
			}
			if zc.EncoderConfig.TimeKey != "timestamp" {
				t.Errorf("TimeKey = %q", zc.EncoderConfig.TimeKey)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, cfg := range []LogConfig{
		{Level: "info", Format: LogFormatJSON},
		{Level: "debug"},
		{Level: "error", Format: LogFormatConsole},
	} {
		logger, err := NewLogger(cfg)
		if err != nil {
			t.Fatalf("NewLogger(%+v) error = %v", cfg, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%+v) returned nil", cfg)
		}
		_ = logger.Sync()
	}
}
