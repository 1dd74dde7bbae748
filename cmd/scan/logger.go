package main

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var decoderLog = zap.NewNop()
var tablesLog = zap.NewNop()
var textLog = zap.NewNop()

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func setLoggers(l *zap.Logger) {
	decoderLog = l.Named("decoder")
	tablesLog = l.Named("tables")
}

// newTextLog writes text event contents to <dir>/log.txt.
func newTextLog(dir string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Sampling = nil
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.LevelKey = ""
	cfg.OutputPaths = []string{filepath.Join(dir, "log.txt")}
	return cfg.Build()
}
