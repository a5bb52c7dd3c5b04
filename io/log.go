package io

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr.Logger.V.
const (
	INFO  = 0
	DEBUG = 1
)

// NewLogger builds a logger writing to stderr, and also to con.LogFile when
// it is set. Debug output is only enabled with con.Verbose. The returned
// function flushes buffered entries.
func NewLogger(con *HydroconvConfig) (logr.Logger, func(), error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if con.Verbose { zc.Level.SetLevel(zapcore.DebugLevel) }

	zc.OutputPaths = []string{"stderr"}
	if con.ValidLogFile() {
		zc.OutputPaths = append(zc.OutputPaths, con.LogFile)
	}

	zl, err := zc.Build()
	if err != nil { return logr.Discard(), func() {}, err }
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}
