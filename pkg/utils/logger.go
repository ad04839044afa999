package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger for debug messages. The terminal is owned by the UI, so output only ever goes to a file.
var (
	isVerbose = false
	logger    = zap.NewNop()
	sugar     = logger.Sugar()
)

// Log prints debug messages to the log file if verbose mode is enabled
func Log(text string, args ...interface{}) {
	if isVerbose {
		sugar.Debugf(text, args...)
	}
}

// Logger returns the structured logger for callers that log fields
func Logger() *zap.Logger {
	return logger
}

// InitLogger initializes the logging system
func InitLogger(verbose bool, logPath string) {
	isVerbose = verbose
	if !verbose {
		return
	}

	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "taskdesk.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		fmt.Printf("Error creating log directory: %v\n", err)
		return
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	})

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, zapcore.DebugLevel)
	logger = zap.New(core)
	sugar = logger.Sugar()

	Log("Verbose logging enabled")
}

// CloseLogger flushes buffered entries
func CloseLogger() {
	_ = logger.Sync()
}
