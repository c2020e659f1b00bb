package logger

import (
	"os"

	"github.com/Adda-Baaj/bangla-khobor/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Init initializes a zap SugaredLogger using settings from config.
// Development builds get a human-readable console encoder; everything
// else logs JSON.
func Init(cfg *config.Config) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Env == "development" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(zapcore.Lock(os.Stdout)), level)

	sugar := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		Named(cfg.AppName).
		Sugar()
	S = sugar
	return sugar, nil
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Object logging helpers. Each logs the given object as a single
// structured field named key; they are safe to call before Init.

func InfoObj(msg, key string, obj interface{})  { logObj(zapcore.InfoLevel, msg, key, obj) }
func DebugObj(msg, key string, obj interface{}) { logObj(zapcore.DebugLevel, msg, key, obj) }
func WarnObj(msg, key string, obj interface{})  { logObj(zapcore.WarnLevel, msg, key, obj) }
func ErrorObj(msg, key string, obj interface{}) { logObj(zapcore.ErrorLevel, msg, key, obj) }

func logObj(level zapcore.Level, msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	if ce := S.Desugar().Check(level, msg); ce != nil {
		ce.Write(zap.Any(key, obj))
	}
}
