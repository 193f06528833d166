package config

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const contextLogger = "logger"

// NewLogger builds a JSON logger for production and a console logger otherwise.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build(zap.Fields(
		zap.String("service", ServiceName),
		zap.String("environment", cfg.Server.Env),
	))
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

// LoggerFrom returns the request-scoped logger set by PerformanceLogger.
func LoggerFrom(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(contextLogger); ok {
		if log, ok := v.(*zap.Logger); ok {
			return log
		}
	}
	return zap.L()
}
