package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/rs/zerolog"
)

// New 建立服務共用的 logger, level 解析失敗時使用 info
func New(w io.Writer, serviceName, env, level string) *zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if constants.ENV(env) == constants.Debug {
		lvl = zerolog.DebugLevel
	}

	l := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
	return &l
}

// Component 背景元件各自帶 component 欄位
func Component(l *zerolog.Logger, name string) *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	c := l.With().Str("component", name).Logger()
	return &c
}
