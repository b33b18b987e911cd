// Package logger holds the process wide logger. It discards everything
// until Initialize is called.
package logger

import (
	"os"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/config"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.SugaredLogger

func init() {
	Logger = zap.NewNop().Sugar()
}

// where decides where to send output. "" means nowhere. A file is
// appended to.
func where(dest string) (zapcore.WriteSyncer, error) {
	switch dest {
	case "":
		return nil, nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	fp, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", dest)
	}
	return zapcore.AddSync(fp), nil
}

func level(s string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, errors.Wrapf(err, "log level %q", s)
	}
	return l, nil
}

// New builds a logger from the configuration without installing it.
func New(cfg config.LogConfig) (*zap.SugaredLogger, error) {
	ws, err := where(cfg.Dest)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return zap.NewNop().Sugar(), nil
	}
	lvl, err := level(cfg.Level)
	if err != nil {
		return nil, err
	}
	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zap.New(zapcore.NewCore(enc, ws, lvl)).Sugar(), nil
}

// Initialize installs a logger built from cfg as Logger.
func Initialize(cfg config.LogConfig) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// Sync flushes whatever is buffered. Errors from syncing a terminal are
// not interesting.
func Sync() {
	_ = Logger.Sync()
}
