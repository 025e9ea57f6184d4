package cli

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger returns a console logger writing debug traces to w, or a
// no-op logger when debug output is disabled.
func newLogger(debug bool, w io.Writer) *zap.SugaredLogger {
	if !debug {
		return zap.NewNop().Sugar()
	}

	ec := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ec),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)

	return zap.New(core).Sugar().Named("dirscan")
}
